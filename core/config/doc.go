// Package config provides configuration management for the meld tool.
//
// It utilizes Viper for loading configuration from environment
// variables and an optional .env file, with defaults declared as
// struct tags.
//
// # Configuration Structure
//
// The Config struct is divided into subsections:
//   - Log: logging level and format
//   - Storage: S3/MinIO credentials and bucket settings for assets
//     addressed through the storage backend
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Log.Level)
package config
