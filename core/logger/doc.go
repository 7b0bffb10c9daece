// Package logger provides a structured logging facility based on Zap.
//
// The meld engine itself never logs; this logger belongs to the
// command-line surface, which uses it for progress, size reporting
// and error diagnostics.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: console (CLI default, colored levels) or json
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info", Format: "console"})
//	log.Info("fold complete", zap.String("tag", tag))
package logger
