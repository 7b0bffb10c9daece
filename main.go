package main

import "variant-meld/cmd"

func main() {
	cmd.Execute()
}
