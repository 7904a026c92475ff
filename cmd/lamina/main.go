package main

import (
	"os"

	"lamina/cmd/lamina/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
