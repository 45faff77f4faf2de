package main

import (
	"os"

	"blobular/cmd/blobular/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		commands.Report(os.Stderr, err)
		os.Exit(commands.ExitFatal)
	}
}
