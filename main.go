package main

import (
	"fmt"
	"os"

	"github.com/tkoskela/occutensor/cmd"
	"github.com/tkoskela/occutensor/internal/conf"
	"github.com/tkoskela/occutensor/internal/logging"
)

func main() {
	logging.Init()

	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
