package main

import (
	"fmt"
	"os"

	"github.com/de-tools/data-lens/pkg/runtime/terminal"
	"github.com/de-tools/data-lens/pkg/services/config"
)

func main() {
	cfg, err := config.Load(os.Getenv("DATALENS_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cli := terminal.NewCLI(terminal.Options{
		Config: cfg,
		Output: os.Stdout,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
