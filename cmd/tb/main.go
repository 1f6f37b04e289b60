package main

import (
	"context"
	"fmt"
	"os"

	"timebookings/internal/cli"
)

func main() {
	// Per-command timeouts are applied by the root command from the configuration
	root := cli.NewRootCommand(cli.DefaultAPIFactory)
	if err := root.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", cli.NewErrorHandler().HandleSimple(err))
		os.Exit(1)
	}
}
