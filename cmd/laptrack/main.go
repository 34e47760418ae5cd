package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "laptrack",
		Short:         "Stopwatch with lap timing and session history",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newTUICmd())
	root.AddCommand(newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
