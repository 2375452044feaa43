// Package main provides the entry point for the svelte-prebundle CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mfreed420/vite-plugin-svelte/cmd/svelte-prebundle/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "svelte-prebundle",
		Short: "Measure per-package compile cost of dependency prebundling",
		Long: `svelte-prebundle drives the prebundle instrumentation pipeline over a
directory tree and reports compile timings grouped by originating package.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewRunCommand())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
