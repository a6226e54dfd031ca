// Command sauron is the development CLI: it serves a compiled wasm
// bundle (see internal/devserver) with live reload.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

const banner = `
  ┌─┐┌─┐┬ ┬┬─┐┌─┐┌┐┌
  └─┐├─┤│ │├┬┘│ ││││
  └─┘┴ ┴└─┘┴└─└─┘┘└┘
`

func main() {
	rootCmd := &cobra.Command{
		Use:           "sauron",
		Short:         "Development tooling for the vdom runtime",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd(), versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Print(banner)
			fmt.Printf("  Version: %s\n  Commit:  %s\n", version, commit)
		},
	}
}
