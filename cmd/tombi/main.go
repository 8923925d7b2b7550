// Command tombi is the CLI entry point: format, lint, validate, and lsp.
package main

import (
	"os"

	"github.com/tombi-toml/tombi/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
