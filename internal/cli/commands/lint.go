package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tombi-toml/tombi/internal/cli/ui"
	"github.com/tombi-toml/tombi/internal/diagnostic"
	"github.com/tombi-toml/tombi/internal/lint"
	"github.com/tombi-toml/tombi/internal/tomlparse"
	"github.com/tombi-toml/tombi/internal/validator"
)

var lintConfig string

// NewLintCommand creates the lint command.
func NewLintCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint [files...]",
		Short: "Lint TOML documents for structural issues",
		Long: `Lint TOML documents for structural issues: empty keys, and dotted keys
or tables that share a first key segment but are not declared contiguously,
plus any schema-validation findings bridged in under the linter's own rule names.

A '# tombi: lint.rules.<rule>.disabled = true' directive disables a rule
for the node it's attached to (or the whole document, at the top).

Examples:
  tombi lint                   # lint every .toml file under the cwd
  tombi lint tombi.toml        # lint one file`,
		RunE: runLint,
	}

	cmd.Flags().StringVar(&lintConfig, "config", "tombi.toml", "Path to the tombi.toml config file")

	return cmd
}

func runLint(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	files, err := discoverTOMLFiles(args)
	if err != nil {
		return fmt.Errorf("failed to find files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no .toml files found")
	}

	pipeline, err := newCheckPipeline(ctx, lintConfig)
	if err != nil {
		return err
	}

	table := ui.NewTable(cmd.OutOrStdout(), []string{"FILE", "ERRORS", "WARNINGS"}, nil)

	totalErrors := 0
	for _, file := range files {
		p, err := parseFile(file, tomlparse.VersionV1_0_0)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error reading %s: %v\n", file, err)
			totalErrors++
			table.AddRow(file, "1", "0")
			continue
		}

		diags := append([]diagnostic.Diagnostic(nil), p.diags...)

		var validatorDiags []diagnostic.Diagnostic
		if p.root != nil {
			src, schemaDiags := pipeline.resolveSchema(ctx, p.root, file)
			diags = append(diags, schemaDiags...)
			if src != nil && p.table != nil {
				validatorDiags = validator.Validate(p.table, src)
			}
			diags = append(diags, lint.Lint(p.root, tomlparse.VersionV1_0_0, validatorDiags)...)
		}

		errs, warnings := printDiagnostics(cmd.OutOrStdout(), file, p.source, diags)
		totalErrors += errs
		table.AddRow(file, fmt.Sprintf("%d", errs), fmt.Sprintf("%d", warnings))
		if errs == 0 {
			ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("%s: clean", file), false)
		}
	}

	if len(files) > 1 {
		fmt.Fprintln(cmd.OutOrStdout())
		table.Render()
	}

	if totalErrors > 0 {
		return fmt.Errorf("%d lint error(s)", totalErrors)
	}
	return nil
}
