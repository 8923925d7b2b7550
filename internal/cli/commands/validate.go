package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tombi-toml/tombi/internal/cli/ui"
	"github.com/tombi-toml/tombi/internal/diagnostic"
	"github.com/tombi-toml/tombi/internal/tomlparse"
	"github.com/tombi-toml/tombi/internal/validator"
)

var validateConfig string

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [files...]",
		Short: "Validate TOML documents against their JSON Schema",
		Long: `Validate TOML documents against the JSON Schema resolved for each file.

Schemas are resolved, in order, from a document's own '#:schema' comment
directive, tombi.toml's [[schemas]] entries, and any configured
schema-catalogs. A file with no resolvable schema is skipped.

Examples:
  tombi validate                  # validate every .toml file under the cwd
  tombi validate tombi.toml       # validate one file
  tombi validate config/*.toml    # validate files matching a glob`,
		RunE: runValidate,
	}

	cmd.Flags().StringVar(&validateConfig, "config", "tombi.toml", "Path to the tombi.toml config file")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	files, err := discoverTOMLFiles(args)
	if err != nil {
		return fmt.Errorf("failed to find files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no .toml files found")
	}

	pipeline, err := newCheckPipeline(ctx, validateConfig)
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

		if p.root != nil {
			src, schemaDiags := pipeline.resolveSchema(ctx, p.root, file)
			diags = append(diags, schemaDiags...)
			if src == nil {
				fmt.Fprint(cmd.OutOrStdout(), ui.Info(fmt.Sprintf("%s: no schema resolved, skipped", file), false))
				table.AddRow(file, "-", "-")
				continue
			}
			if p.table != nil {
				diags = append(diags, validator.Validate(p.table, src)...)
			}
		}

		errs, warnings := printDiagnostics(cmd.OutOrStdout(), file, p.source, diags)
		totalErrors += errs
		table.AddRow(file, fmt.Sprintf("%d", errs), fmt.Sprintf("%d", warnings))
		if errs == 0 {
			ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("%s: valid", file), false)
		}
	}

	if len(files) > 1 {
		fmt.Fprintln(cmd.OutOrStdout())
		table.Render()
	}

	if totalErrors > 0 {
		return fmt.Errorf("%d validation error(s)", totalErrors)
	}
	return nil
}
