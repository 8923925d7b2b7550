package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tombi-toml/tombi/internal/ast"
	"github.com/tombi-toml/tombi/internal/format"
	"github.com/tombi-toml/tombi/internal/tomlparse"
)

var (
	formatWrite  bool
	formatCheck  bool
	formatConfig string
)

// NewFormatCommand creates the format command.
func NewFormatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "format [files...]",
		Short: "Format TOML documents",
		Long: `Format TOML documents using the style rules in tombi.toml's [format] table.

By default, shows a diff preview of what would change without modifying files.
Use --write to apply formatting changes, or --check to verify formatting.

Examples:
  tombi format                    # Show diff for every .toml file under the cwd
  tombi format --write            # Format and save all files
  tombi format --check            # Exit with error if not formatted
  tombi format file.toml          # Format a specific file
  tombi format config/*.toml      # Format files matching a glob`,
		RunE: runFormat,
	}

	cmd.Flags().BoolVarP(&formatWrite, "write", "w", false, "Write formatted output to files")
	cmd.Flags().BoolVarP(&formatCheck, "check", "c", false, "Check if files are formatted (exit 1 if not)")
	cmd.Flags().StringVar(&formatConfig, "config", "tombi.toml", "Path to the tombi.toml config file")

	return cmd
}

func runFormat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	defs, err := format.LoadDefinitions(formatConfig)
	if err != nil {
		return fmt.Errorf("failed to load format config: %w", err)
	}

	files, err := discoverTOMLFiles(args)
	if err != nil {
		return fmt.Errorf("failed to find files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no .toml files found")
	}

	pipeline, err := newCheckPipeline(ctx, formatConfig)
	if err != nil {
		return err
	}

	hasChanges := false
	errorCount := 0

	titleColor := color.New(color.FgCyan, color.Bold)
	successColor := color.New(color.FgGreen)
	errorColor := color.New(color.FgRed, color.Bold)

	for _, file := range files {
		original, err := os.ReadFile(file)
		if err != nil {
			errorColor.Fprintf(cmd.ErrOrStderr(), "Error reading %s: %v\n", file, err)
			errorCount++
			continue
		}

		parsedSrc := tomlparse.Parse(string(original), tomlparse.VersionV1_0_0)
		root, ok := ast.CastRoot(parsedSrc.SyntaxTree())
		if !ok {
			errorColor.Fprintf(cmd.ErrOrStderr(), "Error formatting %s: not a valid TOML document\n", file)
			errorCount++
			continue
		}

		lookup, _ := pipeline.resolveSchema(ctx, root, file)
		formatted := format.New(defs, lookup, tomlparse.VersionV1_0_0).Format(root)

		diff := format.Diff(string(original), formatted)
		if !diff.Changed {
			if !formatCheck {
				successColor.Fprintf(cmd.OutOrStdout(), "✓ %s (no changes)\n", file)
			}
			continue
		}

		hasChanges = true

		switch {
		case formatCheck:
			errorColor.Fprintf(cmd.ErrOrStderr(), "✗ %s needs formatting\n", file)
		case formatWrite:
			if err := os.WriteFile(file, []byte(formatted), 0644); err != nil {
				errorColor.Fprintf(cmd.ErrOrStderr(), "Error writing %s: %v\n", file, err)
				errorCount++
				continue
			}
			successColor.Fprintf(cmd.OutOrStdout(), "✓ %s formatted\n", file)
		default:
			titleColor.Fprintf(cmd.OutOrStdout(), "\n=== %s ===\n", file)
			fmt.Fprintln(cmd.OutOrStdout(), diff.String())
			fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", diff.Stats())
		}
	}

	if !formatWrite && !formatCheck && hasChanges {
		fmt.Fprintf(cmd.OutOrStdout(), "\n")
		titleColor.Fprintf(cmd.OutOrStdout(), "Run 'tombi format --write' to apply changes\n")
	}

	if formatCheck && hasChanges {
		return fmt.Errorf("files need formatting")
	}
	if errorCount > 0 {
		return fmt.Errorf("%d files had errors", errorCount)
	}
	return nil
}
