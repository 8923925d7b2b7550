package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/tombi-toml/tombi/internal/diagnostic"
	"github.com/tombi-toml/tombi/internal/text"
)

// printDiagnostics renders diags against source (for byte-offset → line:col
// conversion), one line per diagnostic, colored by severity. It returns the
// counts of SeverityError and non-error, non-off diagnostics printed.
func printDiagnostics(w io.Writer, path, source string, diags []diagnostic.Diagnostic) (errors, warnings int) {
	if len(diags) == 0 {
		return 0, 0
	}
	idx := text.NewLineIndex(source, text.EncodingUTF8)

	errColor := color.New(color.FgRed, color.Bold)
	warnColor := color.New(color.FgYellow, color.Bold)
	locColor := color.New(color.FgWhite)

	for _, d := range diags {
		if d.Severity == diagnostic.SeverityOff {
			continue
		}
		pos := idx.LineCol(d.Range.Start)
		loc := fmt.Sprintf("%s:%d:%d", path, pos.Line+1, pos.Column+1)

		switch d.Severity {
		case diagnostic.SeverityError:
			errors++
			errColor.Fprintf(w, "error")
		default:
			warnings++
			warnColor.Fprintf(w, "warn")
		}
		fmt.Fprint(w, "[")
		fmt.Fprint(w, string(d.Kind))
		fmt.Fprint(w, "] ")
		locColor.Fprintf(w, "%s", loc)
		fmt.Fprintf(w, ": %s\n", d.Message)
	}
	return errors, warnings
}
