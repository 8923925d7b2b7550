package lsp

import (
	"testing"

	"github.com/tombi-toml/tombi/internal/ast"
	"github.com/tombi-toml/tombi/internal/document"
	"github.com/tombi-toml/tombi/internal/text"
	"github.com/tombi-toml/tombi/internal/tomlparse"
)

func mustProject(t *testing.T, src string) (*ast.Root, *document.Table) {
	t.Helper()
	p := tomlparse.Parse(src, tomlparse.VersionV1_0_0)
	root, ok := ast.CastRoot(p.SyntaxTree())
	if !ok {
		t.Fatalf("source did not parse to a Root: %q", src)
	}
	table, diags := document.Project(root, tomlparse.VersionV1_0_0)
	if len(diags) > 0 {
		t.Fatalf("unexpected projection diagnostics: %v", diags)
	}
	return root, table
}

func TestFindAtOffsetNestedTable(t *testing.T) {
	src := "[a]\nb = 1\n"
	root, table := mustProject(t, src)

	off := text.OffsetFromUsize(len("[a]\nb = "))
	path, value := findAtOffset(root, table, off)

	if got := joinPath(path); got != "a.b" {
		t.Errorf("path = %q, want %q", got, "a.b")
	}
	if _, ok := value.(document.Integer); !ok {
		t.Errorf("value type = %T, want document.Integer", value)
	}
}

func TestFindAtOffsetFallsBackToTable(t *testing.T) {
	src := "[a]\nb = 1\n"
	root, table := mustProject(t, src)

	// Offset 1 sits inside "[a]"'s header, which tableContextAt still
	// attributes to the "a" table body even though no leaf entry's
	// range covers it.
	path, value := findAtOffset(root, table, text.OffsetFromUsize(1))
	if _, ok := value.(*document.Table); !ok {
		t.Errorf("value type = %T, want *document.Table", value)
	}
	if got := joinPath(path); got != "a" {
		t.Errorf("path = %q, want %q", got, "a")
	}
}

func TestFindAtOffsetMiss(t *testing.T) {
	src := "top = 1\n"
	root, table := mustProject(t, src)

	path, value := findAtOffset(root, table, text.OffsetFromUsize(0))
	if value != nil {
		t.Errorf("expected no match outside any explicit table, got path=%v value=%v", path, value)
	}
}

func TestTableContextAt(t *testing.T) {
	src := "[a]\nb = 1\n\n[c]\nd = 2\n"
	root, _ := mustProject(t, src)

	off := text.OffsetFromUsize(len(src) - 2) // inside [c]'s body, at the "2" of "d = 2"
	path := tableContextAt(root, off)

	if got := joinPath(path); got != "c" {
		t.Errorf("tableContextAt = %q, want %q", got, "c")
	}
}

func TestTableContextAtOutsideAnyTable(t *testing.T) {
	src := "top = 1\n\n[a]\nb = 2\n"
	root, _ := mustProject(t, src)

	path := tableContextAt(root, text.OffsetFromUsize(0))
	if path != nil {
		t.Errorf("expected nil path for root-level key, got %v", path)
	}
}

func TestDescribeValueKind(t *testing.T) {
	tests := []struct {
		name  string
		value document.Value
		want  string
	}{
		{"string", &document.String{}, "string"},
		{"boolean", &document.Boolean{}, "boolean"},
		{"table", document.NewTable(document.TableHeader, text.ByteRange{}), "table"},
		{"array", document.NewArray(document.ArrayPlain, text.ByteRange{}), "array"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describeValueKind(tt.value); got != tt.want {
				t.Errorf("describeValueKind = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSymbolKindFor(t *testing.T) {
	if got := symbolKindFor(&document.Integer{}); got == 0 {
		t.Errorf("symbolKindFor(Integer) returned zero value")
	}
}

func joinPath(path []string) string {
	out := ""
	for i, p := range path {
		if i > 0 {
			out += "."
		}
		out += p
	}
	return out
}
