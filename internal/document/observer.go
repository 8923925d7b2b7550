package document

// Observer lets a third-party package plug into structural-merge
// projection without forking it, the realization of spec §1's note that
// extensions (Cargo.toml, uv's pyproject.toml dialect) are "modeled as
// pluggable observers of the document tree" (SPEC_FULL.md §D.8). The
// projector invokes every registered Observer synchronously as each
// construct is merged; Observer implementations must not retain the
// Table/Array pointers past the call since projection continues to
// mutate them.
type Observer interface {
	// OnTable is called once a `[a.b]` header table has been
	// navigated/created, with its resolved dotted key path.
	OnTable(path []string, tbl *Table)
	// OnArrayOfTables is called once an `[[a.b]]` entry has been
	// appended, with its resolved dotted key path and the entry's index
	// within the array.
	OnArrayOfTables(path []string, arr *Array, index int)
	// OnKeyValue is called once a key-value has been inserted under the
	// current cursor table.
	OnKeyValue(path []string, value Value)
}
