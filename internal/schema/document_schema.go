package schema

import (
	"strings"
	"sync"

	"github.com/tombi-toml/tombi/internal/diagnostic"
	"github.com/tombi-toml/tombi/internal/text"
)

// DocumentSchema is a root value schema plus its definitions map and the
// document-level Tombi extensions (spec §3.6): root schema + `definitions`/
// `$defs` map + optional `x-tombi-toml-version` override + optional
// allowed string formats.
type DocumentSchema struct {
	URI            SchemaUri
	Root           *Referable[ValueSchema]
	Definitions    map[string]*ValueSchema
	TOMLVersion    string // x-tombi-toml-version, "" if unset
	AllowedFormats []string

	mu        sync.Mutex
	resolving map[string]bool
	lastOK    *ValueSchema
}

// tryEnter attempts to acquire pointer for the duration of one resolution
// pass; it returns false if pointer is already being resolved higher up
// the same call stack, i.e. a circular `$ref` (spec §4.5 failure modes).
func (d *DocumentSchema) tryEnter(pointer string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.resolving == nil {
		d.resolving = make(map[string]bool)
	}
	if d.resolving[pointer] {
		return false
	}
	d.resolving[pointer] = true
	return true
}

func (d *DocumentSchema) exit(pointer string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.resolving, pointer)
}

func (d *DocumentSchema) rememberOK(v *ValueSchema) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastOK = v
}

func (d *DocumentSchema) lastNonCircular() *ValueSchema {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastOK
}

// lookupDefinition resolves a JSON Pointer of the form "#/$defs/Name" or
// "#/definitions/Name" against d.Definitions.
func (d *DocumentSchema) lookupDefinition(pointer string) (*ValueSchema, bool) {
	p := strings.TrimPrefix(pointer, "#/")
	p = strings.TrimPrefix(p, "$defs/")
	p = strings.TrimPrefix(p, "definitions/")
	v, ok := d.Definitions[p]
	return v, ok
}

// Resolve dereferences r against d, following nested combinator variants
// one level so a `$ref` straight at a oneOf/anyOf/allOf is usable
// immediately (spec §4.5 item 4: "recurses through nested one-of/any-of/
// all-of"). A circular chain resolves to the last non-circular schema seen
// during this resolution pass and emits a warning, rather than deadlocking
// (spec §4.5 failure modes, §9 "guarded by try-lock for cycle detection").
func Resolve(r *Referable[ValueSchema], d *DocumentSchema, rng text.ByteRange) (*ValueSchema, []diagnostic.Diagnostic) {
	r.mu.Lock()
	if r.resolved != nil {
		v := r.resolved
		r.mu.Unlock()
		return v, nil
	}
	pointer := r.ref
	r.mu.Unlock()

	if !d.tryEnter(pointer) {
		fallback := d.lastNonCircular()
		return fallback, []diagnostic.Diagnostic{
			diagnostic.New(diagnostic.SourceValidator, "circular-schema-ref", rng,
				"circular $ref \""+pointer+"\"; falling back to the last resolved schema"),
		}
	}
	defer d.exit(pointer)

	target, ok := d.lookupDefinition(pointer)
	if !ok {
		return nil, []diagnostic.Diagnostic{
			diagnostic.New(diagnostic.SourceValidator, "invalid-schema-ref", rng,
				"$ref \""+pointer+"\" does not resolve within this schema document"),
		}
	}

	var diags []diagnostic.Diagnostic
	if target.Kind == KindOneOf || target.Kind == KindAnyOf || target.Kind == KindAllOf {
		for _, v := range target.Variants {
			if v.IsRef() {
				_, d2 := Resolve(v, d, rng)
				diags = append(diags, d2...)
			}
		}
	}

	r.mu.Lock()
	r.resolved = target
	r.mu.Unlock()
	d.rememberOK(target)
	return target, diags
}

// SourceSchema is the applicable schema for one parsed document: the root
// schema (if any) plus independently-bound sub-schemas for named
// sub-trees, so `tool.tombi` can carry its own schema apart from
// `pyproject.toml`'s root (spec §3.6).
type SourceSchema struct {
	Root       *DocumentSchema
	SubSchemas map[string]*DocumentSchema // keyed by AccessorPath.String()
}

// SchemaFor returns the most specific DocumentSchema bound to path: the
// sub-schema bound to path or to its longest dotted prefix, otherwise the
// root schema.
func (s *SourceSchema) SchemaFor(path AccessorPath) (*DocumentSchema, AccessorPath) {
	if s == nil {
		return nil, nil
	}
	best := path.String()
	for len(best) > 0 {
		if sub, ok := s.SubSchemas[best]; ok {
			return sub, path
		}
		idx := strings.LastIndexByte(best, '.')
		if idx < 0 {
			break
		}
		best = best[:idx]
	}
	return s.Root, nil
}
