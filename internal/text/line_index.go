package text

import (
	"github.com/rivo/uniseg"
)

// Encoding is the code-unit width the consuming client expects for
// Position.Column, following the LSP negotiation in `initialize`.
type Encoding int

const (
	// EncodingUTF16 is the LSP default and virtually every client's choice.
	EncodingUTF16 Encoding = iota
	// EncodingUTF8 is offered by clients that advertise "utf-8" in
	// general/positionEncodings.
	EncodingUTF8
	// EncodingUTF32 counts Unicode scalar values (rare, but LSP-legal).
	EncodingUTF32
)

// LineIndex maps byte Offsets to Positions (and back) for a fixed source
// buffer. It is built once per document version and is immutable; callers
// needing a different encoding still share one LineIndex since line starts
// do not depend on the consuming client's encoding.
type LineIndex struct {
	source     string
	lineStarts []Offset
	encoding   Encoding
}

// NewLineIndex scans source once, recording the byte offset of every line
// start (the position right after each '\n', plus the implicit line 0).
func NewLineIndex(source string, encoding Encoding) *LineIndex {
	starts := []Offset{0}
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			starts = append(starts, Offset(i+1))
		}
	}
	return &LineIndex{source: source, lineStarts: starts, encoding: encoding}
}

// Encoding reports the code-unit width this index reports columns in.
func (li *LineIndex) Encoding() Encoding {
	return li.encoding
}

// LineCol converts a byte Offset into a 0-based (line, grapheme-column) pair
// using the internal canonical representation (grapheme clusters), per
// spec §3.1. Use ToLSPPosition to additionally translate into the client's
// negotiated encoding.
func (li *LineIndex) LineCol(off Offset) Position {
	line := li.lineForOffset(off)
	lineStart := li.lineStarts[line]
	lineBytes := li.source[lineStart.AsUsize():off.AsUsize()]
	col := graphemeCount(lineBytes)
	return Position{Line: uint32(line), Column: uint32(col)}
}

// Offset converts a (line, grapheme-column) Position back into a byte Offset.
func (li *LineIndex) Offset(pos Position) Offset {
	if int(pos.Line) >= len(li.lineStarts) {
		return OffsetFromUsize(len(li.source))
	}
	lineStart := li.lineStarts[pos.Line]
	lineEnd := OffsetFromUsize(len(li.source))
	if int(pos.Line)+1 < len(li.lineStarts) {
		lineEnd = li.lineStarts[pos.Line+1]
	}
	line := li.source[lineStart.AsUsize():lineEnd.AsUsize()]

	col := 0
	bytePos := 0
	state := -1
	remaining := line
	for len(remaining) > 0 {
		if uint32(col) == pos.Column {
			break
		}
		var cluster string
		cluster, remaining, _, state = uniseg.FirstGraphemeClusterInString(remaining, state)
		bytePos += len(cluster)
		col++
	}
	return lineStart.Add(uint32(bytePos))
}

// ToLSPPosition converts a byte Offset directly into the negotiated
// encoding's (line, character) pair, counting UTF-16 code units (the LSP
// default) instead of grapheme clusters when li.encoding is EncodingUTF16.
func (li *LineIndex) ToLSPPosition(off Offset) Position {
	line := li.lineForOffset(off)
	lineStart := li.lineStarts[line]
	lineBytes := li.source[lineStart.AsUsize():off.AsUsize()]

	var col int
	switch li.encoding {
	case EncodingUTF8:
		col = len(lineBytes)
	case EncodingUTF32:
		col = runeCount(lineBytes)
	default:
		col = utf16UnitCount(lineBytes)
	}
	return Position{Line: uint32(line), Column: uint32(col)}
}

func (li *LineIndex) lineForOffset(off Offset) int {
	// Binary search over sorted line starts.
	lo, hi := 0, len(li.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if li.lineStarts[mid] <= off {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

func graphemeCount(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

func runeCount(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}

func utf16UnitCount(s string) int {
	n := 0
	for _, r := range s {
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return n
}
