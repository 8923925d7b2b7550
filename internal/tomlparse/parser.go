// Package tomlparse turns a tomllex token stream into a lossless green
// syntax tree plus a side list of parse diagnostics (spec §4.2). The
// parser never fails outright: every input, however malformed, produces a
// Parsed result whose tree still concatenates back to the source exactly.
package tomlparse

import (
	"github.com/tombi-toml/tombi/internal/diagnostic"
	"github.com/tombi-toml/tombi/internal/syntax"
	"github.com/tombi-toml/tombi/internal/text"
	"github.com/tombi-toml/tombi/internal/tomllex"
)

// Version selects which TOML dialect the parser accepts (spec §6.1).
type Version string

const (
	VersionV1_0_0       Version = "v1.0.0"
	VersionV1_1_0Preview Version = "v1.1.0-preview"
)

// Parsed is the parser's complete output: the green tree, every
// diagnostic accumulated across lexing and parsing, and the line ending
// the lexer detected (the formatter's default absent an override).
type Parsed struct {
	Green      *syntax.GreenNode
	Diagnostics []diagnostic.Diagnostic
	LineEnding tomllex.LineEnding
}

// SyntaxTree returns the red-tree root over this parse's green tree.
func (p *Parsed) SyntaxTree() *syntax.Node {
	return syntax.NewRoot(p.Green)
}

// Parse lexes and parses TOML source text, always returning a usable tree.
func Parse(source string, version Version) *Parsed {
	lx := tomllex.New(source)
	tokens, lexErrs, lineEnding := lx.ScanTokens()

	p := &parser{
		source:  source,
		tokens:  tokens,
		version: version,
		builder: syntax.NewBuilder(),
	}
	p.computeOffsets()

	var diags []diagnostic.Diagnostic
	for _, e := range lexErrs {
		diags = append(diags, diagnostic.New(diagnostic.SourceLexer, diagnostic.Kind(e.Kind.String()), e.Range, e.Kind.String()))
	}

	p.parseRoot()
	diags = append(diags, p.diags...)

	return &Parsed{Green: p.builder.Finish(), Diagnostics: diags, LineEnding: lineEnding}
}

// parser holds mutable parse state. Not reused across parses.
type parser struct {
	source  string
	tokens  []tomllex.Token // includes trailing EOF token
	offsets []text.Offset   // offsets[i] is the byte start of tokens[i]
	pos     int
	version Version
	builder *syntax.Builder
	diags   []diagnostic.Diagnostic
}

func (p *parser) computeOffsets() {
	p.offsets = make([]text.Offset, len(p.tokens))
	var cur text.Offset
	for i, tok := range p.tokens {
		p.offsets[i] = cur
		cur = cur.Add(tok.Len)
	}
}

func (p *parser) isTrivia(i int) bool {
	return p.tokens[i].Kind.IsTrivia()
}

func (p *parser) atEnd() bool {
	return p.tokens[p.pos].Kind == syntax.KindEOF
}

// peekSignificant returns the kind of the next non-trivia token without
// consuming anything, including trivia.
func (p *parser) peekSignificant() syntax.Kind {
	i := p.pos
	for i < len(p.tokens) && p.isTrivia(i) {
		i++
	}
	return p.tokens[i].Kind
}

func (p *parser) curText(i int) string {
	start := p.offsets[i].AsUsize()
	end := start + int(p.tokens[i].Len)
	return p.source[start:end]
}

// consumeTrivia attaches every contiguous trivia token at the cursor to
// whatever node is currently open, and reports whether a line break was
// among them (used to decide ExpectedLineBreak recovery).
func (p *parser) consumeTrivia() bool {
	sawLineBreak := false
	for p.pos < len(p.tokens) && p.isTrivia(p.pos) {
		tok := p.tokens[p.pos]
		if tok.Kind == syntax.KindLineBreak {
			sawLineBreak = true
		}
		p.builder.Token(tok.Kind, p.curText(p.pos))
		p.pos++
	}
	return sawLineBreak
}

// bump consumes leading trivia then the next token unconditionally
// (structural token or KindError), attaching both to the open node, and
// returns the kind consumed.
func (p *parser) bump() syntax.Kind {
	p.consumeTrivia()
	tok := p.tokens[p.pos]
	p.builder.Token(tok.Kind, p.curText(p.pos))
	p.pos++
	return tok.Kind
}

func (p *parser) curRange() text.ByteRange {
	start := p.offsets[p.pos]
	return text.NewByteRange(start, start)
}

func (p *parser) errorf(kind diagnostic.Kind, msg string) {
	p.diags = append(p.diags, diagnostic.New(diagnostic.SourceParser, kind, p.curRange(), msg))
}

// expect consumes trivia then, if the next token matches kind, bumps it;
// otherwise records a diagnostic and leaves the cursor untouched so the
// caller can keep trying to make progress (spec §4.2 error policy).
func (p *parser) expect(kind syntax.Kind, errKind diagnostic.Kind, msg string) bool {
	if p.peekSignificant() == kind {
		p.bump()
		return true
	}
	p.errorf(errKind, msg)
	return false
}

func isValueStart(k syntax.Kind) bool {
	return k.IsValue() || k == syntax.KindLBracket || k == syntax.KindLBrace
}

func isKeyStart(k syntax.Kind) bool {
	return k == syntax.KindBareKeyLiteral || k.IsString() || k.IsInteger() || k == syntax.KindFloat || k == syntax.KindBoolean
}

func (p *parser) parseRoot() {
	p.builder.StartNode(syntax.KindRoot)
	for !p.atEnd() {
		p.consumeTrivia()
		if p.atEnd() {
			break
		}
		switch p.peekSignificant() {
		case syntax.KindDoubleLBracket:
			p.parseArrayOfTable()
		case syntax.KindLBracket:
			p.parseTable()
		default:
			if isKeyStart(p.peekSignificant()) {
				p.parseKeyValueLine()
			} else {
				p.recoverLine()
			}
		}
	}
	p.bump() // EOF
	p.builder.FinishNode(syntax.KindRoot)
}

// recoverLine consumes tokens up to the next line break or EOF, attaching
// them as KindError children, and records a single diagnostic for the
// whole run — local recovery, per spec §4.2.
func (p *parser) recoverLine() {
	start := p.curRange()
	p.diags = append(p.diags, diagnostic.New(diagnostic.SourceParser, "unexpected-token", start, "expected a key-value, table header, or array-of-tables header"))
	for !p.atEnd() {
		if p.peekSignificant() == syntax.KindLineBreak {
			p.bump()
			return
		}
		p.bump()
	}
}

func (p *parser) parseTable() {
	p.builder.StartNode(syntax.KindTable)
	p.bump() // [
	p.parseKeys()
	p.expect(syntax.KindRBracket, "missing-r-bracket", "expected ']' to close table header")
	p.finishHeaderLine()

	for !p.atEnd() {
		p.consumeTrivia()
		if p.atEnd() {
			break
		}
		k := p.peekSignificant()
		if k == syntax.KindLBracket || k == syntax.KindDoubleLBracket {
			break
		}
		if isKeyStart(k) {
			p.parseKeyValueLine()
		} else {
			p.recoverLine()
		}
	}
	p.builder.FinishNode(syntax.KindTable)
}

func (p *parser) parseArrayOfTable() {
	p.builder.StartNode(syntax.KindArrayOfTable)
	p.bump() // [[
	p.parseKeys()
	p.expect(syntax.KindDoubleRBracket, "missing-double-r-bracket", "expected ']]' to close array-of-tables header")
	p.finishHeaderLine()

	for !p.atEnd() {
		p.consumeTrivia()
		if p.atEnd() {
			break
		}
		k := p.peekSignificant()
		if k == syntax.KindLBracket || k == syntax.KindDoubleLBracket {
			break
		}
		if isKeyStart(k) {
			p.parseKeyValueLine()
		} else {
			p.recoverLine()
		}
	}
	p.builder.FinishNode(syntax.KindArrayOfTable)
}

// finishHeaderLine consumes an optional trailing comment and the line
// break that must terminate a table/array-of-table header line.
func (p *parser) finishHeaderLine() {
	for k := p.tokens[p.pos].Kind; k == syntax.KindWhitespace || k == syntax.KindComment; k = p.tokens[p.pos].Kind {
		p.builder.Token(k, p.curText(p.pos))
		p.pos++
	}
	switch p.tokens[p.pos].Kind {
	case syntax.KindEOF:
	case syntax.KindLineBreak:
		p.builder.Token(syntax.KindLineBreak, p.curText(p.pos))
		p.pos++
	default:
		p.errorf("expected-line-break", "expected a line break after table header")
	}
}

func (p *parser) parseKeys() {
	p.builder.StartNode(syntax.KindKeys)
	for {
		p.builder.StartNode(syntax.KindKey)
		if isKeyStart(p.peekSignificant()) {
			p.bump()
		} else {
			p.errorf("expected-key", "expected a key")
		}
		p.builder.FinishNode(syntax.KindKey)

		if p.peekSignificant() != syntax.KindDot {
			break
		}
		p.bump() // '.'
		if !isKeyStart(p.peekSignificant()) {
			p.errorf("forbidden-keys-last-period", "a dotted key cannot end with '.'")
			break
		}
	}
	p.builder.FinishNode(syntax.KindKeys)
}

func (p *parser) parseKeyValueLine() {
	p.builder.StartNode(syntax.KindKeyValue)
	p.parseKeys()
	p.expect(syntax.KindEquals, "expected-equals", "expected '=' after key")
	p.parseValue()
	p.finishStatementLine()
	p.builder.FinishNode(syntax.KindKeyValue)
}

// finishStatementLine enforces that a key-value statement ends the line,
// matching the grammar's line-oriented KeyValue production.
func (p *parser) finishStatementLine() {
	i := p.pos
	for p.tokens[i].Kind == syntax.KindWhitespace {
		i++
	}
	if p.tokens[i].Kind == syntax.KindComment {
		for p.pos <= i {
			p.builder.Token(p.tokens[p.pos].Kind, p.curText(p.pos))
			p.pos++
		}
		i = p.pos
	}
	switch p.tokens[i].Kind {
	case syntax.KindLineBreak, syntax.KindEOF:
	default:
		p.errorf("expected-line-break", "expected a line break after a key-value pair")
	}
}

func (p *parser) parseValue() {
	switch p.peekSignificant() {
	case syntax.KindLBracket:
		p.parseArray()
	case syntax.KindLBrace:
		p.parseInlineTable()
	default:
		if isValueStart(p.peekSignificant()) {
			p.bump()
			return
		}
		p.errorf("expected-value", "expected a value after '='")
	}
}

func (p *parser) parseArray() {
	p.builder.StartNode(syntax.KindArray)
	p.bump() // [
	for {
		p.consumeTrivia()
		if p.atEnd() || p.peekSignificant() == syntax.KindRBracket {
			break
		}
		p.parseValue()
		p.consumeTrivia()
		if p.peekSignificant() == syntax.KindComma {
			p.bump()
			continue
		}
		break
	}
	p.expect(syntax.KindRBracket, "missing-r-bracket", "expected ']' to close array")
	p.builder.FinishNode(syntax.KindArray)
}

func (p *parser) parseInlineTable() {
	p.builder.StartNode(syntax.KindInlineTable)
	p.bump() // {
	for {
		p.consumeTrivia()
		if p.atEnd() || p.peekSignificant() == syntax.KindRBrace {
			break
		}
		p.builder.StartNode(syntax.KindKeyValue)
		p.parseKeys()
		p.expect(syntax.KindEquals, "expected-equals", "expected '=' after key")
		p.parseValue()
		p.builder.FinishNode(syntax.KindKeyValue)
		p.consumeTrivia()
		if p.peekSignificant() == syntax.KindComma {
			p.bump()
			continue
		}
		break
	}
	p.expect(syntax.KindRBrace, "missing-r-brace", "expected '}' to close inline table")
	p.builder.FinishNode(syntax.KindInlineTable)
}
