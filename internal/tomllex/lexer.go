package tomllex

import (
	"regexp"
	"strings"

	"github.com/tombi-toml/tombi/internal/syntax"
	"github.com/tombi-toml/tombi/internal/text"
)

// Lexer tokenizes TOML source code.
//
// Thread Safety: Lexer instances are NOT thread-safe. Each goroutine
// lexing a document must create its own Lexer via New(); this is the
// pattern the LSP's per-document diagnostics pipeline relies on.
type Lexer struct {
	source  string
	start   int
	current int

	tokens     []Token
	errors     []Error
	lineEnding LineEnding
	sawLineEnd bool
}

// New creates a Lexer for source, starting at byte offset 0.
func New(source string) *Lexer {
	return &Lexer{
		source:     source,
		lineEnding: LineEndingLF,
	}
}

// ScanTokens tokenizes the entire source, returning every token (including
// trivia), the side list of lexical errors, and the dominant line ending.
func (l *Lexer) ScanTokens() ([]Token, []Error, LineEnding) {
	for !l.isAtEnd() {
		l.start = l.current
		l.scanToken()
	}
	l.tokens = append(l.tokens, Token{Kind: syntax.KindEOF, Len: 0})
	return l.tokens, l.errors, l.lineEnding
}

func (l *Lexer) isAtEnd() bool { return l.current >= len(l.source) }

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.current]
}

func (l *Lexer) peekAt(offset int) byte {
	idx := l.current + offset
	if idx >= len(l.source) {
		return 0
	}
	return l.source[idx]
}

func (l *Lexer) advance() byte {
	c := l.source[l.current]
	l.current++
	return c
}

func (l *Lexer) match(c byte) bool {
	if l.peek() != c {
		return false
	}
	l.current++
	return true
}

func (l *Lexer) addToken(kind syntax.Kind) {
	l.tokens = append(l.tokens, Token{Kind: kind, Len: uint32(l.current - l.start)})
}

func (l *Lexer) addError(kind ErrorKind, start, end int) {
	l.errors = append(l.errors, Error{
		Kind:  kind,
		Range: text.NewByteRange(text.OffsetFromUsize(start), text.OffsetFromUsize(end)),
	})
}

// scanToken consumes and classifies exactly one token starting at l.current.
//
//nolint:gocyclo,cyclop // dispatch over TOML's full token grammar is inherently this shaped
func (l *Lexer) scanToken() {
	c := l.advance()

	switch {
	case c == ' ' || c == '\t':
		l.scanWhitespace()
	case c == '\r' && l.peek() == '\n':
		l.current++
		l.lineEnding = LineEndingCRLF
		l.sawLineEnd = true
		l.addToken(syntax.KindLineBreak)
	case c == '\n':
		l.sawLineEnd = true
		l.addToken(syntax.KindLineBreak)
	case c == '#':
		l.scanComment()
	case c == '[':
		if l.match('[') {
			l.addToken(syntax.KindDoubleLBracket)
		} else {
			l.addToken(syntax.KindLBracket)
		}
	case c == ']':
		if l.match(']') {
			l.addToken(syntax.KindDoubleRBracket)
		} else {
			l.addToken(syntax.KindRBracket)
		}
	case c == '{':
		l.addToken(syntax.KindLBrace)
	case c == '}':
		l.addToken(syntax.KindRBrace)
	case c == ',':
		l.addToken(syntax.KindComma)
	case c == '.':
		l.addToken(syntax.KindDot)
	case c == '=':
		l.addToken(syntax.KindEquals)
	case c == '"':
		if l.peek() == '"' && l.peekAt(1) == '"' {
			l.current += 2
			l.scanMultiLineString('"', syntax.KindMultiLineBasicString, ErrInvalidMultiLineBasicString)
		} else {
			l.scanBasicString()
		}
	case c == '\'':
		if l.peek() == '\'' && l.peekAt(1) == '\'' {
			l.current += 2
			l.scanMultiLineString('\'', syntax.KindMultiLineLiteralString, ErrInvalidMultiLineLiteralString)
		} else {
			l.scanLiteralString()
		}
	case isBareKeyChar(c):
		l.scanBareRun()
	default:
		l.addError(ErrInvalidToken, l.start, l.current)
		l.addToken(syntax.KindError)
	}
}

func (l *Lexer) scanWhitespace() {
	for l.peek() == ' ' || l.peek() == '\t' {
		l.current++
	}
	l.addToken(syntax.KindWhitespace)
}

func (l *Lexer) scanComment() {
	for !l.isAtEnd() && l.peek() != '\n' && l.peek() != '\r' {
		l.current++
	}
	l.addToken(syntax.KindComment)
}

func isBareKeyChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') || c == '_' || c == '-' || c == '+' || c == ':'
}

// scanBareRun tokenizes a maximal run of bare-key/number/date-time
// characters and classifies it. TOML's grammar lets these three lexical
// categories overlap at the character-class level, so classification is a
// second pass over the collected run rather than per-character dispatch.
func (l *Lexer) scanBareRun() {
	for !l.isAtEnd() && (isBareKeyChar(l.peek()) || l.peek() == '.') {
		// A trailing '.' belongs to dotted keys, not to this run, unless
		// it is part of a float/date-time literal; only consume it when
		// followed by another run character so "a.b" still splits on '.'.
		if l.peek() == '.' {
			next := l.peekAt(1)
			if isDigit(next) && looksNumeric(l.source[l.start:l.current]) {
				l.current++
				continue
			}
			break
		}
		l.current++
	}
	run := l.source[l.start:l.current]
	kind := classifyBareRun(run)
	if kind == syntax.KindError {
		l.addError(ErrInvalidNumber, l.start, l.current)
	}
	l.addToken(kind)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func looksNumeric(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[i] == '+' || s[i] == '-' {
		i++
	}
	return i < len(s) && isDigit(s[i])
}

var (
	reLocalDate     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reLocalTime     = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}(\.\d+)?$`)
	reLocalDateTime = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[Tt ]\d{2}:\d{2}:\d{2}(\.\d+)?$`)
	reOffsetDate    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[Tt ]\d{2}:\d{2}:\d{2}(\.\d+)?([Zz]|[+-]\d{2}:\d{2})$`)
	reBin           = regexp.MustCompile(`^[+-]?0b[01_]+$`)
	reOct           = regexp.MustCompile(`^[+-]?0o[0-7_]+$`)
	reHex           = regexp.MustCompile(`^[+-]?0x[0-9A-Fa-f_]+$`)
	reDec           = regexp.MustCompile(`^[+-]?(0|[1-9][0-9_]*)$`)
	reFloat         = regexp.MustCompile(`^[+-]?(0|[1-9][0-9_]*)(\.[0-9_]+)?([eE][+-]?[0-9_]+)?$`)
	reSpecialFloat  = regexp.MustCompile(`^[+-]?(inf|nan)$`)
)

// classifyBareRun determines what a contiguous run of bare characters
// represents: a bare key, a boolean, a date-time variant, or a number in
// one of its four radix/float forms. Deep validation (overflow, escape
// rules) is deferred to the document-tree projection (spec §4.3).
func classifyBareRun(run string) syntax.Kind {
	switch run {
	case "true", "false":
		return syntax.KindBoolean
	}
	switch {
	case reOffsetDate.MatchString(run):
		return syntax.KindOffsetDateTime
	case reLocalDateTime.MatchString(run):
		return syntax.KindLocalDateTime
	case reLocalDate.MatchString(run):
		return syntax.KindLocalDate
	case reLocalTime.MatchString(run):
		return syntax.KindLocalTime
	case reBin.MatchString(run):
		return syntax.KindIntegerBin
	case reOct.MatchString(run):
		return syntax.KindIntegerOct
	case reHex.MatchString(run):
		return syntax.KindIntegerHex
	case reSpecialFloat.MatchString(run):
		return syntax.KindFloat
	case strings.ContainsAny(run, ".eE") && reFloat.MatchString(run):
		return syntax.KindFloat
	case reDec.MatchString(run):
		return syntax.KindIntegerDec
	}
	if isBareKeyRun(run) {
		return syntax.KindBareKeyLiteral
	}
	return syntax.KindError
}

func isBareKeyRun(run string) bool {
	for i := 0; i < len(run); i++ {
		c := run[i]
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '-') {
			return false
		}
	}
	return run != ""
}

// scanMultiLineString consumes a triple-quoted string body up to and
// including its closing delimiter. Backslash escapes (basic strings only)
// suppress delimiter recognition on the escaped character; literal
// multi-line strings have no escapes at all.
func (l *Lexer) scanMultiLineString(quote byte, kind syntax.Kind, errKind ErrorKind) {
	isBasic := quote == '"'
	for !l.isAtEnd() {
		c := l.peek()
		if isBasic && c == '\\' {
			l.current += 2
			continue
		}
		if c == quote && l.peekAt(1) == quote && l.peekAt(2) == quote {
			l.current += 3
			l.addToken(kind)
			return
		}
		l.current++
	}
	l.addError(errKind, l.start, l.current)
	l.addToken(syntax.KindError)
}

func (l *Lexer) scanBasicString() {
	for !l.isAtEnd() && l.peek() != '"' {
		if l.peek() == '\n' {
			l.addError(ErrInvalidBasicString, l.start, l.current)
			l.addToken(syntax.KindError)
			return
		}
		if l.peek() == '\\' {
			l.current++
			if !l.isAtEnd() {
				l.current++
			}
			continue
		}
		l.current++
	}
	if l.isAtEnd() {
		l.addError(ErrInvalidBasicString, l.start, l.current)
		l.addToken(syntax.KindError)
		return
	}
	l.current++ // closing quote
	l.addToken(syntax.KindBasicString)
}

func (l *Lexer) scanLiteralString() {
	for !l.isAtEnd() && l.peek() != '\'' {
		if l.peek() == '\n' {
			l.addError(ErrInvalidLiteralString, l.start, l.current)
			l.addToken(syntax.KindError)
			return
		}
		l.current++
	}
	if l.isAtEnd() {
		l.addError(ErrInvalidLiteralString, l.start, l.current)
		l.addToken(syntax.KindError)
		return
	}
	l.current++
	l.addToken(syntax.KindLiteralString)
}
