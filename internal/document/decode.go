package document

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/tombi-toml/tombi/internal/diagnostic"
	"github.com/tombi-toml/tombi/internal/syntax"
	"github.com/tombi-toml/tombi/internal/text"
	"github.com/tombi-toml/tombi/internal/tomlparse"
)

// decodeKey turns a KEY node's raw text into a Key, unquoting and
// unescaping as needed (spec §3.4).
func decodeKey(k *syntax.Node) Key {
	raw := k.Text()
	rng := k.Range()
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		inner := raw[1 : len(raw)-1]
		unquoted := trimByteRange(rng, 1, 1)
		return Key{Value: unescapeBasic(inner), Kind: KeyBasicString, Range: rng, UnquotedRange: unquoted}
	}
	if len(raw) >= 2 && raw[0] == '\'' && raw[len(raw)-1] == '\'' {
		inner := raw[1 : len(raw)-1]
		unquoted := trimByteRange(rng, 1, 1)
		return Key{Value: inner, Kind: KeyLiteralString, Range: rng, UnquotedRange: unquoted}
	}
	return Key{Value: raw, Kind: KeyBareKey, Range: rng, UnquotedRange: rng}
}

// DecodeKeyText unquotes and unescapes a single key segment's raw source
// text, the same rule decodeKey applies to a KEY node — exported so
// callers working from the AST facade directly (the linter's structural
// rules, which run before projection) don't need a syntax.Node to ask
// "what does this key actually say".
func DecodeKeyText(raw string) string {
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		return unescapeBasic(raw[1 : len(raw)-1])
	}
	if len(raw) >= 2 && raw[0] == '\'' && raw[len(raw)-1] == '\'' {
		return raw[1 : len(raw)-1]
	}
	return raw
}

// decodeValue turns a leaf value token or Array/InlineTable node into a
// document Value, emitting a merge-error diagnostic and returning an
// Incomplete for anything that fails to decode (spec §4.3 item 1).
func (p *projector) decodeValue(elem syntax.Element) Value {
	switch v := elem.(type) {
	case *syntax.Token:
		return p.decodeLeaf(v)
	case *syntax.Node:
		switch v.Kind() {
		case syntax.KindArray:
			return p.decodeArray(v)
		case syntax.KindInlineTable:
			return p.decodeInlineTable(v)
		}
	}
	return Incomplete{}
}

func (p *projector) decodeLeaf(tok *syntax.Token) Value {
	b := base{rng: tok.Range()}
	raw := tok.Text()
	switch tok.Kind() {
	case syntax.KindBasicString:
		return String{base: b, Text: unescapeBasic(trimQuotes(raw, 1)), Kind: StringBasic}
	case syntax.KindLiteralString:
		return String{base: b, Text: trimQuotes(raw, 1), Kind: StringLiteral}
	case syntax.KindMultiLineBasicString:
		return String{base: b, Text: unescapeMultiLineBasic(trimQuotes(raw, 3)), Kind: StringMultiLineBasic}
	case syntax.KindMultiLineLiteralString:
		return String{base: b, Text: trimQuotes(raw, 3), Kind: StringMultiLineLiteral}
	case syntax.KindIntegerBin, syntax.KindIntegerOct, syntax.KindIntegerDec, syntax.KindIntegerHex:
		return p.decodeInteger(b, tok.Kind(), raw)
	case syntax.KindFloat:
		return p.decodeFloat(b, raw)
	case syntax.KindBoolean:
		return Boolean{base: b, Value: raw == "true"}
	case syntax.KindOffsetDateTime:
		return OffsetDateTime{base: b, Text: raw}
	case syntax.KindLocalDateTime:
		return LocalDateTime{base: b, Text: raw}
	case syntax.KindLocalDate:
		return LocalDate{base: b, Text: raw}
	case syntax.KindLocalTime:
		return LocalTime{base: b, Text: raw}
	default:
		return Incomplete{base: b}
	}
}

func trimQuotes(s string, n int) string {
	if len(s) < 2*n {
		return ""
	}
	return s[n : len(s)-n]
}

func (p *projector) decodeInteger(b base, kind syntax.Kind, raw string) Value {
	clean := strings.ReplaceAll(raw, "_", "")
	neg := false
	if strings.HasPrefix(clean, "-") {
		neg = true
		clean = clean[1:]
	} else if strings.HasPrefix(clean, "+") {
		clean = clean[1:]
	}

	digits := clean
	radix := RadixDec
	base10 := 10
	switch kind {
	case syntax.KindIntegerBin:
		radix, base10 = RadixBin, 2
		digits = strings.TrimPrefix(digits, "0b")
	case syntax.KindIntegerOct:
		radix, base10 = RadixOct, 8
		digits = strings.TrimPrefix(digits, "0o")
	case syntax.KindIntegerHex:
		radix, base10 = RadixHex, 16
		digits = strings.TrimPrefix(digits, "0x")
	}
	n := new(big.Int)
	if _, ok := n.SetString(digits, base10); !ok {
		p.errorf(diagnostic.Kind("invalid-integer"), b.rng, "invalid integer literal")
		return Incomplete{base: b}
	}
	if neg {
		n.Neg(n)
	}
	if n.Cmp(big.NewInt(math.MinInt64)) < 0 || n.Cmp(big.NewInt(math.MaxInt64)) > 0 {
		p.errorf(diagnostic.Kind("integer-overflow"), b.rng, "integer literal out of int64 range")
	}
	return Integer{base: b, Value: n, Radix: radix}
}

func (p *projector) decodeFloat(b base, raw string) Value {
	clean := strings.ReplaceAll(raw, "_", "")
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		p.errorf(diagnostic.Kind("invalid-float"), b.rng, "invalid float literal")
		return Incomplete{base: b}
	}
	return Float{base: b, Value: f}
}

// unescapeBasic decodes TOML basic-string escape sequences. The
// v1.1.0-preview escapes (`\e`, `\xHH`) are decoded for every TOML
// version; neither the lexer nor the parser checks them against the
// configured Version.
func unescapeBasic(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'b':
			sb.WriteByte('\b')
		case 't':
			sb.WriteByte('\t')
		case 'n':
			sb.WriteByte('\n')
		case 'f':
			sb.WriteByte('\f')
		case 'r':
			sb.WriteByte('\r')
		case 'e':
			sb.WriteByte(0x1b)
		case '"':
			sb.WriteByte('"')
		case '\\':
			sb.WriteByte('\\')
		case 'u':
			if i+4 < len(s) {
				if n, err := strconv.ParseUint(s[i+1:i+5], 16, 32); err == nil {
					sb.WriteRune(rune(n))
					i += 4
					continue
				}
			}
		case 'U':
			if i+8 < len(s) {
				if n, err := strconv.ParseUint(s[i+1:i+9], 16, 32); err == nil {
					sb.WriteRune(rune(n))
					i += 8
					continue
				}
			}
		case 'x':
			if i+2 < len(s) {
				if n, err := strconv.ParseUint(s[i+1:i+3], 16, 32); err == nil {
					sb.WriteRune(rune(n))
					i += 2
					continue
				}
			}
		default:
			sb.WriteByte('\\')
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// unescapeMultiLineBasic is unescapeBasic plus TOML's "line-ending
// backslash" continuation rule: a backslash immediately followed by a
// newline (and any leading whitespace on the next line) is elided.
func unescapeMultiLineBasic(s string) string {
	var sb strings.Builder
	i := 0
	for i < len(s) {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '\n' || (s[i+1] == '\r' && i+2 < len(s) && s[i+2] == '\n')) {
			j := i + 1
			for j < len(s) && (s[j] == '\n' || s[j] == '\r' || s[j] == ' ' || s[j] == '\t') {
				j++
			}
			i = j
			continue
		}
		if s[i] == '\\' && i+1 < len(s) {
			// delegate single escape to unescapeBasic via a 2-char slice
			decoded := unescapeBasic(s[i : i+2])
			if decoded != s[i:i+2] {
				sb.WriteString(decoded)
				i += 2
				continue
			}
		}
		sb.WriteByte(s[i])
		i++
	}
	return sb.String()
}

// trimByteRange shrinks a ByteRange by lead bytes at the start and trail
// bytes at the end, used to compute a quoted Key's UnquotedRange.
func trimByteRange(r text.ByteRange, lead, trail int) text.ByteRange {
	return text.NewByteRange(r.Start.Add(uint32(lead)), r.End.Sub(uint32(trail)))
}

// Version mirrors tomlparse.Version so callers constructing a projector
// don't need to import tomlparse's full surface beyond this alias point.
type Version = tomlparse.Version
