// Package syntax defines the lossless concrete syntax tree: a single flat
// SyntaxKind enum plus the immutable green tree and cursor-style red tree
// built on top of it (spec §3.2).
package syntax

import "fmt"

// Kind is the single flat enum covering every structural node, value node,
// trivia token, punctuation token, and error sentinel in the tree.
type Kind uint16

const (
	// KindEOF and KindError are sentinels; KindError carries malformed text.
	KindEOF Kind = iota
	KindError

	// Structural nodes.
	KindRoot
	KindTable
	KindArrayOfTable
	KindKeyValue
	KindKeys
	KindKey
	KindArray
	KindInlineTable

	// Value nodes.
	KindBasicString
	KindLiteralString
	KindMultiLineBasicString
	KindMultiLineLiteralString
	KindIntegerBin
	KindIntegerOct
	KindIntegerDec
	KindIntegerHex
	KindFloat
	KindBoolean
	KindOffsetDateTime
	KindLocalDateTime
	KindLocalDate
	KindLocalTime

	// Trivia.
	KindWhitespace
	KindLineBreak
	KindComment

	// Punctuation tokens.
	KindLBracket        // [
	KindRBracket        // ]
	KindDoubleLBracket  // [[
	KindDoubleRBracket  // ]]
	KindLBrace          // {
	KindRBrace          // }
	KindComma           // ,
	KindDot             // .
	KindEquals          // =
	KindBareKeyLiteral  // unquoted key text, a child token of Key
)

var kindNames = map[Kind]string{
	KindEOF:                  "EOF",
	KindError:                "ERROR",
	KindRoot:                 "ROOT",
	KindTable:                "TABLE",
	KindArrayOfTable:         "ARRAY_OF_TABLE",
	KindKeyValue:             "KEY_VALUE",
	KindKeys:                 "KEYS",
	KindKey:                  "KEY",
	KindArray:                "ARRAY",
	KindInlineTable:          "INLINE_TABLE",
	KindBasicString:          "BASIC_STRING",
	KindLiteralString:        "LITERAL_STRING",
	KindMultiLineBasicString: "MULTI_LINE_BASIC_STRING",
	KindMultiLineLiteralString: "MULTI_LINE_LITERAL_STRING",
	KindIntegerBin:           "INTEGER_BIN",
	KindIntegerOct:           "INTEGER_OCT",
	KindIntegerDec:           "INTEGER_DEC",
	KindIntegerHex:           "INTEGER_HEX",
	KindFloat:                "FLOAT",
	KindBoolean:              "BOOLEAN",
	KindOffsetDateTime:       "OFFSET_DATE_TIME",
	KindLocalDateTime:        "LOCAL_DATE_TIME",
	KindLocalDate:            "LOCAL_DATE",
	KindLocalTime:            "LOCAL_TIME",
	KindWhitespace:           "WHITESPACE",
	KindLineBreak:            "LINE_BREAK",
	KindComment:              "COMMENT",
	KindLBracket:             "L_BRACKET",
	KindRBracket:             "R_BRACKET",
	KindDoubleLBracket:       "DOUBLE_L_BRACKET",
	KindDoubleRBracket:       "DOUBLE_R_BRACKET",
	KindLBrace:               "L_BRACE",
	KindRBrace:               "R_BRACE",
	KindComma:                "COMMA",
	KindDot:                  "DOT",
	KindEquals:                "EQUALS",
	KindBareKeyLiteral:       "BARE_KEY",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KIND(%d)", uint16(k))
}

// IsTrivia reports whether a kind is whitespace, a line break, or a comment
// — the kinds the lexer emits between structural tokens and which the
// parser must reattach losslessly (spec §4.2).
func (k Kind) IsTrivia() bool {
	switch k {
	case KindWhitespace, KindLineBreak, KindComment:
		return true
	default:
		return false
	}
}

// IsValue reports whether a kind is a leaf value token or a composite value
// node (Array, InlineTable).
func (k Kind) IsValue() bool {
	switch k {
	case KindBasicString, KindLiteralString, KindMultiLineBasicString, KindMultiLineLiteralString,
		KindIntegerBin, KindIntegerOct, KindIntegerDec, KindIntegerHex,
		KindFloat, KindBoolean,
		KindOffsetDateTime, KindLocalDateTime, KindLocalDate, KindLocalTime,
		KindArray, KindInlineTable:
		return true
	default:
		return false
	}
}

// IsString reports whether a kind is one of the four TOML string syntaxes.
func (k Kind) IsString() bool {
	switch k {
	case KindBasicString, KindLiteralString, KindMultiLineBasicString, KindMultiLineLiteralString:
		return true
	default:
		return false
	}
}

// IsInteger reports whether a kind is one of the four integer radix forms.
func (k Kind) IsInteger() bool {
	switch k {
	case KindIntegerBin, KindIntegerOct, KindIntegerDec, KindIntegerHex:
		return true
	default:
		return false
	}
}
