package syntax

// GreenToken is an immutable leaf: a kind plus its exact source text.
// Concatenating every GreenToken's Text in tree order reproduces the
// source byte-for-byte (spec §3.2 losslessness invariant).
type GreenToken struct {
	kind Kind
	text string
}

// NewGreenToken builds a leaf token. text is retained verbatim.
func NewGreenToken(kind Kind, text string) *GreenToken {
	return &GreenToken{kind: kind, text: text}
}

// Kind returns the token's kind.
func (t *GreenToken) Kind() Kind { return t.kind }

// Text returns the token's exact source text.
func (t *GreenToken) Text() string { return t.text }

// Len returns the byte length of the token's text.
func (t *GreenToken) Len() uint32 { return uint32(len(t.text)) }

// GreenElement is either a *GreenNode or a *GreenToken. Green children are
// shared by value: two subtrees with identical content may point at the
// same *GreenNode, which is why GreenNode and GreenToken are never mutated
// after construction.
type GreenElement interface {
	Len() uint32
	isGreenElement()
}

func (t *GreenToken) isGreenElement() {}
func (n *GreenNode) isGreenElement()  {}

// GreenNode is an immutable interior node: a kind plus an ordered list of
// green children (nodes and/or tokens, including trivia). Its total text
// length is cached at construction so offset bookkeeping in the red tree
// never re-walks children.
type GreenNode struct {
	kind     Kind
	children []GreenElement
	len      uint32
}

// NewGreenNode builds an interior node from already-built children.
func NewGreenNode(kind Kind, children []GreenElement) *GreenNode {
	var total uint32
	for _, c := range children {
		total += c.Len()
	}
	return &GreenNode{kind: kind, children: children, len: total}
}

// Kind returns the node's kind.
func (n *GreenNode) Kind() Kind { return n.kind }

// Children returns the node's green children in source order.
func (n *GreenNode) Children() []GreenElement { return n.children }

// Len returns the total byte length of the node's text (sum of children).
func (n *GreenNode) Len() uint32 { return n.len }

// Text reconstructs this node's exact source text by concatenating every
// descendant token. Used by tests asserting losslessness; production code
// should prefer reading from the original source buffer via byte ranges.
func (n *GreenNode) Text() string {
	var buf []byte
	var walk func(e GreenElement)
	walk = func(e GreenElement) {
		switch v := e.(type) {
		case *GreenToken:
			buf = append(buf, v.text...)
		case *GreenNode:
			for _, c := range v.children {
				walk(c)
			}
		}
	}
	walk(n)
	return string(buf)
}
