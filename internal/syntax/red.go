package syntax

import "github.com/tombi-toml/tombi/internal/text"

// Node is a red-tree cursor: a lightweight view over a GreenNode that knows
// its absolute byte offset and parent. Nodes are cheap to create and are
// not cached — re-deriving a Node from (parent, green, offset) is O(1), so
// there is no back-pointer graph to keep consistent (spec §9).
type Node struct {
	green  *GreenNode
	parent *Node
	offset text.Offset
}

// NewRoot builds the red-tree root over a parsed green tree.
func NewRoot(green *GreenNode) *Node {
	return &Node{green: green, parent: nil, offset: 0}
}

// Kind returns the underlying green node's kind.
func (n *Node) Kind() Kind { return n.green.Kind() }

// Green returns the underlying immutable green node.
func (n *Node) Green() *GreenNode { return n.green }

// Parent returns the enclosing node, or nil at the root.
func (n *Node) Parent() *Node { return n.parent }

// Range returns this node's absolute byte range in the source buffer.
func (n *Node) Range() text.ByteRange {
	return text.NewByteRange(n.offset, n.offset.Add(n.green.Len()))
}

// Element is either a *Node or a *Token, the red-tree equivalent of
// GreenElement, each carrying its own absolute offset.
type Element interface {
	Range() text.ByteRange
	isElement()
}

func (n *Node) isElement() {}
func (t *Token) isElement() {}

// Children returns the node's immediate red children (nodes and tokens),
// computing each one's absolute offset from the running cursor position.
func (n *Node) Children() []Element {
	out := make([]Element, 0, len(n.green.children))
	cursor := n.offset
	for _, c := range n.green.children {
		switch g := c.(type) {
		case *GreenNode:
			out = append(out, &Node{green: g, parent: n, offset: cursor})
		case *GreenToken:
			out = append(out, &Token{green: g, parent: n, offset: cursor})
		}
		cursor = cursor.Add(c.Len())
	}
	return out
}

// ChildNodes returns only the child elements that are nodes.
func (n *Node) ChildNodes() []*Node {
	var out []*Node
	for _, e := range n.Children() {
		if c, ok := e.(*Node); ok {
			out = append(out, c)
		}
	}
	return out
}

// ChildTokens returns only the child elements that are tokens.
func (n *Node) ChildTokens() []*Token {
	var out []*Token
	for _, e := range n.Children() {
		if t, ok := e.(*Token); ok {
			out = append(out, t)
		}
	}
	return out
}

// FirstChildOfKind returns the first child node with the given kind.
func (n *Node) FirstChildOfKind(kind Kind) *Node {
	for _, c := range n.ChildNodes() {
		if c.Kind() == kind {
			return c
		}
	}
	return nil
}

// ChildrenOfKind returns every child node with the given kind, in order.
func (n *Node) ChildrenOfKind(kind Kind) []*Node {
	var out []*Node
	for _, c := range n.ChildNodes() {
		if c.Kind() == kind {
			out = append(out, c)
		}
	}
	return out
}

// FirstTokenOfKind returns the first child token with the given kind.
func (n *Node) FirstTokenOfKind(kind Kind) *Token {
	for _, t := range n.ChildTokens() {
		if t.Kind() == kind {
			return t
		}
	}
	return nil
}

// Text reconstructs this node's exact source text.
func (n *Node) Text() string { return n.green.Text() }

// Token is a red-tree leaf cursor over a GreenToken.
type Token struct {
	green  *GreenToken
	parent *Node
	offset text.Offset
}

// Kind returns the underlying green token's kind.
func (t *Token) Kind() Kind { return t.green.Kind() }

// Text returns the token's exact source text.
func (t *Token) Text() string { return t.green.text }

// Parent returns the enclosing node.
func (t *Token) Parent() *Node { return t.parent }

// Range returns this token's absolute byte range.
func (t *Token) Range() text.ByteRange {
	return text.NewByteRange(t.offset, t.offset.Add(t.green.Len()))
}
