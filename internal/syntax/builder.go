package syntax

// Builder assembles a green tree from a flat, linear sequence of
// StartNode/Token/FinishNode calls, mirroring the parser's event stream
// (spec §4.2: "the parser emits three event kinds"). It is not safe for
// concurrent use; each parse gets its own Builder.
type Builder struct {
	stack [][]GreenElement
	cache map[string]*GreenToken
}

// NewBuilder creates an empty Builder ready to receive events for one tree.
func NewBuilder() *Builder {
	return &Builder{
		stack: [][]GreenElement{{}},
		cache: make(map[string]*GreenToken),
	}
}

// StartNode opens a new interior node of the given kind; subsequent Token
// and StartNode/FinishNode calls become its children until the matching
// FinishNode.
func (b *Builder) StartNode(_ Kind) {
	b.stack = append(b.stack, []GreenElement{})
}

// Token appends a leaf token to the node currently open. Tokens with
// identical (kind, text) share one *GreenToken instance, giving the tree
// the structural sharing spec §3.2 calls for.
func (b *Builder) Token(kind Kind, text string) {
	key := string(rune(kind)) + "\x00" + text
	tok, ok := b.cache[key]
	if !ok {
		tok = NewGreenToken(kind, text)
		// Only cache small trivia/punctuation tokens; large string/number
		// literals are rarely repeated and not worth the map growth.
		if len(text) <= 4 || kind.IsTrivia() {
			b.cache[key] = tok
		}
	}
	top := len(b.stack) - 1
	b.stack[top] = append(b.stack[top], tok)
}

// FinishNode closes the most recently opened node, attaching it as a child
// of its parent (or, if this is the outermost StartNode, keeping it as the
// pending root).
func (b *Builder) FinishNode(kind Kind) *GreenNode {
	top := len(b.stack) - 1
	children := b.stack[top]
	b.stack = b.stack[:top]

	node := NewGreenNode(kind, children)
	if len(b.stack) == 0 {
		b.stack = [][]GreenElement{{node}}
		return node
	}
	parent := len(b.stack) - 1
	b.stack[parent] = append(b.stack[parent], node)
	return node
}

// Finish returns the single root node built, assuming exactly one
// StartNode/FinishNode pair has been left open at the top level (the
// caller's Root node).
func (b *Builder) Finish() *GreenNode {
	top := b.stack[len(b.stack)-1]
	if len(top) != 1 {
		panic("syntax: Builder.Finish called with an unbalanced event stream")
	}
	root, ok := top[0].(*GreenNode)
	if !ok {
		panic("syntax: Builder.Finish root element is not a node")
	}
	return root
}
