package ast

import (
	"strings"

	"github.com/tombi-toml/tombi/internal/syntax"
	"github.com/tombi-toml/tombi/internal/text"
)

// Comment wraps a single KindComment token with the accessors the
// formatter needs: its raw text and the text with the leading '#' (and
// exactly one following space, if present) stripped.
type Comment struct{ Tok *syntax.Token }

// Range returns the comment token's absolute byte range.
func (c Comment) Range() text.ByteRange { return c.Tok.Range() }

// Text returns the comment's exact source text, '#' included.
func (c Comment) Text() string { return c.Tok.Text() }

// Content returns the comment with its leading '#' and one following
// space stripped, the form the formatter re-emits after normalizing
// spacing (spec §4.7).
func (c Comment) Content() string {
	s := strings.TrimPrefix(c.Tok.Text(), "#")
	return strings.TrimPrefix(s, " ")
}

// CommentGroup is a maximal run of comment lines with no blank line
// between them — the unit leading/dangling comments are reported in
// (spec §3.3).
type CommentGroup []Comment

// Range spans from the first comment to the last.
func (g CommentGroup) Range() text.ByteRange {
	return text.NewByteRange(g[0].Range().Start, g[len(g)-1].Range().End)
}

// Comments returns the group's individual comment lines.
func (g CommentGroup) Comments() []Comment { return g }

// siblingSpan is one contiguous run of trivia Elements taken from a
// node's actual parent children slice, preserving source order.
type siblingSpan []syntax.Element

// commentGroups splits a trivia span into blank-line-separated groups,
// and reports how many line breaks followed the final comment (used by
// the caller to decide whether that last group is adjacent to whatever
// comes next, i.e. whether it counts as "leading").
func commentGroups(span siblingSpan) (groups []CommentGroup, trailingBreaks int) {
	var current CommentGroup
	breaksSinceComment := 0
	for _, e := range span {
		t, ok := e.(*syntax.Token)
		if !ok {
			continue
		}
		switch t.Kind() {
		case syntax.KindComment:
			if breaksSinceComment >= 2 && len(current) > 0 {
				groups = append(groups, current)
				current = nil
			}
			current = append(current, Comment{Tok: t})
			breaksSinceComment = 0
		case syntax.KindLineBreak:
			breaksSinceComment++
		}
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups, breaksSinceComment
}

// indexAmong finds e's position in siblings by identity of its range,
// since red-tree Elements are recreated on every Children() call and
// are never pointer-stable.
func indexAmong(siblings []syntax.Element, e syntax.Element) int {
	r := e.Range()
	for i, s := range siblings {
		if s.Range() == r {
			return i
		}
	}
	return -1
}

// precedingTrivia returns the maximal run of trivia-kind elements that
// immediately precede n among its parent's children, in source order.
func precedingTrivia(n *syntax.Node) siblingSpan {
	parent := n.Parent()
	if parent == nil {
		return nil
	}
	siblings := parent.Children()
	idx := indexAmong(siblings, n)
	if idx <= 0 {
		return nil
	}
	var rev siblingSpan
	for i := idx - 1; i >= 0; i-- {
		t, ok := siblings[i].(*syntax.Token)
		if !ok || !t.Kind().IsTrivia() {
			break
		}
		rev = append(rev, t)
	}
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}

// followingTrivia returns the maximal run of trivia-kind elements that
// immediately follow n among its parent's children, in source order.
func followingTrivia(n *syntax.Node) siblingSpan {
	parent := n.Parent()
	if parent == nil {
		return nil
	}
	siblings := parent.Children()
	idx := indexAmong(siblings, n)
	if idx < 0 {
		return nil
	}
	var out siblingSpan
	for i := idx + 1; i < len(siblings); i++ {
		t, ok := siblings[i].(*syntax.Token)
		if !ok || !t.Kind().IsTrivia() {
			break
		}
		out = append(out, t)
	}
	return out
}

// LeadingComment returns the comment group immediately above n (no
// blank line separating them), or nil if n has none.
func LeadingComment(n *syntax.Node) *CommentGroup {
	span := precedingTrivia(n)
	if span == nil {
		return nil
	}
	groups, trailingBreaks := commentGroups(span)
	if len(groups) == 0 || trailingBreaks >= 2 {
		return nil
	}
	g := groups[len(groups)-1]
	return &g
}

// TrailingComment returns the same-line comment attached directly
// inside n (the parser attaches a KeyValue/header's trailing `# ...`
// as one of n's own child tokens, ahead of any line break), or nil if
// there is none.
func TrailingComment(n *syntax.Node) *Comment {
	for _, tok := range n.ChildTokens() {
		switch tok.Kind() {
		case syntax.KindComment:
			c := Comment{Tok: tok}
			return &c
		case syntax.KindLineBreak:
			return nil
		}
	}
	return nil
}

// bodyChildren returns n's child nodes that belong to its body rather
// than its header — a Table/ArrayOfTable's own KindKeys node (its `[a.b]`
// header) never leads or dangles independently, so it is excluded.
func bodyChildren(n *syntax.Node) []*syntax.Node {
	var out []*syntax.Node
	for _, c := range n.ChildNodes() {
		if c.Kind() == syntax.KindKeys {
			continue
		}
		out = append(out, c)
	}
	return out
}

// BeginDanglingComments returns the comment groups that precede n's
// first structural child but are separated from it by a blank line (or
// have no following structural child at all) — comments that dangle at
// the start of a table/array/inline-table body rather than leading any
// particular item.
func BeginDanglingComments(n *syntax.Node) []CommentGroup {
	children := bodyChildren(n)
	if len(children) == 0 {
		return DanglingComments(n)
	}
	first := children[0]
	span := precedingWithinParent(n, first)
	groups, trailingBreaks := commentGroups(span)
	if len(groups) == 0 {
		return nil
	}
	if trailingBreaks < 2 {
		// last group belongs to `first` as its LeadingComment instead.
		groups = groups[:len(groups)-1]
	}
	return groups
}

// EndDanglingComments returns the comment groups that follow n's last
// structural child, inside n's own closing boundary.
func EndDanglingComments(n *syntax.Node) []CommentGroup {
	children := bodyChildren(n)
	if len(children) == 0 {
		return nil
	}
	last := children[len(children)-1]
	span := followingWithinParent(n, last)
	groups, _ := commentGroups(span)
	return groups
}

// DanglingComments returns every comment group found directly inside n
// when n has no structural children at all (an empty inline table, an
// empty array, or a file containing only comments).
func DanglingComments(n *syntax.Node) []CommentGroup {
	var span siblingSpan
	for _, e := range n.Children() {
		if t, ok := e.(*syntax.Token); ok {
			span = append(span, t)
		}
	}
	groups, _ := commentGroups(span)
	return groups
}

// precedingWithinParent returns the trivia run inside parent that
// precedes child, from the start of parent's own children.
func precedingWithinParent(parent *syntax.Node, child *syntax.Node) siblingSpan {
	siblings := parent.Children()
	idx := indexAmong(siblings, child)
	if idx <= 0 {
		return nil
	}
	var out siblingSpan
	for i := 0; i < idx; i++ {
		out = append(out, siblings[i])
	}
	return out
}

// followingWithinParent returns the trivia run inside parent that
// follows child, through the end of parent's own children.
func followingWithinParent(parent *syntax.Node, child *syntax.Node) siblingSpan {
	siblings := parent.Children()
	idx := indexAmong(siblings, child)
	if idx < 0 {
		return nil
	}
	var out siblingSpan
	for i := idx + 1; i < len(siblings); i++ {
		out = append(out, siblings[i])
	}
	return out
}
