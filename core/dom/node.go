package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Attr returns the value of the named attribute, as written in the source,
// and whether it is present.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return source(a.Val), true
		}
	}
	return "", false
}

// SetAttr sets key to val, replacing an existing value in place. val is
// source text, like the values Attr returns.
func SetAttr(n *html.Node, key, val string) {
	val = tree(val)
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes the named attribute and reports whether it existed.
func RemoveAttr(n *html.Node, key string) bool {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return true
		}
	}
	return false
}

// Is reports whether n is an element with the given tag.
func Is(n *html.Node, tag atom.Atom) bool {
	return n != nil && n.Type == html.ElementNode && n.DataAtom == tag
}

// Content classifies the direct children of a node. Whitespace-only text
// is ignored.
type Content struct {
	Elements []*html.Node
	Comments int
	Text     bool // non-blank text or raw nodes
}

// ChildContent inspects the direct children of n.
func ChildContent(n *html.Node) Content {
	var c Content
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		switch ch.Type {
		case html.ElementNode:
			c.Elements = append(c.Elements, ch)
		case html.CommentNode:
			c.Comments++
		case html.TextNode:
			if strings.TrimSpace(ch.Data) != "" {
				c.Text = true
			}
		case html.RawNode:
			c.Text = true
		}
	}
	return c
}

// SoleChild returns the only element child of n when it has the given tag,
// no comments sit beside it, and no text surrounds it.
func SoleChild(n *html.Node, tag atom.Atom) *html.Node {
	c := ChildContent(n)
	if len(c.Elements) != 1 || c.Comments != 0 || c.Text || !Is(c.Elements[0], tag) {
		return nil
	}
	return c.Elements[0]
}

// Text returns the concatenated text of n and its descendants as written in
// the source, so "&nbsp;" stays five characters. Raw nodes contribute their
// markup unchanged.
func Text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode || n.Type == html.RawNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return source(b.String())
}

// HasComment reports whether any descendant of n is a comment.
func HasComment(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.CommentNode || HasComment(c) {
			return true
		}
	}
	return false
}

// Remove detaches n from its parent.
func Remove(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Replace puts repl where old was. repl is detached from its current
// parent first.
func Replace(old, repl *html.Node) {
	parent := old.Parent
	if parent == nil {
		return
	}
	Remove(repl)
	parent.InsertBefore(repl, old)
	parent.RemoveChild(old)
}

// TextNode creates a text node from source text: character references in
// data are written out as they are.
func TextNode(data string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: tree(data)}
}

// Comment creates a comment node; data is written between <!-- and -->.
func Comment(data string) *html.Node {
	return &html.Node{Type: html.CommentNode, Data: tree(data)}
}

// Raw creates a node rendered without escaping, such as &#847; padding.
func Raw(markup string) *html.Node {
	return &html.Node{Type: html.RawNode, Data: tree(markup)}
}

// InsertAfter places n directly after ref.
func InsertAfter(ref, n *html.Node) {
	if ref.Parent == nil {
		return
	}
	ref.Parent.InsertBefore(n, ref.NextSibling)
}
