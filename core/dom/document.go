// Package dom wraps goquery and golang.org/x/net/html into the mutable
// document tree every transform works on.
//
// Editor exports are usually full documents, but snippets (a single table, a
// section pasted from a template) are accepted too: they are parsed as a body
// fragment and rendered back without the implied <html>/<head>/<body> tags.
package dom

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// fullDocument detects markup that carries its own document structure.
var fullDocument = regexp.MustCompile(`(?i)<(!doctype|html|head|body)[\s>]`)

// Document is one parsed email. It is not safe for concurrent use.
type Document struct {
	root     *html.Node
	doc      *goquery.Document
	fragment bool
}

// Parse builds a Document from raw markup. Character references are not
// decoded: text and attribute values keep their source spelling.
func Parse(src string) (*Document, error) {
	src = tree(src)
	if fullDocument.MatchString(src) {
		root, err := html.Parse(strings.NewReader(src))
		if err != nil {
			return nil, fmt.Errorf("parsing HTML document: %w", err)
		}
		return newDocument(root, false), nil
	}

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(src), body)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML fragment: %w", err)
	}
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return newDocument(root, true), nil
}

func newDocument(root *html.Node, fragment bool) *Document {
	return &Document{
		root:     root,
		doc:      goquery.NewDocumentFromNode(root),
		fragment: fragment,
	}
}

// Fragment reports whether the source was parsed as a body fragment.
func (d *Document) Fragment() bool {
	return d.fragment
}

// Root returns the selection holding the document node.
func (d *Document) Root() *goquery.Selection {
	return d.doc.Selection
}

// Find returns all elements matching a CSS selector, in document order.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// FindMatcher is Find for a precompiled matcher.
func (d *Document) FindMatcher(m goquery.Matcher) *goquery.Selection {
	return d.doc.FindMatcher(m)
}

// Snapshot materializes the nodes matched by m so callers can mutate the
// tree while iterating.
func (d *Document) Snapshot(m goquery.Matcher) []*html.Node {
	nodes := d.doc.FindMatcher(m).Nodes
	out := make([]*html.Node, len(nodes))
	copy(out, nodes)
	return out
}

// Attached reports whether n is still reachable from the document root.
func (d *Document) Attached(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == d.root {
			return true
		}
	}
	return false
}

// Elements returns every element node in document order.
func (d *Document) Elements() []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(d.root)
	return out
}

// Render serializes the document. Comments, including Outlook conditional
// comments, text and raw nodes are written back verbatim.
func (d *Document) Render() (string, error) {
	undo := prepare(d.root)
	defer undo()

	var b strings.Builder
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", fmt.Errorf("rendering HTML: %w", err)
		}
	}
	return source(unescapeAttr.Replace(b.String())), nil
}

// prepare turns comments and text into raw nodes, since the renderer
// escapes '&', '\'' and '>' in them. The returned func restores the tree.
func prepare(root *html.Node) func() {
	type saved struct {
		n    *html.Node
		typ  html.NodeType
		data string
	}
	var changed []saved
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.CommentNode:
				changed = append(changed, saved{c, c.Type, c.Data})
				c.Type = html.RawNode
				c.Data = "<!--" + c.Data + "-->"
			case html.TextNode:
				if literalText(n) {
					continue
				}
				changed = append(changed, saved{c, c.Type, c.Data})
				data := escapeText(c.Data)
				if c == n.FirstChild && strings.HasPrefix(data, "\n") && leadingNewline(n) {
					data = "\n" + data
				}
				c.Type = html.RawNode
				c.Data = data
			default:
				walk(c)
			}
		}
	}
	walk(root)

	return func() {
		for _, s := range changed {
			s.n.Type = s.typ
			s.n.Data = s.data
		}
	}
}

// literalText reports whether the renderer already writes n's text
// unescaped.
func literalText(n *html.Node) bool {
	if n.Type != html.ElementNode || n.Namespace != "" {
		return false
	}
	switch n.DataAtom {
	case atom.Iframe, atom.Noembed, atom.Noframes, atom.Noscript, atom.Plaintext, atom.Script, atom.Style, atom.Xmp:
		return true
	}
	return false
}

// leadingNewline reports whether the parser drops a newline right after n's
// start tag, so the renderer has to write one back.
func leadingNewline(n *html.Node) bool {
	return n.Type == html.ElementNode && (n.DataAtom == atom.Pre || n.DataAtom == atom.Listing || n.DataAtom == atom.Textarea)
}
