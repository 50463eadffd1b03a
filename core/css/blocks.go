// Package css parses, classifies, and prunes the <style> block of an
// editor export.
//
// Only the top-level block structure is understood: rules, @media blocks
// and semicolon-terminated at-rules. Declarations are kept as opaque text.
package css

import "strings"

// BlockKind distinguishes the variants of Block.
type BlockKind int

const (
	// RuleBlock is "selector { body }".
	RuleBlock BlockKind = iota
	// MediaBlock is "@media query { rules }".
	MediaBlock
	// StatementBlock is an at-rule without a body, e.g. @import.
	StatementBlock
)

// Block is one top-level construct of a style sheet.
type Block struct {
	Kind     BlockKind
	Selector string  // RuleBlock
	Body     string  // RuleBlock
	Query    string  // MediaBlock
	Rules    []Block // MediaBlock
	Raw      string  // source text, verbatim
}

// ParseBlocks splits a style sheet into blocks in source order. Parsing
// stops at the first block that is not terminated; everything before it is
// returned.
func ParseBlocks(css string) []Block {
	return parseBlocks(css, true)
}

func parseBlocks(css string, topLevel bool) []Block {
	var blocks []Block
	i := 0
	for i < len(css) {
		i = skipSpace(css, i)
		if i >= len(css) {
			break
		}

		open := scanTo(css, i, '{')
		if css[i] == '@' {
			if semi := scanTo(css, i, ';'); semi >= 0 && (open < 0 || semi < open) {
				blocks = append(blocks, Block{Kind: StatementBlock, Raw: css[i : semi+1]})
				i = semi + 1
				continue
			}
		}
		if open < 0 {
			break
		}
		end := matchBrace(css, open)
		if end < 0 {
			break
		}

		head := strings.TrimSpace(css[i:open])
		inner := css[open+1 : end]
		raw := css[i : end+1]
		if topLevel && strings.HasPrefix(head, "@media") {
			blocks = append(blocks, Block{
				Kind:  MediaBlock,
				Query: head,
				Rules: parseBlocks(inner, false),
				Raw:   raw,
			})
		} else {
			blocks = append(blocks, Block{
				Kind:     RuleBlock,
				Selector: head,
				Body:     strings.TrimSpace(inner),
				Raw:      raw,
			})
		}
		i = end + 1
	}
	return blocks
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// scanTo returns the index of the first unescaped target byte at or after
// i, outside strings and comments, or -1.
func scanTo(s string, i int, target byte) int {
	for i < len(s) {
		switch c := s[i]; {
		case c == target:
			return i
		case c == '\\':
			i += 2
			continue
		case c == '"' || c == '\'':
			i = skipString(s, i)
			continue
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			i = skipComment(s, i)
			continue
		}
		i++
	}
	return -1
}

// matchBrace returns the index of the '}' closing the '{' at open, or -1.
func matchBrace(s string, open int) int {
	depth := 1
	i := open + 1
	for i < len(s) {
		switch c := s[i]; {
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return i
			}
		case c == '\\':
			i += 2
			continue
		case c == '"' || c == '\'':
			i = skipString(s, i)
			continue
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			i = skipComment(s, i)
			continue
		}
		i++
	}
	return -1
}

func skipString(s string, i int) int {
	quote := s[i]
	i++
	for i < len(s) {
		switch s[i] {
		case '\\':
			i += 2
			continue
		case quote, '\n':
			return i + 1
		}
		i++
	}
	return i
}

func skipComment(s string, i int) int {
	if end := strings.Index(s[i+2:], "*/"); end >= 0 {
		return i + 2 + end + 2
	}
	return len(s)
}

// Serialize writes blocks back as a style sheet, top-level blocks separated
// by a blank line. Rules and statements are emitted verbatim; media blocks
// are rebuilt from their remaining rules.
func Serialize(blocks []Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n\n")
}

// String renders a single block.
func (b Block) String() string {
	if b.Kind != MediaBlock {
		return b.Raw
	}
	inner := make([]string, 0, len(b.Rules))
	for _, r := range b.Rules {
		inner = append(inner, r.String())
	}
	return b.Query + " {\n" + strings.Join(inner, "\n") + "\n}"
}
