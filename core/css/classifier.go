package css

import (
	"regexp"
	"strings"
)

// classEnd closes a class or id pattern so that ".mceRow" does not also
// match ".mceRowOdd".
const classEnd = `(?:$|[^\w-])`

// EditorSelectors match selectors that only target editor scaffolding.
var EditorSelectors = compile(
	`\.mceInput`,
	`\.mceLabel`,
	`\.mceErrorMessage`,
	`div\[contenteditable`,
	`\.mceImageBorder`,
	`\.mceColumn`+classEnd,
	`\.mceColumn-\d`,
	`\.mceColumn-forceSpan`,
	`\.mceKeepColumns`,
	`\.mceBlockContainer`,
	`\.mceWidthContainer`,
	`\.mceReverseStack`,
	`\.mceFooterSection\s`,
	`\.mceLogo`,
	`\.mceSocialFollowIcon`,
	`\.mceSpacing`,
	`\.mceButtonContainer`,
	`\.mceDividerContainer`,
	`\.mceButtonLink`,
	`\.mobile-native`,
	`#bodyTable`,
	`#root`+classEnd,
	`#b-?\d+`,
	`#d\d+`,
	`#mceColumnId`,
	`#gutterContainerId`,
	`#section_`,
	`colgroup`,
	`\.mceImage`+classEnd,
	`\.imageDropZone`,
	`\.mceGutterContainer`,
	`\.mceLayoutContainer`,
	`\.mceLayout`+classEnd,
	`\.mceWrapper(?:Inner)?`+classEnd,
	`\.mceRow`+classEnd,
	`\.mceSpacerBlock`,
	`\.mceClusterLayout`,
	`\.mceTextBlockContainer`,
	`\.mceImageBlockContainer`,
	`\.mceDividerBlockContainer`,
	`\.mceButtonBlockContainer`,
	`\.last-child`,
)

// KeptSelectors name classes whose rules carry font, color and alignment
// for text blocks. A selector mentioning one of them is never editor-only.
var KeptSelectors = compile(
	`\.mceText`+classEnd,
	`\.mcnTextContent`+classEnd,
)

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// Classifier decides which selector groups exist only for the editor.
// It holds no mutable state and may be shared between goroutines.
type Classifier struct {
	editor []*regexp.Regexp
	kept   []*regexp.Regexp
}

// NewClassifier builds a classifier from editor patterns and exceptions.
func NewClassifier(editor, kept []*regexp.Regexp) *Classifier {
	return &Classifier{editor: editor, kept: kept}
}

// DefaultClassifier uses EditorSelectors and KeptSelectors.
func DefaultClassifier() *Classifier {
	return NewClassifier(EditorSelectors, KeptSelectors)
}

// WithEditorPatterns returns a copy of c that also treats the given
// regular expressions as editor selectors.
func (c *Classifier) WithEditorPatterns(patterns []*regexp.Regexp) *Classifier {
	editor := make([]*regexp.Regexp, 0, len(c.editor)+len(patterns))
	editor = append(editor, c.editor...)
	editor = append(editor, patterns...)
	return NewClassifier(editor, c.kept)
}

// IsEditorOnly reports whether every selector of a comma separated group
// targets editor scaffolding. Empty selectors match nothing and are kept.
func (c *Classifier) IsEditorOnly(group string) bool {
	for sel := range strings.SplitSeq(group, ",") {
		if !c.editorSelector(strings.TrimSpace(sel)) {
			return false
		}
	}
	return true
}

func (c *Classifier) editorSelector(sel string) bool {
	if sel == "" || matchAny(c.kept, sel) {
		return false
	}
	return matchAny(c.editor, sel)
}

func matchAny(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}
