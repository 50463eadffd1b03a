package transform

import (
	"regexp"
	"strings"

	"github.com/andybalholm/cascadia"

	"github.com/gaurav-prasanna/mailscrub/core"
	"github.com/gaurav-prasanna/mailscrub/core/dom"
)

// EditorClasses are grid and UI classes of the editor. mceText and
// mcnTextContent are deliberately absent: style rules hang off them.
var EditorClasses = []string{
	"imageDropZone",
	"mceGutterContainer",
	"mceLayoutContainer",
	"mceWrapper",
	"mceWrapperInner",
	"mceRow",
	"mceColumn",
	"mceColumn-1",
	"mceColumn-2",
	"mceColumn-3",
	"mceColumn-4",
	"mceColumn-forceSpan",
	"mceSpacerBlock",
	"mceClusterLayout",
	"mceLayout",
	"mceBlockContainer",
	"mceBlockContainerE2E",
	"mceImageBlockContainer",
	"mceTextBlockContainer",
	"mceDividerBlockContainer",
	"mceDividerContainer",
	"mceDividerBlock",
	"mceButtonBlockContainer",
	"mceButtonContainer",
	"mceWidthContainer",
	"mceReverseStack",
	"mceKeepColumns",
	"mceInput",
	"mceErrorMessage",
	"mceImageBorder",
	"mceImage",
	"mceLogo",
	"mceSocialFollowIcon",
	"mceSpacing-24",
	"mceSpacing-12",
	"last-child",
	"mobile-native",
}

// EditorIDs matches block, div, column, gutter and section ids.
var EditorIDs = regexp.MustCompile(`^(b-?\d+|d\d+|mceColumnId-|gutterContainerId-|section_|bodyTable$|root$)`)

var (
	classSel = cascadia.MustCompile("[class]")
	idSel    = cascadia.MustCompile("[id]")
)

// CleanClasses strips editor classes and ids.
type CleanClasses struct {
	classes map[string]bool
	ids     *regexp.Regexp
}

// NewCleanClasses builds the transform from a class list and an id pattern.
func NewCleanClasses(classes []string, ids *regexp.Regexp) *CleanClasses {
	set := make(map[string]bool, len(classes))
	for _, c := range classes {
		set[c] = true
	}
	return &CleanClasses{classes: set, ids: ids}
}

// DefaultCleanClasses uses EditorClasses and EditorIDs.
func DefaultCleanClasses() *CleanClasses {
	return NewCleanClasses(EditorClasses, EditorIDs)
}

// Name implements core.Transform.
func (*CleanClasses) Name() string { return "clean-classes" }

// Apply implements core.Transform.
func (t *CleanClasses) Apply(doc *dom.Document, _ core.Options) core.Stat {
	classes := 0
	for _, n := range doc.Snapshot(classSel) {
		val, _ := dom.Attr(n, "class")
		var kept []string
		for _, c := range strings.Fields(val) {
			if t.classes[c] {
				classes++
				continue
			}
			kept = append(kept, c)
		}
		if len(kept) == 0 {
			dom.RemoveAttr(n, "class")
		} else if len(kept) != len(strings.Fields(val)) {
			dom.SetAttr(n, "class", strings.Join(kept, " "))
		}
	}

	ids := 0
	for _, n := range doc.Snapshot(idSel) {
		if id, _ := dom.Attr(n, "id"); t.ids.MatchString(id) {
			dom.RemoveAttr(n, "id")
			ids++
		}
	}

	return core.NewStat(t.Name()).
		Add("classesRemoved", classes).
		Add("idsRemoved", ids)
}
