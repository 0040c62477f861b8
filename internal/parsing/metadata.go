package parsing

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/jonathan/document-generator/internal/types"
)

var wordRE = regexp.MustCompile(`\w+`)

// materialize serializes a group of nodes into a Section in document
// order. Returns false when the group has no renderable content.
func materialize(group []*html.Node, kind types.SectionKind, orderIndex int) (types.Section, bool) {
	var sb strings.Builder
	for _, n := range group {
		// Render never fails for in-memory nodes and a strings.Builder.
		_ = html.Render(&sb, n)
	}
	content := sb.String()
	if strings.TrimSpace(content) == "" {
		return types.Section{}, false
	}

	return types.Section{
		ID:          uuid.NewString(),
		HTMLContent: content,
		Kind:        kind,
		Metadata:    extractMetadata(content, kind),
		OrderIndex:  orderIndex,
	}, true
}

// mainTagSelectors maps section kinds to the selector used to find the
// fragment's dominant element.
var mainTagSelectors = map[types.SectionKind]string{
	types.KindHeading:   "h1, h2, h3, h4, h5, h6",
	types.KindTable:     "table",
	types.KindList:      "ul, ol, dl",
	types.KindCodeBlock: "pre, code",
	types.KindImage:     "img",
}

// extractMetadata derives structural metadata from a section's serialized
// HTML fragment.
func extractMetadata(fragment string, kind types.SectionKind) types.SectionMetadata {
	meta := types.SectionMetadata{TagName: "div"}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return meta
	}

	var main *goquery.Selection
	if sel, ok := mainTagSelectors[kind]; ok {
		main = doc.Find(sel).First()
	} else {
		main = doc.Find("body > *").First()
	}

	if main.Length() > 0 {
		node := main.Get(0)
		meta.TagName = node.Data
		if kind == types.KindHeading {
			meta.Level = headingLevel(node)
		}
		for _, attr := range node.Attr {
			if attr.Key == "class" {
				meta.Classes = strings.Fields(attr.Val)
			} else {
				if meta.Attributes == nil {
					meta.Attributes = make(map[string]string)
				}
				meta.Attributes[attr.Key] = attr.Val
			}
		}
	}

	text := doc.Find("body").Text()
	meta.WordCount = len(wordRE.FindAllString(text, -1))
	meta.ComplexityScore = complexityScore(doc, text)
	return meta
}

// complexityScore is a structural heuristic: element count, tables, lists,
// attribute count, nesting depth, and text length all contribute. It is a
// signal for prompt budgeting, not a hard gate.
func complexityScore(doc *goquery.Document, text string) float64 {
	score := 1.0

	elements := doc.Find("body *")
	score += float64(elements.Length()) * 0.1
	score += float64(doc.Find("table").Length()) * 2.0
	score += float64(doc.Find("ul, ol, dl").Length()) * 1.5

	attrCount := 0
	maxDepth := 0
	elements.Each(func(_ int, s *goquery.Selection) {
		attrCount += len(s.Get(0).Attr)
		if depth := s.ParentsUntil("body").Length(); depth > maxDepth {
			maxDepth = depth
		}
	})
	score += float64(attrCount) * 0.2
	score += float64(maxDepth) * 0.5

	score += float64(len(text)) * 0.001
	return score
}
