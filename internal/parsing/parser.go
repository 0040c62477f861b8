// Package parsing splits an HTML document into semantically coherent
// sections that can be regenerated independently. Headings open sections
// that run until the next heading of equal or shallower level; tables,
// complex lists, and large code blocks are carved out as standalone
// sections; runs of adjacent paragraphs are grouped together.
package parsing

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/jonathan/document-generator/internal/types"
)

// Options holds the hand-tuned segmentation thresholds. They are
// configuration rather than constants so callers can experiment, but the
// defaults are load-bearing for behavioral compatibility.
type Options struct {
	// MaxParagraphDistance is the maximum number of intervening non-text
	// sibling elements between two paragraphs for them to be grouped.
	MaxParagraphDistance int
	// ComplexListItems promotes a list to a standalone section when it has
	// more than this many direct li children.
	ComplexListItems int
	// ComplexListNested promotes a list with more than this many nested lists.
	ComplexListNested int
	// LargeCodeLines / LargeCodeChars promote a code block to standalone.
	LargeCodeLines int
	LargeCodeChars int
}

// DefaultOptions returns the segmentation thresholds used in production.
func DefaultOptions() Options {
	return Options{
		MaxParagraphDistance: 2,
		ComplexListItems:     5,
		ComplexListNested:    1,
		LargeCodeLines:       3,
		LargeCodeChars:       200,
	}
}

// Parser extracts ordered, hierarchy-linked sections from raw HTML.
type Parser struct {
	opts Options
}

// NewParser returns a Parser with default thresholds.
func NewParser() *Parser {
	return &Parser{opts: DefaultOptions()}
}

// NewParserWithOptions returns a Parser with custom thresholds.
func NewParserWithOptions(opts Options) *Parser {
	return &Parser{opts: opts}
}

// Parse splits raw HTML into ordered sections. Malformed markup is
// repaired best-effort by the underlying HTML parser and never fails;
// empty or whitespace-only input yields an empty slice.
func (p *Parser) Parse(rawHTML string) []types.Section {
	if strings.TrimSpace(rawHTML) == "" {
		return nil
	}

	// html.Parse repairs unclosed tags and never fails on an in-memory
	// reader, so the error is unreachable in practice.
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	cleanTree(doc)

	root := findBody(doc)
	if root == nil {
		root = doc
	}

	units := flattenUnits(root)
	sections := p.groupUnits(units)
	linkHierarchy(sections)
	return sections
}

// findBody locates the body element the parser substrate always inserts.
func findBody(doc *html.Node) *html.Node {
	return findFirst(doc, func(a atom.Atom) bool { return a == atom.Body })
}

// spliceContainers are generic block containers whose children are lifted
// into the top-level stream when they wrap headings or tables, so that
// boundary detection sees the real structure instead of the wrapper.
var spliceContainers = map[atom.Atom]bool{
	atom.Div:     true,
	atom.Section: true,
	atom.Article: true,
	atom.Main:    true,
	atom.Header:  true,
	atom.Footer:  true,
	atom.Aside:   true,
	atom.Nav:     true,
}

// flattenUnits produces the ordered stream of nodes boundary detection
// operates on: the direct children of root, with wrapper containers that
// hide headings or tables spliced open recursively.
func flattenUnits(root *html.Node) []*html.Node {
	var units []*html.Node
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			units = append(units, c)
		case html.ElementNode:
			if spliceContainers[c.DataAtom] && hidesStructure(c) {
				units = append(units, flattenUnits(c)...)
			} else {
				units = append(units, c)
			}
		}
	}
	return units
}

// hidesStructure reports whether a container wraps boundary-significant
// elements (headings or tables) that must become their own sections.
func hidesStructure(n *html.Node) bool {
	return findFirst(n, func(a atom.Atom) bool {
		return isHeadingAtom(a) || a == atom.Table
	}) != nil
}

// groupUnits walks the unit stream once, opening and closing section
// groups according to the boundary rules.
func (p *Parser) groupUnits(units []*html.Node) []types.Section {
	var sections []types.Section

	var group []*html.Node
	var groupKind types.SectionKind
	inHeading := false
	gap := 0

	flush := func() {
		if len(group) > 0 {
			if sec, ok := materialize(group, groupKind, len(sections)); ok {
				sections = append(sections, sec)
			}
		}
		group = nil
		inHeading = false
		gap = 0
	}

	standalone := func(n *html.Node, kind types.SectionKind) {
		flush()
		if sec, ok := materialize([]*html.Node{n}, kind, len(sections)); ok {
			sections = append(sections, sec)
		}
	}

	appendToGroup := func(n *html.Node, kind types.SectionKind) {
		if len(group) == 0 {
			groupKind = kind
		}
		group = append(group, n)
		gap = 0
	}

	for _, u := range units {
		if u.Type == html.TextNode {
			if strings.TrimSpace(u.Data) == "" {
				continue
			}
			// Significant loose text breaks paragraph adjacency but is
			// still claimed, either by the open heading span or by a
			// fresh paragraph group.
			if !inHeading && groupKind == types.KindParagraph && len(group) > 0 {
				flush()
			}
			appendToGroup(u, types.KindParagraph)
			continue
		}

		a := u.DataAtom
		switch {
		case isHeadingAtom(a):
			flush()
			appendToGroup(u, types.KindHeading)
			inHeading = true

		case a == atom.Table:
			// Tables never merge with surrounding content.
			standalone(u, types.KindTable)

		case isListAtom(a):
			if inHeading && !p.isComplexList(u) {
				appendToGroup(u, groupKind)
			} else {
				standalone(u, types.KindList)
			}

		case isCodeAtom(a):
			if inHeading && !p.isLargeCodeBlock(u) {
				appendToGroup(u, groupKind)
			} else {
				standalone(u, types.KindCodeBlock)
			}

		case a == atom.Img:
			if inHeading {
				appendToGroup(u, groupKind)
			} else {
				standalone(u, types.KindImage)
			}

		case a == atom.Br || a == atom.Hr:
			// Kept by cleaning but insignificant for adjacency.
			continue

		default:
			if !hasVisibleText(u) {
				// Empty leftovers count toward paragraph distance.
				gap++
				if !inHeading && groupKind == types.KindParagraph && len(group) > 0 && gap > p.opts.MaxParagraphDistance {
					flush()
				}
				continue
			}
			if inHeading {
				appendToGroup(u, groupKind)
			} else {
				appendToGroup(u, types.KindParagraph)
			}
		}
	}
	flush()

	return sections
}

// isComplexList reports whether a list should interrupt its heading span
// and stand alone: many direct items, nested sublists, or block content
// inside items.
func (p *Parser) isComplexList(n *html.Node) bool {
	directItems := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Li {
			directItems++
			if findFirst(c, func(a atom.Atom) bool {
				return a == atom.P || a == atom.Div || a == atom.Table
			}) != nil {
				return true
			}
		}
	}
	if directItems > p.opts.ComplexListItems {
		return true
	}
	nested := countDescendants(n, func(a atom.Atom) bool { return a == atom.Ul || a == atom.Ol })
	return nested > p.opts.ComplexListNested
}

// isLargeCodeBlock reports whether a code block is large enough to stand alone.
func (p *Parser) isLargeCodeBlock(n *html.Node) bool {
	text := textContent(n)
	return len(strings.Split(text, "\n")) > p.opts.LargeCodeLines || len(text) > p.opts.LargeCodeChars
}
