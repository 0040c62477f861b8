package parsing

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// removeTags are stripped together with their subtrees during cleaning.
var removeTags = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Iframe:   true,
	atom.Noscript: true,
}

// voidTags are kept even when they have no children.
var voidTags = map[atom.Atom]bool{
	atom.Br:    true,
	atom.Hr:    true,
	atom.Img:   true,
	atom.Input: true,
}

// cleanTree normalizes a parsed HTML tree in place: comments and disallowed
// tags are removed, whitespace runs in text nodes collapse to a single
// space, and elements left childless by cleaning are dropped (void tags
// excepted).
func cleanTree(n *html.Node) {
	removeMatching(n, func(c *html.Node) bool {
		if c.Type == html.CommentNode {
			return true
		}
		return c.Type == html.ElementNode && removeTags[c.DataAtom]
	})
	collapseWhitespace(n)
	dropEmptyElements(n)
}

// removeMatching unlinks every node (and its subtree) for which match
// returns true.
func removeMatching(n *html.Node, match func(*html.Node) bool) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if match(c) {
			n.RemoveChild(c)
		} else {
			removeMatching(c, match)
		}
		c = next
	}
}

func collapseWhitespace(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			c.Data = whitespaceRE.ReplaceAllString(c.Data, " ")
		} else {
			collapseWhitespace(c)
		}
	}
}

// dropEmptyElements removes childless non-void elements. Children are
// processed first so that containers emptied by the removal of their own
// empty children are removed as well.
func dropEmptyElements(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		dropEmptyElements(c)
		if c.Type == html.ElementNode && c.FirstChild == nil && !voidTags[c.DataAtom] {
			n.RemoveChild(c)
		}
		c = next
	}
}

// textContent returns the concatenated text of a node's subtree.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// hasVisibleText reports whether the subtree contains any non-whitespace text.
func hasVisibleText(n *html.Node) bool {
	return strings.TrimSpace(textContent(n)) != ""
}

// findFirst returns the first descendant element whose tag satisfies match,
// in document order, or nil.
func findFirst(n *html.Node, match func(atom.Atom) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c.DataAtom) {
			return c
		}
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

// countDescendants counts descendant elements whose tag satisfies match.
func countDescendants(n *html.Node, match func(atom.Atom) bool) int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c.DataAtom) {
			count++
		}
		count += countDescendants(c, match)
	}
	return count
}

func isHeadingAtom(a atom.Atom) bool {
	switch a {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return false
}

func isListAtom(a atom.Atom) bool {
	return a == atom.Ul || a == atom.Ol || a == atom.Dl
}

func isCodeAtom(a atom.Atom) bool {
	return a == atom.Pre || a == atom.Code
}

// headingLevel extracts the numeric level from a heading tag name (h2 -> 2).
func headingLevel(n *html.Node) int {
	if len(n.Data) == 2 && n.Data[0] == 'h' && n.Data[1] >= '1' && n.Data[1] <= '6' {
		return int(n.Data[1] - '0')
	}
	return 0
}
