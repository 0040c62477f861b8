// Package types contains the shared data structures for the document
// generation system: parsed sections, generated content, and user context.
package types

// SectionKind classifies a parsed document section.
type SectionKind string

// Section kinds recognized by the HTML section parser.
const (
	KindHeading   SectionKind = "heading"
	KindParagraph SectionKind = "paragraph"
	KindTable     SectionKind = "table"
	KindList      SectionKind = "list"
	KindCodeBlock SectionKind = "code_block"
	KindImage     SectionKind = "image"
	KindCustom    SectionKind = "custom"
)

// SectionMetadata describes the structure of a section's HTML fragment.
type SectionMetadata struct {
	// Level is the heading level (1-6) for heading sections, 0 otherwise.
	Level int `json:"level"`
	// TagName is the dominant HTML tag of the section (h1, p, table, ...).
	TagName string `json:"tag_name"`
	// Classes holds the CSS classes of the main element.
	Classes []string `json:"classes,omitempty"`
	// Attributes holds the main element's non-class attributes.
	Attributes map[string]string `json:"attributes,omitempty"`
	// WordCount is the number of word tokens in the section's visible text.
	WordCount int `json:"word_count"`
	// ComplexityScore is a structural heuristic; higher means more complex.
	ComplexityScore float64 `json:"complexity_score"`
}

// Section is a logical unit of a parsed HTML document that can be
// regenerated independently. Sections form a forest via ParentID/Children
// id references; a child's HTMLContent is always disjoint from its parent's.
type Section struct {
	ID          string          `json:"id"`
	HTMLContent string          `json:"html_content"`
	Kind        SectionKind     `json:"kind"`
	Metadata    SectionMetadata `json:"metadata"`
	// ParentID references an enclosing section by id, empty for roots.
	ParentID string `json:"parent_id,omitempty"`
	// Children lists child section ids in document order.
	Children []string `json:"children,omitempty"`
	// OrderIndex is the position in document reading order, starting at 0.
	OrderIndex int `json:"order_index"`
}

// IsHeading reports whether the section is a heading section.
func (s *Section) IsHeading() bool {
	return s.Kind == KindHeading
}

// SectionIndex maps section ids to positions in an ordered section slice,
// giving O(1) lookup during hierarchy linking and later traversal.
type SectionIndex map[string]int

// BuildSectionIndex builds an id -> slice-index map for the given sections.
func BuildSectionIndex(sections []Section) SectionIndex {
	idx := make(SectionIndex, len(sections))
	for i := range sections {
		idx[sections[i].ID] = i
	}
	return idx
}
