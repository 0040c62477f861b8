package parsing

import (
	"sort"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/document-generator/internal/types"
)

// extractTokens returns the sorted word tokens of the visible text in an
// HTML fragment.
func extractTokens(t *testing.T, fragment string) []string {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	require.NoError(t, err)
	tokens := wordRE.FindAllString(doc.Find("body").Text(), -1)
	sort.Strings(tokens)
	return tokens
}

func TestParseEmptyInput(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name  string
		input string
	}{
		{"empty string", ""},
		{"whitespace only", "   \n\t  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, parser.Parse(tt.input))
		})
	}
}

func TestParseHeadingBoundaries(t *testing.T) {
	parser := NewParser()
	sections := parser.Parse(`<h1>Title</h1><p>Intro</p><h2>Sec</h2><p>Content</p>`)

	require.Len(t, sections, 2)

	assert.Equal(t, types.KindHeading, sections[0].Kind)
	assert.Contains(t, sections[0].HTMLContent, "<h1>Title</h1>")
	assert.Contains(t, sections[0].HTMLContent, "Intro")
	assert.Equal(t, 1, sections[0].Metadata.Level)

	assert.Equal(t, types.KindHeading, sections[1].Kind)
	assert.Contains(t, sections[1].HTMLContent, "<h2>Sec</h2>")
	assert.Contains(t, sections[1].HTMLContent, "Content")
	assert.Equal(t, 2, sections[1].Metadata.Level)

	// h2 nests under the h1 section.
	assert.Equal(t, sections[0].ID, sections[1].ParentID)
	assert.Equal(t, []string{sections[1].ID}, sections[0].Children)
}

func TestParseTableStandalone(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "table between paragraphs",
			input: `<p>Before</p><table><tr><td>Cell</td></tr></table><p>After</p>`,
		},
		{
			name:  "table inside heading span",
			input: `<h2>Costs</h2><p>Intro</p><table><tr><td>Cell</td></tr></table>`,
		},
		{
			name:  "table wrapped in a div",
			input: `<div><p>Before</p><table><tr><td>Cell</td></tr></table></div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sections := parser.Parse(tt.input)

			var tables []types.Section
			for _, s := range sections {
				if s.Kind == types.KindTable {
					tables = append(tables, s)
				}
			}
			require.Len(t, tables, 1)
			assert.Contains(t, tables[0].HTMLContent, "Cell")
			assert.True(t, strings.HasPrefix(tables[0].HTMLContent, "<table"))
			// Surrounding text never leaks into the table section.
			assert.NotContains(t, tables[0].HTMLContent, "Before")
			assert.NotContains(t, tables[0].HTMLContent, "Intro")
		})
	}
}

func TestParseOrderInvariant(t *testing.T) {
	parser := NewParser()
	sections := parser.Parse(`
		<h1>One</h1><p>a</p>
		<h2>Two</h2><p>b</p>
		<table><tr><td>c</td></tr></table>
		<h2>Three</h2><ul><li>d</li></ul>`)

	require.NotEmpty(t, sections)
	for i, sec := range sections {
		assert.Equal(t, i, sec.OrderIndex, "order_index must equal slice position")
		if sec.ParentID != "" {
			idx := types.BuildSectionIndex(sections)
			parentIdx, ok := idx[sec.ParentID]
			require.True(t, ok, "parent id must resolve")
			assert.Less(t, sections[parentIdx].OrderIndex, sec.OrderIndex,
				"parent must precede child in reading order")
		}
	}
}

func TestParseHierarchyAcyclic(t *testing.T) {
	parser := NewParser()
	sections := parser.Parse(`
		<h1>A</h1><p>x</p>
		<h2>B</h2><p>y</p>
		<h3>C</h3><p>z</p>
		<h2>D</h2><p>w</p>`)

	idx := types.BuildSectionIndex(sections)
	for _, sec := range sections {
		seen := map[string]bool{}
		cur := sec
		for cur.ParentID != "" {
			require.False(t, seen[cur.ID], "cycle detected at %s", cur.ID)
			seen[cur.ID] = true
			pos, ok := idx[cur.ParentID]
			require.True(t, ok)
			cur = sections[pos]
		}
	}
}

func TestParseIdempotentStructure(t *testing.T) {
	parser := NewParser()
	input := `<h1>Report</h1><p>Summary text</p><table><tr><th>A</th></tr><tr><td>1</td></tr></table><h2>Detail</h2><p>More</p>`

	first := parser.Parse(input)
	second := parser.Parse(input)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].HTMLContent, second[i].HTMLContent)
		assert.Equal(t, first[i].Kind, second[i].Kind)
		assert.Equal(t, first[i].OrderIndex, second[i].OrderIndex)
		// Fresh ids on every parse.
		assert.NotEqual(t, first[i].ID, second[i].ID)
	}
}

func TestParseRoundTripContainment(t *testing.T) {
	parser := NewParser()
	input := `<h1>Alpha</h1><p>beta gamma</p><h2>delta</h2><ul><li>epsilon</li><li>zeta</li></ul><p>eta theta</p>`

	sections := parser.Parse(input)
	require.NotEmpty(t, sections)

	var joined strings.Builder
	for _, s := range sections {
		joined.WriteString(s.HTMLContent)
	}

	assert.Equal(t, extractTokens(t, input), extractTokens(t, joined.String()),
		"every visible text token must appear exactly once")
}

func TestParseCleaning(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name       string
		input      string
		notWanted  []string
		wantedText string
	}{
		{
			name:       "scripts and styles removed",
			input:      `<script>var x = 1;</script><style>p{color:red}</style><p>Visible</p>`,
			notWanted:  []string{"script", "var x", "color:red"},
			wantedText: "Visible",
		},
		{
			name:       "comments removed",
			input:      `<!-- hidden --><p>Shown</p>`,
			notWanted:  []string{"hidden"},
			wantedText: "Shown",
		},
		{
			name:       "empty tags dropped",
			input:      `<p></p><div><span></span></div><p>Kept</p>`,
			notWanted:  []string{"<span>", "<div>"},
			wantedText: "Kept",
		},
		{
			name:       "whitespace collapsed",
			input:      "<p>a    b\n\n\tc</p>",
			wantedText: "a b c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sections := parser.Parse(tt.input)
			require.NotEmpty(t, sections)

			var joined strings.Builder
			for _, s := range sections {
				joined.WriteString(s.HTMLContent)
			}
			for _, bad := range tt.notWanted {
				assert.NotContains(t, joined.String(), bad)
			}
			assert.Contains(t, joined.String(), tt.wantedText)
		})
	}
}

func TestParseMalformedHTML(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name  string
		input string
	}{
		{"unclosed tags", `<h1>Title<p>Unclosed paragraph`},
		{"stray close tags", `</div><p>Text</p></span>`},
		{"interleaved tags", `<b><i>bold italic</b></i><p>after</p>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				sections := parser.Parse(tt.input)
				assert.NotEmpty(t, sections)
			})
		})
	}
}

func TestParseComplexListPromotion(t *testing.T) {
	parser := NewParser()

	simple := `<h2>Topic</h2><p>intro</p><ul><li>a</li><li>b</li></ul>`
	sections := parser.Parse(simple)
	require.Len(t, sections, 1, "simple list stays inside its heading span")
	assert.Equal(t, types.KindHeading, sections[0].Kind)

	complexList := `<h2>Topic</h2><p>intro</p><ul><li>1</li><li>2</li><li>3</li><li>4</li><li>5</li><li>6</li></ul><p>after</p>`
	sections = parser.Parse(complexList)
	require.Len(t, sections, 3, "complex list splits out of the heading span")
	assert.Equal(t, types.KindHeading, sections[0].Kind)
	assert.Equal(t, types.KindList, sections[1].Kind)
	assert.Equal(t, types.KindParagraph, sections[2].Kind)
	// Split-out content still hangs off the heading.
	assert.Equal(t, sections[0].ID, sections[1].ParentID)
	assert.Equal(t, sections[0].ID, sections[2].ParentID)
}

func TestParseLargeCodeBlockPromotion(t *testing.T) {
	parser := NewParser()

	small := `<h2>Usage</h2><pre>one line</pre>`
	sections := parser.Parse(small)
	require.Len(t, sections, 1, "small code block stays inside its heading span")

	large := `<h2>Usage</h2><pre>` + strings.Repeat("x", 250) + `</pre>`
	sections = parser.Parse(large)
	require.Len(t, sections, 2)
	assert.Equal(t, types.KindCodeBlock, sections[1].Kind)
}

func TestParseNoHeadingsFallback(t *testing.T) {
	parser := NewParser()
	sections := parser.Parse(`<p>one two</p><p>three</p><ul><li>item</li></ul><p>tail</p>`)

	require.Len(t, sections, 3)
	assert.Equal(t, types.KindParagraph, sections[0].Kind)
	assert.Contains(t, sections[0].HTMLContent, "one two")
	assert.Contains(t, sections[0].HTMLContent, "three")
	assert.Equal(t, types.KindList, sections[1].Kind)
	assert.Equal(t, types.KindParagraph, sections[2].Kind)
	for _, s := range sections {
		assert.Empty(t, s.ParentID, "no headings means no parents")
	}
}

func TestParseMetadata(t *testing.T) {
	parser := NewParser()
	sections := parser.Parse(`<h2 class="title main" id="intro">Overview here</h2><p>four words of text</p>`)

	require.Len(t, sections, 1)
	meta := sections[0].Metadata
	assert.Equal(t, "h2", meta.TagName)
	assert.Equal(t, 2, meta.Level)
	assert.Equal(t, []string{"title", "main"}, meta.Classes)
	assert.Equal(t, map[string]string{"id": "intro"}, meta.Attributes)
	assert.Equal(t, 6, meta.WordCount)
	assert.Greater(t, meta.ComplexityScore, 1.0)
}

func TestComplexityScoreComponents(t *testing.T) {
	parser := NewParser()

	flat := parser.Parse(`<p>tiny</p>`)
	nested := parser.Parse(`<table><tr><td><ul><li>deep</li></ul></td></tr></table>`)

	require.Len(t, flat, 1)
	require.Len(t, nested, 1)
	assert.Greater(t, nested[0].Metadata.ComplexityScore, flat[0].Metadata.ComplexityScore,
		"tables and nesting must raise the score")
}

func TestParseImageStandalone(t *testing.T) {
	parser := NewParser()
	sections := parser.Parse(`<p>caption text</p><img src="diagram.png"/>`)

	require.Len(t, sections, 2)
	assert.Equal(t, types.KindImage, sections[1].Kind)
	assert.Contains(t, sections[1].HTMLContent, "diagram.png")
}
