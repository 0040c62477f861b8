package parsing

import "github.com/jonathan/document-generator/internal/types"

// linkHierarchy threads parent/child id references through sections in
// order-index order. Headings nest by level using a stack; every other
// section attaches to the nearest preceding heading. Parents always have a
// smaller order index than their children, so the forest is acyclic by
// construction.
func linkHierarchy(sections []types.Section) {
	index := types.BuildSectionIndex(sections)

	type stackEntry struct {
		id    string
		level int
	}
	var stack []stackEntry

	for i := range sections {
		sec := &sections[i]
		if sec.IsHeading() {
			level := sec.Metadata.Level
			for len(stack) > 0 && stack[len(stack)-1].level >= level {
				stack = stack[:len(stack)-1]
			}
			if len(stack) > 0 {
				parent := &sections[index[stack[len(stack)-1].id]]
				sec.ParentID = parent.ID
				parent.Children = append(parent.Children, sec.ID)
			}
			stack = append(stack, stackEntry{id: sec.ID, level: level})
			continue
		}

		// Nearest preceding heading in reading order.
		for j := i - 1; j >= 0; j-- {
			if sections[j].IsHeading() {
				sec.ParentID = sections[j].ID
				sections[j].Children = append(sections[j].Children, sec.ID)
				break
			}
		}
	}
}
