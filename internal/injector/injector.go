// Package injector splices accepted docstrings back into source text with
// span edits, leaving every byte outside the touched spans untouched.
package injector

import (
	"fmt"
	"sort"
	"strings"

	"github.com/docsmith/docsmith/internal/analyzer"
)

type edit struct {
	start, end int
	text       string
}

// Inject applies docs (keyed by qualified element name) to source at the
// recorded insertion points. Every line of the draft is placed at the
// element's body indentation (blank lines stay blank), so injecting the
// same draft into the result again is a no-op. An element with an existing
// docstring has exactly its literal's span replaced; an element without one
// gets the draft inserted above its first body statement. Docs naming an
// element with no recorded point fail the whole call; no partial rewrite is
// produced.
func Inject(source string, points map[string]analyzer.InsertionPoint, docs map[string]string) (string, error) {
	edits := make([]edit, 0, len(docs))
	for name, doc := range docs {
		pt, ok := points[name]
		if !ok {
			return "", fmt.Errorf("no insertion point for element %q", name)
		}
		e, err := editFor(pt, doc, len(source))
		if err != nil {
			return "", fmt.Errorf("element %q: %w", name, err)
		}
		edits = append(edits, e)
	}

	// Apply back to front so earlier offsets stay valid.
	sort.Slice(edits, func(i, j int) bool { return edits[i].start > edits[j].start })
	for i := 1; i < len(edits); i++ {
		if edits[i].end > edits[i-1].start {
			return "", fmt.Errorf("overlapping edits at offsets %d and %d", edits[i].start, edits[i-1].start)
		}
	}

	out := source
	for _, e := range edits {
		out = out[:e.start] + e.text + out[e.end:]
	}
	return out, nil
}

func editFor(pt analyzer.InsertionPoint, doc string, sourceLen int) (edit, error) {
	if pt.HasDocstring {
		if pt.ReplaceStart < 0 || pt.ReplaceEnd > sourceLen || pt.ReplaceStart > pt.ReplaceEnd {
			return edit{}, fmt.Errorf("replace span [%d,%d) out of bounds", pt.ReplaceStart, pt.ReplaceEnd)
		}
		return edit{start: pt.ReplaceStart, end: pt.ReplaceEnd, text: indentBlock(doc, pt.Indent)}, nil
	}

	if pt.InsertOffset < 0 || pt.InsertOffset > sourceLen {
		return edit{}, fmt.Errorf("insert offset %d out of bounds", pt.InsertOffset)
	}
	if pt.SameLine {
		// The first body statement shares the header line; break the line,
		// put the docstring on its own, and re-indent the statement.
		text := "\n" + pt.Indent + indentBlock(doc, pt.Indent) + "\n" + pt.Indent
		return edit{start: pt.InsertOffset, end: pt.InsertOffset, text: text}, nil
	}
	return edit{start: pt.InsertOffset, end: pt.InsertOffset, text: pt.Indent + indentBlock(doc, pt.Indent) + "\n"}, nil
}

// indentBlock prefixes the continuation lines of doc with indent, keeping a
// multi-line docstring at the level of its opening quotes. Blank lines are
// left without trailing whitespace.
func indentBlock(doc, indent string) string {
	if indent == "" || !strings.Contains(doc, "\n") {
		return doc
	}
	lines := strings.Split(doc, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = indent + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

// Diff renders a minimal line diff between old and new source, for preview
// output. Unchanged leading and trailing lines are elided.
func Diff(oldSrc, newSrc string) string {
	if oldSrc == newSrc {
		return ""
	}
	oldLines := strings.Split(oldSrc, "\n")
	newLines := strings.Split(newSrc, "\n")

	start := 0
	for start < len(oldLines) && start < len(newLines) && oldLines[start] == newLines[start] {
		start++
	}
	oldEnd, newEnd := len(oldLines), len(newLines)
	for oldEnd > start && newEnd > start && oldLines[oldEnd-1] == newLines[newEnd-1] {
		oldEnd--
		newEnd--
	}

	var b strings.Builder
	fmt.Fprintf(&b, "@@ line %d @@\n", start+1)
	for _, line := range oldLines[start:oldEnd] {
		b.WriteString("- " + line + "\n")
	}
	for _, line := range newLines[start:newEnd] {
		b.WriteString("+ " + line + "\n")
	}
	return b.String()
}
