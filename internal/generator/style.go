package generator

import (
	"fmt"
	"strings"

	"github.com/docsmith/docsmith/internal/types"
)

// formatDocstring renders a parsed suggestion in the requested style. The
// argument and exception description lists pair with the extracted facts
// positionally; extra descriptions are dropped, missing ones leave shorter
// sections.
func formatDocstring(s Suggestion, elem *types.CodeElement, style types.Style) string {
	switch style {
	case types.StyleNumpy:
		return formatNumpy(s, elem)
	case types.StyleRST:
		return formatRST(s, elem)
	default:
		return formatGoogle(s, elem)
	}
}

func formatGoogle(s Suggestion, elem *types.CodeElement) string {
	lines := []string{`"""` + s.Summary}

	if s.Description != "" {
		lines = append(lines, "", s.Description)
	}

	if len(elem.Params) > 0 {
		lines = append(lines, "", "Args:")
		for i, p := range elem.Params {
			if i >= len(s.ArgsDescription) {
				break
			}
			lines = append(lines, fmt.Sprintf("    %s (%s): %s", p.Name, p.TypeLabel(), s.ArgsDescription[i]))
		}
	}

	if elem.Returns.HasValue() {
		lines = append(lines, "", "Returns:")
		lines = append(lines, fmt.Sprintf("    %s: %s", returnLabel(elem.Returns), s.ReturnsDescription))
	}

	if len(elem.Raises) > 0 {
		lines = append(lines, "", "Raises:")
		for i, r := range elem.Raises {
			if i >= len(s.RaisesDescription) {
				break
			}
			lines = append(lines, fmt.Sprintf("    %s: %s", r.Type, s.RaisesDescription[i]))
		}
	}

	if len(s.SideEffects) > 0 {
		lines = append(lines, "", "Note:")
		for _, effect := range s.SideEffects {
			lines = append(lines, "    "+effect)
		}
	}

	lines = append(lines, `"""`)
	return strings.Join(lines, "\n")
}

func formatNumpy(s Suggestion, elem *types.CodeElement) string {
	lines := []string{`"""` + s.Summary}

	if s.Description != "" {
		lines = append(lines, "", s.Description)
	}

	if len(elem.Params) > 0 {
		lines = append(lines, "", "Parameters", "----------")
		for i, p := range elem.Params {
			if i >= len(s.ArgsDescription) {
				break
			}
			lines = append(lines, fmt.Sprintf("%s : %s", p.Name, p.TypeLabel()))
			lines = append(lines, "    "+s.ArgsDescription[i])
		}
	}

	if elem.Returns.HasValue() {
		lines = append(lines, "", "Returns", "-------")
		lines = append(lines, returnLabel(elem.Returns))
		lines = append(lines, "    "+s.ReturnsDescription)
	}

	lines = append(lines, `"""`)
	return strings.Join(lines, "\n")
}

func formatRST(s Suggestion, elem *types.CodeElement) string {
	lines := []string{`"""` + s.Summary}

	if s.Description != "" {
		lines = append(lines, "", s.Description)
	}

	if len(elem.Params) > 0 {
		lines = append(lines, "")
		for i, p := range elem.Params {
			if i >= len(s.ArgsDescription) {
				break
			}
			lines = append(lines, fmt.Sprintf(":param %s: %s", p.Name, s.ArgsDescription[i]))
			lines = append(lines, fmt.Sprintf(":type %s: %s", p.Name, p.TypeLabel()))
		}
	}

	if elem.Returns.HasValue() {
		lines = append(lines, "")
		lines = append(lines, ":returns: "+s.ReturnsDescription)
		lines = append(lines, ":rtype: "+returnLabel(elem.Returns))
	}

	lines = append(lines, `"""`)
	return strings.Join(lines, "\n")
}
