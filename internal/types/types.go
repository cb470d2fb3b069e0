// Package types defines the shared data model for docsmith: the structural
// facts extracted from Python source and the artifacts produced by the
// refinement loop.
package types

import (
	"fmt"
	"strings"
)

// ElementKind categorizes a documentable code element.
type ElementKind string

const (
	KindFunction    ElementKind = "function"
	KindClass       ElementKind = "class"
	KindMethod      ElementKind = "method"
	KindConstructor ElementKind = "constructor"
)

// IsValid checks if the element kind is one of the known values.
func (k ElementKind) IsValid() bool {
	switch k {
	case KindFunction, KindClass, KindMethod, KindConstructor:
		return true
	}
	return false
}

// Style identifies a docstring formatting convention.
type Style string

const (
	StyleGoogle Style = "google"
	StyleNumpy  Style = "numpy"
	StyleRST    Style = "rst"
)

// IsValid checks if the style value is valid.
func (s Style) IsValid() bool {
	switch s {
	case StyleGoogle, StyleNumpy, StyleRST:
		return true
	}
	return false
}

// ParseStyle converts a user-supplied string into a Style.
func ParseStyle(s string) (Style, error) {
	style := Style(strings.ToLower(strings.TrimSpace(s)))
	if !style.IsValid() {
		return "", fmt.Errorf("unknown docstring style %q (want google, numpy, or rst)", s)
	}
	return style, nil
}

// Param describes one parameter of a documentable element.
type Param struct {
	Name        string `json:"name"`
	Annotation  string `json:"annotation,omitempty"`   // declared type, verbatim source
	Default     string `json:"default,omitempty"`      // default value, verbatim source
	Inferred    string `json:"inferred,omitempty"`     // heuristic guess, never authoritative
	Description string `json:"description,omitempty"`  // filled by generation, not extraction
}

// TypeLabel returns the best available type name for display: the inferred
// type when present, the declared annotation otherwise, "Any" as a last resort.
func (p *Param) TypeLabel() string {
	if p.Inferred != "" {
		return p.Inferred
	}
	if p.Annotation != "" {
		return p.Annotation
	}
	return "Any"
}

// ReturnInfo describes the return behavior of an element. The zero value
// means "returns nothing".
type ReturnInfo struct {
	Annotation  string `json:"annotation,omitempty"`
	Inferred    string `json:"inferred,omitempty"` // comma-joined candidate set
	Description string `json:"description,omitempty"`
	IsGenerator bool   `json:"is_generator,omitempty"`
	IsMultiple  bool   `json:"is_multiple,omitempty"`
}

// HasValue reports whether there is a return value worth documenting.
func (r *ReturnInfo) HasValue() bool {
	if r == nil {
		return false
	}
	return r.Inferred != "" && r.Inferred != "None"
}

// RaiseInfo describes one exception kind raised by an element.
type RaiseInfo struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// CodeElement is the structural fact record for one documentable element.
// Instances are produced by the analyzer and treated as read-only by the
// refinement loop; per-iteration feedback travels in PriorAttempt instead.
type CodeElement struct {
	Kind          ElementKind `json:"kind"`
	Name          string      `json:"name"`
	QualifiedName string      `json:"qualified_name"` // dotted path, e.g. "Parser.parse"
	Params        []Param     `json:"params,omitempty"`
	Returns       *ReturnInfo `json:"returns,omitempty"`
	Raises        []RaiseInfo `json:"raises,omitempty"`
	Docstring     string      `json:"docstring,omitempty"` // existing, verbatim incl. quotes
	Source        string      `json:"source"`              // verbatim element source
	Line          int         `json:"line"`
	Complexity    int         `json:"complexity"`
	Decorators    []string    `json:"decorators,omitempty"`
	IsAsync       bool        `json:"is_async,omitempty"`
}

// Validate checks the invariants the analyzer must uphold.
func (e *CodeElement) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("element name is required")
	}
	if e.QualifiedName == "" {
		return fmt.Errorf("qualified name is required for %s", e.Name)
	}
	if !e.Kind.IsValid() {
		return fmt.Errorf("invalid element kind: %s", e.Kind)
	}
	if e.Complexity < 1 {
		return fmt.Errorf("complexity must be at least 1 (got %d)", e.Complexity)
	}
	for i := range e.Params {
		if e.Params[i].Name == "" {
			return fmt.Errorf("parameter %d of %s has no name", i, e.QualifiedName)
		}
	}
	for i := range e.Raises {
		if e.Raises[i].Type == "" {
			return fmt.Errorf("raise %d of %s has no exception type", i, e.QualifiedName)
		}
	}
	return nil
}

// HasDocstring reports whether the element already carries a docstring.
func (e *CodeElement) HasDocstring() bool {
	return e.Docstring != ""
}
