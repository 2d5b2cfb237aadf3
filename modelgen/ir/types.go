// Package ir defines the Intermediate Representation for TypeScript model
// declarations. Structures are produced by the parser from exported enums,
// interfaces and union type aliases, and consumed read-only by the
// projections (GraphQL, guards, builders, identifiers).
package ir

import (
	"fmt"
	"sync"
)

// Source represents source code location information.
type Source struct {
	File   string
	Line   int
	Column int
}

// IsZero returns true if the source location is empty.
func (s Source) IsZero() bool {
	return s.File == "" && s.Line == 0 && s.Column == 0
}

// String formats the location as file:line:column.
func (s Source) String() string {
	if s.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// Import is a named import declared by the file a structure lives in.
// Path is the module specifier as written; it is not resolved.
type Import struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// IsExternal reports whether the import refers to another package
// (a scoped module such as "@acme/billing") rather than a relative file.
func (i Import) IsExternal() bool {
	return len(i.Path) > 0 && i.Path[0] == '@'
}

// FindImport returns the import with the given name.
func FindImport(imports []Import, name string) (Import, bool) {
	for _, imp := range imports {
		if imp.Name == name {
			return imp, true
		}
	}
	return Import{}, false
}

// Warning represents a non-fatal issue encountered during parsing or projection.
type Warning struct {
	// Code is a machine-readable warning identifier.
	Code string `json:"code"`

	// Message is a human-readable description.
	Message string `json:"message"`

	// Source is the location that triggered the warning, if applicable.
	Source *Source `json:"source,omitempty"`

	// TypeName is the structure that triggered the warning, if applicable.
	TypeName string `json:"typeName,omitempty"`
}

func (w Warning) String() string {
	prefix := w.Code
	if w.TypeName != "" {
		prefix += " (" + w.TypeName + ")"
	}
	if w.Source != nil && !w.Source.IsZero() {
		prefix = w.Source.String() + ": " + prefix
	}
	return prefix + ": " + w.Message
}

// Warning codes.
const (
	WarnUnsupportedKind        = "unsupported_kind"
	WarnUnresolvedIndexed      = "unresolved_indexed_access"
	WarnUnresolvedParent       = "unresolved_parent"
	WarnParseFailed            = "parse_failed"
	WarnMultipleTypeParameters = "multiple_type_parameters"
	WarnGenerateFailed         = "generate_failed"
)

// Diagnostics collects warnings. The zero value is ready to use and it is
// safe for concurrent use.
type Diagnostics struct {
	mu       sync.Mutex
	warnings []Warning
}

// Add appends a warning.
func (d *Diagnostics) Add(w Warning) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.warnings = append(d.warnings, w)
}

// Warnf appends a warning with a formatted message.
func (d *Diagnostics) Warnf(code, typeName, format string, args ...any) {
	d.Add(Warning{Code: code, TypeName: typeName, Message: fmt.Sprintf(format, args...)})
}

// Warnings returns a copy of the collected warnings.
func (d *Diagnostics) Warnings() []Warning {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.warnings) == 0 {
		return nil
	}
	out := make([]Warning, len(d.warnings))
	copy(out, d.warnings)
	return out
}

// Len returns the number of collected warnings.
func (d *Diagnostics) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.warnings)
}
