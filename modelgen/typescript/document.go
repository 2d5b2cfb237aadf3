// Package typescript is a small document model for generated TypeScript:
// imports, functions and classes built as values and rendered in one step.
// It also holds the identifier, casing and module-path helpers shared by
// the TypeScript projections.
package typescript

import (
	"slices"
	"strings"
)

// indent is one nesting level in rendered output.
const indent = "    "

// File is a generated TypeScript module.
type File struct {
	imports []importDecl
	decls   []Decl
}

type importDecl struct {
	specifier string
	names     []string
}

// Decl is a top-level declaration.
type Decl interface {
	render(w *writer)
}

// Import adds a named import. A name is imported at most once per file;
// later imports of the same name are ignored.
func (f *File) Import(name, specifier string) {
	if name == "" || specifier == "" || f.HasImport(name) {
		return
	}
	for i := range f.imports {
		if f.imports[i].specifier == specifier {
			f.imports[i].names = append(f.imports[i].names, name)
			return
		}
	}
	f.imports = append(f.imports, importDecl{specifier: specifier, names: []string{name}})
}

// HasImport reports whether name is imported.
func (f *File) HasImport(name string) bool {
	for _, imp := range f.imports {
		for _, n := range imp.names {
			if n == name {
				return true
			}
		}
	}
	return false
}

// DropImport removes every import from specifier.
func (f *File) DropImport(specifier string) {
	f.imports = slices.DeleteFunc(f.imports, func(imp importDecl) bool {
		return imp.specifier == specifier
	})
}

// Imports returns the imported names keyed by specifier, in order.
func (f *File) Imports() map[string][]string {
	out := make(map[string][]string, len(f.imports))
	for _, imp := range f.imports {
		out[imp.specifier] = append([]string(nil), imp.names...)
	}
	return out
}

// Add appends declarations.
func (f *File) Add(decls ...Decl) {
	f.decls = append(f.decls, decls...)
}

// Empty reports whether the file declares nothing.
func (f *File) Empty() bool {
	return len(f.decls) == 0
}

// Merge appends other's imports and declarations to f.
func (f *File) Merge(other *File) {
	if other == nil {
		return
	}
	for _, imp := range other.imports {
		for _, n := range imp.names {
			f.Import(n, imp.specifier)
		}
	}
	f.decls = append(f.decls, other.decls...)
}

// Render returns the module source. An empty file renders as "".
func (f *File) Render() string {
	if f.Empty() {
		return ""
	}
	w := &writer{}
	for _, imp := range f.imports {
		w.line(`import { ` + strings.Join(imp.names, ", ") + ` } from "` + imp.specifier + `";`)
	}
	for i, d := range f.decls {
		if i > 0 || len(f.imports) > 0 {
			w.blank()
		}
		d.render(w)
	}
	return w.String()
}

// TypeParam is a generic parameter declaration.
type TypeParam struct {
	Name       string
	Constraint string
	Default    string
}

func (p TypeParam) String() string {
	s := p.Name
	if p.Constraint != "" {
		s += " extends " + p.Constraint
	}
	if p.Default != "" {
		s += " = " + p.Default
	}
	return s
}

func typeParams(params []TypeParam) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

// Param is a function or method parameter. Comment, when set, is written
// as a line comment above the parameter and forces one parameter per line.
type Param struct {
	Name     string
	Type     string
	Optional bool
	Comment  string
}

func (p Param) String() string {
	s := p.Name
	if p.Optional {
		s += "?"
	}
	if p.Type != "" {
		s += ": " + p.Type
	}
	return s
}

// Stmt is a statement inside a function or method body.
type Stmt interface {
	render(w *writer)
}

// Line is a single-line statement, written as is.
type Line string

func (l Line) render(w *writer) { w.line(string(l)) }

// Block is a braced statement: Head { Body }Tail. Head may be empty for
// a bare object literal, and Tail is typically ";" or "".
type Block struct {
	Head string
	Body []Stmt
	Tail string
}

func (b Block) render(w *writer) {
	if b.Head == "" {
		w.line("{")
	} else {
		w.line(b.Head + " {")
	}
	w.depth++
	for _, s := range b.Body {
		s.render(w)
	}
	w.depth--
	w.line("}" + b.Tail)
}

// Verbatim is source text emitted as is, such as a user-supplied template.
type Verbatim string

func (v Verbatim) render(w *writer) {
	text := strings.TrimRight(string(v), "\n")
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			w.newline()
			continue
		}
		w.line(line)
	}
}

// Function is a function declaration.
type Function struct {
	Name       string
	Exported   bool
	TypeParams []TypeParam
	Params     []Param
	Returns    string
	Body       []Stmt
}

func (f *Function) render(w *writer) {
	var head strings.Builder
	if f.Exported {
		head.WriteString("export ")
	}
	head.WriteString("function ")
	head.WriteString(bindingName(f.Name))
	head.WriteString(typeParams(f.TypeParams))
	writeSignature(w, head.String(), f.Params, f.Returns)
	writeBody(w, f.Body)
}

// writeSignature writes head(params): returns, leaving the line open for
// the body's opening brace.
func writeSignature(w *writer, head string, params []Param, returns string) {
	ret := ""
	if returns != "" {
		ret = ": " + returns
	}
	multiline := false
	for _, p := range params {
		if p.Comment != "" {
			multiline = true
		}
	}
	if !multiline {
		parts := make([]string, len(params))
		for i, p := range params {
			parts[i] = p.String()
		}
		w.open(head + "(" + strings.Join(parts, ", ") + ")" + ret)
		return
	}
	w.line(head + "(")
	w.depth++
	for _, p := range params {
		if p.Comment != "" {
			w.line("// " + p.Comment)
		}
		w.line(p.String() + ",")
	}
	w.depth--
	w.open(")" + ret)
}

func writeBody(w *writer, body []Stmt) {
	w.write(" {")
	w.newline()
	w.depth++
	for _, s := range body {
		s.render(w)
	}
	w.depth--
	w.line("}")
}

// Class is a class declaration.
type Class struct {
	Name       string
	Exported   bool
	TypeParams []TypeParam
	Extends    string
	Implements []string
	Fields     []Field
	Methods    []Method
}

// Field is a class property.
type Field struct {
	Name        string
	Type        string
	Optional    bool
	Readonly    bool
	Initializer string
}

func (f Field) String() string {
	var b strings.Builder
	if f.Readonly {
		b.WriteString("readonly ")
	}
	b.WriteString(PropertyKey(f.Name))
	if f.Optional {
		b.WriteString("?")
	}
	if f.Type != "" {
		b.WriteString(": ")
		b.WriteString(f.Type)
	}
	if f.Initializer != "" {
		b.WriteString(" = ")
		b.WriteString(f.Initializer)
	}
	b.WriteString(";")
	return b.String()
}

// Method is a class method.
type Method struct {
	Name    string
	Scope   string // "public", "protected", "private" or empty
	Static  bool
	Params  []Param
	Returns string
	Body    []Stmt
}

func (c *Class) render(w *writer) {
	var head strings.Builder
	if c.Exported {
		head.WriteString("export ")
	}
	head.WriteString("class ")
	head.WriteString(bindingName(c.Name))
	head.WriteString(typeParams(c.TypeParams))
	if c.Extends != "" {
		head.WriteString(" extends ")
		head.WriteString(c.Extends)
	}
	if len(c.Implements) > 0 {
		head.WriteString(" implements ")
		head.WriteString(strings.Join(c.Implements, ", "))
	}
	w.line(head.String() + " {")
	w.depth++
	for _, f := range c.Fields {
		w.line(f.String())
	}
	for i, m := range c.Methods {
		if i > 0 || len(c.Fields) > 0 {
			w.blank()
		}
		m.render(w)
	}
	w.depth--
	w.line("}")
}

func (m Method) render(w *writer) {
	var head strings.Builder
	if m.Scope != "" {
		head.WriteString(m.Scope)
		head.WriteString(" ")
	}
	if m.Static {
		head.WriteString("static ")
	}
	if isIdentifierName(m.Name) {
		head.WriteString(m.Name)
	} else {
		head.WriteString(bindingName(m.Name))
	}
	writeSignature(w, head.String(), m.Params, m.Returns)
	writeBody(w, m.Body)
}

// writer accumulates indented lines.
type writer struct {
	b     strings.Builder
	depth int
}

func (w *writer) line(s string) {
	w.open(s)
	w.newline()
}

// open writes an indented line without terminating it.
func (w *writer) open(s string) {
	for i := 0; i < w.depth; i++ {
		w.b.WriteString(indent)
	}
	w.b.WriteString(s)
}

func (w *writer) write(s string) { w.b.WriteString(s) }

func (w *writer) newline() { w.b.WriteByte('\n') }

func (w *writer) blank() { w.b.WriteByte('\n') }

func (w *writer) String() string { return w.b.String() }
