// Package builders generates fluent builder classes for records.
//
// A record X with properties p and q becomes
//
//	export class XBuilder implements Partial<X> {
//	    readonly p?: P;
//	    withP(value: P): this & Pick<X, 'p'> { ... }
//	    build(this: X): X { ... }
//	}
//
// Inherited properties are included, with the type arguments the record
// supplies to its parents substituted.
package builders

import (
	"fmt"
	"strings"

	"github.com/kishek/ts-model-toolkit/modelgen/ir"
	"github.com/kishek/ts-model-toolkit/modelgen/typescript"
)

// Suffix is appended to a model module path to name its builder module.
const Suffix = ".builder"

// Options configures a builder transform.
type Options struct {
	// ModelPath is the model file. Defaults to the structure's Path.
	ModelPath string

	// OutputPath is the builder file. Defaults to ModelPath with the .ts
	// extension replaced by ".builder.ts".
	OutputPath string
}

// Result is the builder generated for one record.
type Result struct {
	File     *typescript.File
	Warnings []ir.Warning
}

// Text renders the builder module.
func (r *Result) Text() string {
	return r.File.Render()
}

// Transformer generates builders.
type Transformer struct{}

// New returns a Transformer.
func New() *Transformer {
	return &Transformer{}
}

// Transform generates the builder for s. Only records have builders.
func (t *Transformer) Transform(s *ir.Structure, opts Options) (*Result, error) {
	if s.Kind != ir.StructureRecord {
		return nil, ir.Unsupported(s, "builder")
	}
	if opts.ModelPath == "" {
		opts.ModelPath = s.Path
	}
	if opts.OutputPath == "" {
		opts.OutputPath = strings.TrimSuffix(opts.ModelPath, ".ts") + Suffix + ".ts"
	}

	b := &builder{
		s: s,
		im: &typescript.Importer{
			File:       &typescript.File{},
			Imports:    ir.AllImports(s),
			ModelPath:  opts.ModelPath,
			OutputPath: opts.OutputPath,
		},
	}
	b.im.File.Add(b.class())
	b.im.Model(s.Name)
	return &Result{File: b.im.File, Warnings: b.warnings}, nil
}

// TransformSafe is like Transform but returns nil on error.
func (t *Transformer) TransformSafe(s *ir.Structure, opts Options) *Result {
	r, err := t.Transform(s, opts)
	if err != nil {
		return nil
	}
	return r
}

type builder struct {
	s        *ir.Structure
	im       *typescript.Importer
	warnings []ir.Warning
}

func (b *builder) class() *typescript.Class {
	s := b.s
	c := &typescript.Class{Name: s.Name + "Builder", Exported: true}

	names := make([]string, 0, len(s.TypeParameters))
	for _, tp := range s.TypeParameters {
		p := typescript.TypeParam{Name: tp.Name}
		if tp.Constraint != nil {
			p.Constraint = tp.Constraint.Raw()
			b.im.Type(p.Constraint)
		}
		if tp.Default != nil {
			p.Default = tp.Default.Raw()
			b.im.Type(p.Default)
		}
		c.TypeParams = append(c.TypeParams, p)
		names = append(names, tp.Name)
	}
	self := s.Name
	if len(names) > 0 {
		self += "<" + strings.Join(names, ", ") + ">"
	}
	c.Implements = []string{"Partial<" + self + ">"}

	var setters []typescript.Method
	var fields []typescript.Stmt
	for _, p := range ir.AllProperties(s) {
		typ := b.propertyType(p.Type)
		key := typescript.PropertyKey(p.Name)

		if member, ok := enumMember(p.Type); ok {
			c.Fields = append(c.Fields, typescript.Field{Name: p.Name, Type: member, Readonly: true, Initializer: member})
			fields = append(fields, typescript.Line(key+": "+member+","))
			continue
		}

		c.Fields = append(c.Fields, typescript.Field{Name: p.Name, Type: typ, Optional: true, Readonly: true})
		setters = append(setters, typescript.Method{
			Name:    "with" + typescript.PascalCase(p.Name),
			Params:  []typescript.Param{{Name: "value", Type: typ}},
			Returns: "this & Pick<" + s.Name + ", '" + p.Name + "'>",
			Body:    []typescript.Stmt{typescript.Line("return Object.assign(this, { " + key + ": value });")},
		})
		fields = append(fields, typescript.Line(key+": "+typescript.Access("this", p.Name)+","))
	}

	c.Methods = append(setters, typescript.Method{
		Name:    "build",
		Params:  []typescript.Param{{Name: "this", Type: self}},
		Returns: self,
		Body:    []typescript.Stmt{typescript.Block{Head: "return", Body: fields, Tail: ";"}},
	})
	return c
}

// enumMember returns "Enum.MEMBER" when t narrows to a single enum member.
// Such properties are fixed by the builder and have no setter.
func enumMember(t ir.Type) (string, bool) {
	ref, ok := ir.Resolve(t).(*ir.Reference)
	if !ok || ref.Member == "" {
		return "", false
	}
	return ref.Name + "." + ref.Member, true
}

// propertyType returns the TypeScript type a builder field is declared
// with, importing what it references.
func (b *builder) declares(name string) bool {
	for _, tp := range b.s.TypeParameters {
		if tp.Name == name {
			return true
		}
	}
	return false
}

func (b *builder) propertyType(t ir.Type) string {
	switch t := ir.Resolve(t).(type) {
	case *ir.Primitive:
		return t.Primitive.String()
	case *ir.Reference:
		if t.Member != "" {
			b.im.Type(t.Name)
			return t.Name + "." + t.Member
		}
		if len(t.Arguments) == 1 {
			arg := b.propertyType(t.Arguments[0])
			b.im.Type(t.Name)
			return t.Name + "<" + arg + ">"
		}
		b.im.Type(t.Name)
		return t.Name
	case *ir.TypeParameter:
		// The builder's own parameter is kept when it is the only one or
		// has nothing to fall back to.
		fb := t.Fallback()
		if b.declares(t.Name) && (len(b.s.TypeParameters) == 1 || fb == nil) {
			return t.Name
		}
		if fb == nil {
			// Not a parameter of the builder class, so the name would be
			// unbound in the generated file.
			return "unknown"
		}
		b.im.Type(fb.Raw())
		return fb.Raw()
	case *ir.Array:
		return b.propertyType(t.Element) + "[]"
	case *ir.Union:
		parts := make([]string, len(t.Members))
		for i, m := range t.Members {
			parts[i] = b.propertyType(m)
		}
		return strings.Join(parts, " | ")
	case *ir.Tuple:
		if required, rest, ok := t.RestElement(); ok {
			return "[" + b.propertyType(required) + ", ..." + b.propertyType(rest.Element) + "]"
		}
	}
	resolved := ir.Resolve(t)
	b.warnings = append(b.warnings, ir.Warning{
		Code:     ir.WarnUnsupportedKind,
		Message:  fmt.Sprintf("%s (%s) unsupported by the builder projection", resolved.Kind(), resolved.Raw()),
		Source:   b.s.Location(),
		TypeName: b.s.Name,
	})
	return "Unknown"
}
