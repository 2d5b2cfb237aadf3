// Package guards generates runtime type guards for parsed structures.
//
// Each structure X becomes a predicate
//
//	export function isX(entity: any): entity is X
//
// composed from typeof checks, the guards of referenced structures and
// the guards of X's parents. Guards of related structures are imported
// from the ".guard" module mirroring the model file that declares them.
package guards

import (
	"fmt"
	"strings"

	"github.com/kishek/ts-model-toolkit/modelgen/ir"
	"github.com/kishek/ts-model-toolkit/modelgen/typescript"
)

// Suffix is appended to a model module path to name its guard module.
const Suffix = ".guard"

// constructorChecks are references checked by constructor name instead of
// by a generated guard.
var constructorChecks = map[string]bool{
	"Date": true,
	"URL":  true,
}

// Options configures a guard transform.
type Options struct {
	// ModelPath is the model file. Defaults to the structure's Path.
	ModelPath string

	// OutputPath is the guard file. Defaults to ModelPath with the .ts
	// extension replaced by ".guard.ts".
	OutputPath string
}

func (o Options) withDefaults(s *ir.Structure) Options {
	if o.ModelPath == "" {
		o.ModelPath = s.Path
	}
	if o.OutputPath == "" {
		o.OutputPath = strings.TrimSuffix(o.ModelPath, ".ts") + Suffix + ".ts"
	}
	return o
}

// Result is the guard generated for one structure.
type Result struct {
	File     *typescript.File
	Warnings []ir.Warning
}

// Text renders the guard module.
func (r *Result) Text() string {
	return r.File.Render()
}

// Transformer generates type guards.
type Transformer struct{}

// New returns a Transformer.
func New() *Transformer {
	return &Transformer{}
}

// Transform generates the guard for s. It fails only for a union alias
// without members; unsupported property types degrade to `false` with a
// warning.
func (t *Transformer) Transform(s *ir.Structure, opts Options) (*Result, error) {
	opts = opts.withDefaults(s)
	e := &emitter{
		s: s,
		im: &typescript.Importer{
			File:       &typescript.File{},
			Imports:    ir.AllImports(s),
			ModelPath:  opts.ModelPath,
			OutputPath: opts.OutputPath,
		},
	}

	var guard string
	switch s.Kind {
	case ir.StructureEnum:
		guard = e.enum()
	case ir.StructureUnionAlias:
		if len(s.Aliases) == 0 {
			return nil, ir.ErrEmptyUnion
		}
		e.im.Imports = s.Imports
		guard = e.alias()
	case ir.StructureRecord:
		guard = e.record()
	default:
		return nil, ir.Unsupported(s, "guard")
	}

	e.im.File.Add(e.function(guard))
	e.im.Model(s.Name)
	return &Result{File: e.im.File, Warnings: e.warnings}, nil
}

// TransformSafe is like Transform but returns nil on error.
func (t *Transformer) TransformSafe(s *ir.Structure, opts Options) *Result {
	r, err := t.Transform(s, opts)
	if err != nil {
		return nil
	}
	return r
}

type emitter struct {
	s        *ir.Structure
	im       *typescript.Importer
	warnings []ir.Warning
}

func (e *emitter) warn(code, format string, args ...any) {
	e.warnings = append(e.warnings, ir.Warning{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Source:   e.s.Location(),
		TypeName: e.s.Name,
	})
}

func (e *emitter) enum() string {
	checks := make([]string, len(e.s.Properties))
	for i, p := range e.s.Properties {
		checks[i] = "entity === " + e.s.Name + "." + p.Name
	}
	return strings.Join(checks, " || ")
}

func (e *emitter) alias() string {
	checks := make([]string, len(e.s.Aliases))
	for i, a := range e.s.Aliases {
		checks[i] = e.guard(a, "entity")
	}
	return strings.Join(checks, " || ")
}

func (e *emitter) record() string {
	var checks []string
	for _, p := range e.s.Properties {
		v := typescript.Access("entity", p.Name)
		g := e.guard(p.Type, v)
		if !p.Required {
			g = "(!" + v + " || (" + g + "))"
		}
		checks = append(checks, g)
	}

	ownParam := ""
	if len(e.s.TypeParameters) == 1 {
		ownParam = e.s.TypeParameters[0].Name
	}
	for _, parent := range e.s.Parents() {
		fn := "is" + parent.Name
		e.importGuard(parent.Name)
		if ownParam != "" && len(parent.TypeParameters) == 1 {
			checks = append(checks, fn+"(entity, is"+ownParam+")")
			continue
		}
		checks = append(checks, fn+"(entity)")
	}
	return strings.Join(checks, " && ")
}

// function wraps the guard expression in the exported predicate.
func (e *emitter) function(guard string) *typescript.Function {
	fn := &typescript.Function{
		Name:     "is" + e.s.Name,
		Exported: true,
		Params:   []typescript.Param{{Name: "entity", Type: "any"}},
	}

	names := make([]string, 0, len(e.s.TypeParameters))
	for _, tp := range e.s.TypeParameters {
		p := typescript.TypeParam{Name: tp.Name}
		if tp.Constraint != nil {
			p.Constraint = tp.Constraint.Raw()
			e.im.Type(p.Constraint)
		}
		if tp.Default != nil {
			p.Default = tp.Default.Raw()
			e.im.Type(p.Default)
		}
		fn.TypeParams = append(fn.TypeParams, p)
		names = append(names, tp.Name)
	}
	switch {
	case len(names) == 1:
		fn.Params = append(fn.Params, typescript.Param{
			Name:     "is" + names[0],
			Type:     "(entity: any) => entity is " + names[0],
			Optional: true,
			Comment:  "eslint-disable-next-line @typescript-eslint/no-unused-vars",
		})
	case len(names) > 1:
		e.warn(ir.WarnMultipleTypeParameters,
			"%d type parameters; guards thread a predicate for a single type parameter only", len(names))
	}

	fn.Returns = "entity is " + e.s.Name
	if len(names) > 0 {
		fn.Returns += "<" + strings.Join(names, ", ") + ">"
	}

	cond := "entity"
	if guard != "" {
		cond += " && (" + guard + ")"
	}
	fn.Body = []typescript.Stmt{
		typescript.Block{Head: "if (" + cond + ")", Body: []typescript.Stmt{typescript.Line("return true;")}},
		typescript.Line("return false;"),
	}
	return fn
}

func (e *emitter) importGuard(name string) {
	e.im.Companion(name, "is"+name, Suffix, func(pkg string) string { return pkg + "/guards" })
}

// guard returns the predicate expression checking v against t.
func (e *emitter) guard(t ir.Type, v string) string {
	switch t := ir.Resolve(t).(type) {
	case *ir.Primitive:
		return `typeof ` + v + ` === "` + t.Primitive.String() + `"`
	case *ir.Reference:
		return e.reference(t, v)
	case *ir.TypeParameter:
		fn := "is" + t.Name
		if fb := t.Fallback(); fb != nil {
			e.importGuard(fb.Raw())
			return "(" + fn + " || is" + fb.Raw() + ")(" + v + ")"
		}
		return fn + "(" + v + ")"
	case *ir.Array:
		return "Array.isArray(" + v + ") && " + v + ".every((item: any) => " + e.guard(t.Element, "item") + ")"
	case *ir.Union:
		parts := make([]string, len(t.Members))
		for i, m := range t.Members {
			parts[i] = e.guard(m, v)
		}
		return "(" + strings.Join(parts, " || ") + ")"
	case *ir.Tuple:
		// The required element is checked existentially, not by position.
		if required, rest, ok := t.RestElement(); ok {
			return "Array.isArray(" + v + ") && " + e.guard(rest.Element, v) +
				" && " + v + ".some(item => " + e.guard(required, "item") + ")"
		}
	}
	e.warn(ir.WarnUnsupportedKind, "%s (%s) unsupported by the guard projection", ir.Resolve(t).Kind(), ir.Resolve(t).Raw())
	return "false"
}

func (e *emitter) reference(t *ir.Reference, v string) string {
	if t.Member != "" {
		e.im.Type(t.Name)
		return v + " === " + t.Name + "." + t.Member
	}
	if constructorChecks[t.Name] {
		return v + `.constructor.name === "` + t.Name + `"`
	}
	if len(t.Arguments) == 1 {
		arg := t.Arguments[0].Raw()
		e.im.Type(arg)
		e.importGuard(arg)
		e.importGuard(t.Name)
		return "is" + t.Name + "<" + arg + ">(" + v + ", is" + arg + ")"
	}
	e.importGuard(t.Name)
	return "is" + t.Name + "(" + v + ")"
}
