// Package graphql projects parsed structures onto GraphQL SDL.
//
// Transform builds a gqlparser schema document for one structure: enums
// become enums, union aliases become unions and records become object or
// interface types, or input types with an optional Query or Mutation
// resolver field. Documents of several structures are combined with Merge
// and rendered with Format.
//
// Federation directives (@key, @shareable) and Relay connections are
// opt-in through Options.
package graphql

import (
	"fmt"
	"slices"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/kishek/ts-model-toolkit/modelgen/ir"
)

// Operation is the root type an input's resolver is attached to.
type Operation string

const (
	OperationQuery    Operation = "query"
	OperationMutation Operation = "mutation"
)

// TypeName returns the root type name, "Query" or "Mutation".
func (o Operation) TypeName() string {
	if o == OperationMutation {
		return "Mutation"
	}
	return "Query"
}

// Dir returns the directory resolver modules of the operation are
// grouped in, "queries" or "mutations".
func (o Operation) Dir() string {
	if o == OperationMutation {
		return "mutations"
	}
	return "queries"
}

// Options configures a schema transform.
type Options struct {
	// InheritNullability marks required properties non-null. Without it
	// every field is nullable.
	InheritNullability bool

	// FederationKey adds @key(fields: "id") to leaf types with an id.
	FederationKey bool

	// FederationShareable adds @shareable to leaf types.
	FederationShareable bool

	// RelayQualifiers are the property type names exposed as Relay
	// connections.
	RelayQualifiers []string

	// Input configures input projection. It applies to records tagged
	// @input and to TransformInput.
	Input *InputOptions
}

// InputOptions configures input projection.
type InputOptions struct {
	Operation Operation

	// InputName names the input type. Defaults to the structure name.
	InputName func(string) string

	// ResolverName names the resolver field. Without it no resolver is
	// declared.
	ResolverName func(string) string

	// Stub, when set, renders a resolver module for the input.
	Stub *StubOptions
}

func (o *InputOptions) inputName(name string) string {
	if o.InputName == nil {
		return name
	}
	return o.InputName(name)
}

// Result is the schema generated for one structure.
type Result struct {
	Document *ast.SchemaDocument

	// Resolver is set for inputs with a resolver and stub options.
	Resolver *Resolver

	Warnings []ir.Warning
}

// SDL renders the document.
func (r *Result) SDL() string {
	return Format(r.Document)
}

// Transformer generates GraphQL schema documents.
type Transformer struct{}

// New returns a Transformer.
func New() *Transformer {
	return &Transformer{}
}

// Transform generates the schema for s.
func (t *Transformer) Transform(s *ir.Structure, opts Options) (*Result, error) {
	e := newEmitter(s, opts)
	var err error
	switch s.Kind {
	case ir.StructureEnum:
		e.enum()
	case ir.StructureUnionAlias:
		err = e.union()
	case ir.StructureRecord:
		if s.Tags.Annotations().Input {
			err = e.input()
		} else {
			err = e.record()
		}
	default:
		err = ir.Unsupported(s, "graphql")
	}
	if err != nil {
		return nil, err
	}
	return e.result(), nil
}

// TransformInput generates the input type (and resolver) for the record
// s regardless of its tags.
func (t *Transformer) TransformInput(s *ir.Structure, opts Options) (*Result, error) {
	if s.Kind != ir.StructureRecord {
		return nil, ir.Unsupported(s, "graphql input")
	}
	e := newEmitter(s, opts)
	if err := e.input(); err != nil {
		return nil, err
	}
	return e.result(), nil
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
	opts     Options
	doc      *ast.SchemaDocument
	resolver *Resolver
	warnings []ir.Warning

	// inputMode is set while emitting an input type.
	inputMode bool
}

func newEmitter(s *ir.Structure, opts Options) *emitter {
	return &emitter{s: s, opts: opts, doc: &ast.SchemaDocument{}}
}

func (e *emitter) result() *Result {
	return &Result{Document: e.doc, Resolver: e.resolver, Warnings: e.warnings}
}

func (e *emitter) warn(code, format string, args ...any) {
	e.warnings = append(e.warnings, ir.Warning{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Source:   e.s.Location(),
		TypeName: e.s.Name,
	})
}

// define adds def to the document, merging it into an existing
// definition of the same name.
func (e *emitter) define(def *ast.Definition) error {
	if existing := e.doc.Definitions.ForName(def.Name); existing != nil {
		return mergeDefinition(existing, def)
	}
	e.doc.Definitions = append(e.doc.Definitions, def)
	return nil
}

func (e *emitter) enum() {
	def := &ast.Definition{
		Kind:        ast.Enum,
		Name:        e.s.Name,
		Description: e.s.Comment,
	}
	for _, p := range e.s.Properties {
		def.EnumValues = append(def.EnumValues, &ast.EnumValueDefinition{
			Name:        p.Name,
			Description: p.Comment,
		})
	}
	e.doc.Definitions = append(e.doc.Definitions, def)
}

func (e *emitter) union() error {
	if len(e.s.Aliases) == 0 {
		return ir.ErrEmptyUnion
	}
	def := &ast.Definition{
		Kind:        ast.Union,
		Name:        e.s.Name,
		Description: e.s.Comment,
	}
	for _, a := range e.s.Aliases {
		name := e.typeOf(a, false).String()
		if !slices.Contains(def.Types, name) {
			def.Types = append(def.Types, name)
		}
	}
	e.doc.Definitions = append(e.doc.Definitions, def)
	return nil
}
