// Package identifiers generates typed identifier classes for records that
// descend from a configured base structure.
package identifiers

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/kishek/ts-model-toolkit/modelgen/ir"
	"github.com/kishek/ts-model-toolkit/modelgen/typescript"
)

// Suffix is appended to a model module path to name its identifier module.
const Suffix = ".identifier"

// ErrNoBase is returned when no module is configured for the base
// identifier class.
var ErrNoBase = errors.New("identifiers: base identifier module not configured")

// Options configures an identifier transform.
type Options struct {
	// MustExtend names the ancestor a record needs to have an identifier.
	MustExtend string

	// Base is the base identifier class. Name defaults to
	// "BaseIdentifier". Path is an absolute file path or a package.
	Base ir.Import

	// Parser is the class exposing a static id(string) method, imported
	// from Base.Path. Defaults to "Parser".
	Parser string

	// ModelPath is the model file. Defaults to the structure's Path.
	ModelPath string

	// OutputPath is the identifier file. Defaults to ModelPath with the
	// .ts extension replaced by ".identifier.ts".
	OutputPath string
}

// Result is the identifier generated for one record. File is empty when
// the record does not descend from MustExtend.
type Result struct {
	File *typescript.File
}

// Text renders the identifier module, or "" when there is none.
func (r *Result) Text() string {
	return r.File.Render()
}

// Transformer generates identifier classes.
type Transformer struct{}

// New returns a Transformer.
func New() *Transformer {
	return &Transformer{}
}

// Transform generates the identifier for s.
func (t *Transformer) Transform(s *ir.Structure, opts Options) (*Result, error) {
	if s.Kind != ir.StructureRecord {
		return nil, ir.Unsupported(s, "identifier")
	}
	r := &Result{File: &typescript.File{}}
	if opts.MustExtend == "" || !ir.Extends(s, opts.MustExtend) {
		return r, nil
	}
	if opts.Base.Path == "" {
		return nil, errors.WithHint(ErrNoBase, "set the base identifier path in the configuration")
	}

	if opts.Base.Name == "" {
		opts.Base.Name = "BaseIdentifier"
	}
	if opts.Parser == "" {
		opts.Parser = "Parser"
	}
	if opts.ModelPath == "" {
		opts.ModelPath = s.Path
	}
	if opts.OutputPath == "" {
		opts.OutputPath = strings.TrimSuffix(opts.ModelPath, ".ts") + Suffix + ".ts"
	}

	spec := typescript.ModuleSpecifier(opts.OutputPath, opts.Base.Path)
	r.File.Import(opts.Base.Name, spec)
	r.File.Import(opts.Parser, spec)

	name := s.Name + "Identifier"
	kind := "'" + typescript.CamelCase(s.Name) + "'"
	construct := func(uuid string) []typescript.Stmt {
		return []typescript.Stmt{
			typescript.Line("const uuid = " + uuid + ";"),
			typescript.Line("return new " + name + "(" + kind + ", uuid);"),
		}
	}
	method := func(method, uuid string) typescript.Method {
		return typescript.Method{
			Name:    method,
			Scope:   "public",
			Static:  true,
			Params:  []typescript.Param{{Name: "id", Type: "string"}},
			Returns: name,
			Body:    construct(uuid),
		}
	}

	r.File.Add(&typescript.Class{
		Name:     name,
		Exported: true,
		Extends:  opts.Base.Name + "<" + kind + ">",
		Methods: []typescript.Method{
			method("create", "id"),
			method("parse", opts.Parser+".id(id)"),
		},
	})
	return r, nil
}

// TransformSafe is like Transform but returns nil on error.
func (t *Transformer) TransformSafe(s *ir.Structure, opts Options) *Result {
	r, err := t.Transform(s, opts)
	if err != nil {
		return nil
	}
	return r
}
