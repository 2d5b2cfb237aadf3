// Package flavor provides a common interface over the TypeScript outputs
// generated alongside a model: guards, builders and identifiers.
package flavor

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/kishek/ts-model-toolkit/modelgen/builders"
	"github.com/kishek/ts-model-toolkit/modelgen/guards"
	"github.com/kishek/ts-model-toolkit/modelgen/identifiers"
	"github.com/kishek/ts-model-toolkit/modelgen/ir"
	"github.com/kishek/ts-model-toolkit/modelgen/typescript"
)

// Flavor represents a TypeScript output generated per model file.
type Flavor interface {
	// Name returns the flavor identifier (e.g., "guards").
	Name() string

	// FileExtension returns the output file suffix (e.g., ".guard.ts").
	FileExtension() string

	// EmitStructure generates the module contents for one structure.
	// Structures the flavor does not apply to return an error matching
	// ir.ErrUnsupportedStructure.
	EmitStructure(ctx *EmitContext, s *ir.Structure) (*typescript.File, error)
}

// EmitContext provides shared context for flavor emission.
type EmitContext struct {
	// OutputPath is the file being generated. Imports are made relative
	// to it.
	OutputPath string

	// Identifier configuration, used by the identifiers flavor.
	MustExtend string
	Base       ir.Import
	Parser     string

	// Warnings collects non-fatal issues during generation.
	Warnings []ir.Warning
}

// AddWarning adds a warning to the context.
func (ctx *EmitContext) AddWarning(w ...ir.Warning) {
	ctx.Warnings = append(ctx.Warnings, w...)
}

// Names lists the known flavors.
func Names() []string {
	return []string{"guards", "builders", "identifiers"}
}

// Get returns a flavor by name, or an error if unknown.
func Get(name string) (Flavor, error) {
	switch name {
	case "guards":
		return guardFlavor{t: guards.New()}, nil
	case "builders":
		return builderFlavor{t: builders.New()}, nil
	case "identifiers":
		return identifierFlavor{t: identifiers.New()}, nil
	default:
		return nil, fmt.Errorf("unknown flavor: %q", name)
	}
}

// OutputPath returns the flavor file for the model file at modelPath,
// placed in dir when dir is set and next to the model otherwise.
func OutputPath(f Flavor, modelPath, dir string) string {
	name := strings.TrimSuffix(filepath.Base(modelPath), ".ts") + f.FileExtension()
	if dir == "" {
		dir = filepath.Dir(modelPath)
	}
	return filepath.Join(dir, name)
}

// Generate runs a flavor over the structures of one model file and
// returns the combined module. Structures the flavor does not apply to are
// skipped. The result is empty when no structure produced output.
func Generate(f Flavor, ctx *EmitContext, structures []*ir.Structure) (*typescript.File, error) {
	out := &typescript.File{}
	for _, s := range structures {
		if s == nil {
			continue
		}
		file, err := f.EmitStructure(ctx, s)
		if errors.Is(err, ir.ErrUnsupportedStructure) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "emit %s", s.Name)
		}
		out.Merge(file)
	}
	if ctx.OutputPath != "" {
		// Structures sharing a model file share the generated module.
		out.DropImport("./" + strings.TrimSuffix(filepath.Base(ctx.OutputPath), ".ts"))
	}
	return out, nil
}

type guardFlavor struct{ t *guards.Transformer }

func (guardFlavor) Name() string          { return "guards" }
func (guardFlavor) FileExtension() string { return guards.Suffix + ".ts" }

func (g guardFlavor) EmitStructure(ctx *EmitContext, s *ir.Structure) (*typescript.File, error) {
	r, err := g.t.Transform(s, guards.Options{OutputPath: ctx.OutputPath})
	if err != nil {
		return nil, err
	}
	ctx.AddWarning(r.Warnings...)
	return r.File, nil
}

type builderFlavor struct{ t *builders.Transformer }

func (builderFlavor) Name() string          { return "builders" }
func (builderFlavor) FileExtension() string { return builders.Suffix + ".ts" }

func (b builderFlavor) EmitStructure(ctx *EmitContext, s *ir.Structure) (*typescript.File, error) {
	r, err := b.t.Transform(s, builders.Options{OutputPath: ctx.OutputPath})
	if err != nil {
		return nil, err
	}
	ctx.AddWarning(r.Warnings...)
	return r.File, nil
}

type identifierFlavor struct{ t *identifiers.Transformer }

func (identifierFlavor) Name() string          { return "identifiers" }
func (identifierFlavor) FileExtension() string { return identifiers.Suffix + ".ts" }

func (i identifierFlavor) EmitStructure(ctx *EmitContext, s *ir.Structure) (*typescript.File, error) {
	r, err := i.t.Transform(s, identifiers.Options{
		MustExtend: ctx.MustExtend,
		Base:       ctx.Base,
		Parser:     ctx.Parser,
		OutputPath: ctx.OutputPath,
	})
	if err != nil {
		return nil, err
	}
	return r.File, nil
}
