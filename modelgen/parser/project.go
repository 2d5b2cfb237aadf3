package parser

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kishek/ts-model-toolkit/modelgen/ir"
	"github.com/kishek/ts-model-toolkit/modelgen/provider"
)

// Project is the result of parsing every model file under a root.
type Project struct {
	// Root is the absolute source root.
	Root string

	files    map[string][]*ir.Structure
	warnings []ir.Warning
}

// Files returns the parsed file paths in lexical order.
func (p *Project) Files() []string {
	out := make([]string, 0, len(p.files))
	for f := range p.files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Structures returns the structures of one file in declaration order. A
// nil entry marks a declaration that failed to parse; the failure is
// reported in Warnings.
func (p *Project) Structures(path string) []*ir.Structure {
	return p.files[path]
}

// All returns every successfully parsed structure, ordered by file then
// declaration.
func (p *Project) All() []*ir.Structure {
	var out []*ir.Structure
	for _, f := range p.Files() {
		for _, s := range p.files[f] {
			if s != nil {
				out = append(out, s)
			}
		}
	}
	return out
}

// Lookup returns the first structure with the given name.
func (p *Project) Lookup(name string) *ir.Structure {
	for _, s := range p.All() {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Warnings returns the warnings recorded while parsing the project.
func (p *Project) Warnings() []ir.Warning {
	return p.warnings
}

// ParseProject parses all exported enums, interfaces and type aliases of
// the given files. Files outside root are ignored. A declaration that
// fails to parse does not stop the walk: its entry is nil and the error
// becomes a parse_failed warning. Unsupported exports are skipped.
//
// After the walk every structure extended by another is marked IsBase.
func (p *Parser) ParseProject(ctx context.Context, files []string, root string) (*Project, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	proj := &Project{Root: absRoot, files: make(map[string][]*ir.Structure)}
	before := p.diag.Len()

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		abs, err := filepath.Abs(file)
		if err != nil || !within(absRoot, abs) {
			continue
		}
		f, err := p.loader.Load(ctx, abs)
		if err != nil {
			p.diag.Add(ir.Warning{Code: ir.WarnParseFailed, Message: err.Error(), Source: &ir.Source{File: abs}})
			continue
		}
		proj.files[abs] = p.parseExports(ctx, f)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	markBases(proj.All())
	if ws := p.diag.Warnings(); len(ws) > before {
		proj.warnings = ws[before:]
	}
	return proj, nil
}

func (p *Parser) parseExports(ctx context.Context, f *provider.File) []*ir.Structure {
	out := []*ir.Structure{}
	for _, decl := range f.Exports {
		if decl.Kind == provider.DeclOther {
			continue
		}
		s, err := p.parseDecl(ctx, decl)
		if err != nil {
			pos := decl.Pos
			p.diag.Add(ir.Warning{
				Code:     ir.WarnParseFailed,
				Message:  err.Error(),
				Source:   &pos,
				TypeName: decl.Name,
			})
		}
		out = append(out, s)
	}
	return out
}

// markBases sets IsBase on every direct parent of the given structures.
// Parents are the parser's cached structures, so project members reached
// as parents are marked in place.
func markBases(structures []*ir.Structure) {
	for _, s := range structures {
		for _, ext := range s.Extends {
			if ext.Base != nil {
				ext.Base.IsBase = true
			}
		}
	}
}

// within reports whether path is root or lexically below it.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel))
}
