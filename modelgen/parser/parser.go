// Package parser turns TypeScript declarations into IR structures.
//
// Enums, interfaces and union type aliases are supported. Every
// declaration is parsed at most once per Parser: parents and indexed
// access targets are cached by file and name, and each child refers to
// its parent through an ir.Extension carrying the child's type arguments.
package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/kishek/ts-model-toolkit/modelgen/ir"
	"github.com/kishek/ts-model-toolkit/modelgen/provider"
)

// Parser parses declarations into structures. It is safe for concurrent
// use; parses are serialized.
type Parser struct {
	loader *provider.Loader
	diag   *ir.Diagnostics

	mu    sync.Mutex
	cache map[string]*cacheEntry
}

type cacheEntry struct {
	structure *ir.Structure
	err       error
	done      bool
}

// Option configures a Parser.
type Option func(*Parser)

// WithLoader sets the file loader. Sharing a loader between parsers
// shares parsed syntax trees.
func WithLoader(l *provider.Loader) Option {
	return func(p *Parser) { p.loader = l }
}

// WithDiagnostics sets the warning collector.
func WithDiagnostics(d *ir.Diagnostics) Option {
	return func(p *Parser) { p.diag = d }
}

// New returns a Parser.
func New(opts ...Option) *Parser {
	p := &Parser{cache: make(map[string]*cacheEntry)}
	for _, opt := range opts {
		opt(p)
	}
	if p.loader == nil {
		p.loader = provider.NewLoader()
	}
	if p.diag == nil {
		p.diag = &ir.Diagnostics{}
	}
	return p
}

// Warnings returns every warning recorded so far.
func (p *Parser) Warnings() []ir.Warning {
	return p.diag.Warnings()
}

// Loader returns the parser's file loader.
func (p *Parser) Loader() *provider.Loader {
	return p.loader
}

// Parse parses the single export of the file at path. It fails when the
// file has more than one export, or when the export is not an enum,
// interface or type alias.
func (p *Parser) Parse(ctx context.Context, path string) (*ir.Structure, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.parseFile(ctx, path)
}

// ParseSafe is like Parse but returns nil instead of an error.
func (p *Parser) ParseSafe(ctx context.Context, path string) *ir.Structure {
	s, err := p.Parse(ctx, path)
	if err != nil {
		return nil
	}
	return s
}

// ParseDeclaration parses one declaration.
func (p *Parser) ParseDeclaration(ctx context.Context, decl *provider.Declaration) (*ir.Structure, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.parseDecl(ctx, decl)
}

func (p *Parser) parseFile(ctx context.Context, path string) (*ir.Structure, error) {
	f, err := p.loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	decl, err := soleExport(f)
	if err != nil {
		return nil, err
	}
	return p.parseDecl(ctx, decl)
}

func soleExport(f *provider.File) (*provider.Declaration, error) {
	switch len(f.Exports) {
	case 0:
		return nil, errors.Wrapf(ErrNoExport, "%s", f.Path)
	case 1:
	default:
		return nil, multipleExports(f.Path)
	}
	decl := f.Exports[0]
	if decl.Kind == provider.DeclOther {
		return nil, unsupportedExport(decl.Syntax)
	}
	return decl, nil
}

func (p *Parser) parseDecl(ctx context.Context, decl *provider.Declaration) (*ir.Structure, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := decl.File.Path + "#" + decl.Name
	if e, ok := p.cache[key]; ok {
		if !e.done {
			return nil, errors.Wrapf(ErrCycle, "%s refers to itself", decl.Name)
		}
		return e.structure, e.err
	}
	entry := &cacheEntry{}
	p.cache[key] = entry

	var s *ir.Structure
	var err error
	switch decl.Kind {
	case provider.DeclEnum:
		s, err = p.parseEnum(decl)
	case provider.DeclInterface:
		s, err = p.parseInterface(ctx, decl)
	case provider.DeclTypeAlias:
		s, err = p.parseAlias(decl)
	default:
		err = unsupportedExport(decl.Syntax)
	}
	if err != nil {
		err = errors.Wrapf(err, "%s", decl.Name)
	}
	entry.structure, entry.err, entry.done = s, err, true
	return s, err
}

func newStructure(decl *provider.Declaration, kind ir.StructureKind) (*ir.Structure, error) {
	if decl.Doc == nil {
		return nil, noDocumentation(decl.Kind.String() + " " + decl.Name)
	}
	return &ir.Structure{
		Name:    decl.Name,
		Kind:    kind,
		Comment: flatten(decl.Doc.Description),
		Tags:    decl.Doc.Tags,
		Imports: append([]ir.Import(nil), decl.File.Imports...),
		Path:    decl.File.Path,
		Pos:     decl.Pos,
	}, nil
}

// flatten joins the description's lines with spaces.
func flatten(description string) string {
	return strings.TrimSpace(strings.ReplaceAll(description, "\n", " "))
}

func (p *Parser) parseEnum(decl *provider.Declaration) (*ir.Structure, error) {
	s, err := newStructure(decl, ir.StructureEnum)
	if err != nil {
		return nil, err
	}
	for _, m := range decl.Members {
		if m.Doc == nil {
			return nil, noDocumentation("enum member " + decl.Name + "." + m.Name)
		}
		member := &ir.EnumMember{}
		if m.Initializer != "" {
			member.Value = &ir.EnumValue{Raw: m.Initializer, Numeric: isNumeric(m)}
		}
		s.Properties = append(s.Properties, ir.Property{
			Name:    m.Name,
			Comment: flatten(m.Doc.Description),
			Type:    member,
			Tags:    m.Doc.Tags,
		})
	}
	return s, nil
}

func isNumeric(m provider.Member) bool {
	if m.NumericInitializer {
		return true
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(m.Initializer), 64)
	return err == nil
}

func (p *Parser) parseAlias(decl *provider.Declaration) (*ir.Structure, error) {
	s, err := newStructure(decl, ir.StructureUnionAlias)
	if err != nil {
		return nil, err
	}
	members := []*provider.TypeNode{decl.Value}
	if decl.Value != nil && decl.Value.Kind == provider.NodeUnion {
		members = decl.Value.Children
	}
	for _, m := range members {
		t, ok := aliasMember(m, decl.File)
		if !ok {
			return nil, errors.WithHint(
				errors.Wrapf(ErrUnsupportedAlias, "type alias %s", decl.Name),
				"declare the alias as `A | B | string`, or use an interface",
			)
		}
		s.Aliases = append(s.Aliases, t)
	}
	return s, nil
}

func aliasMember(n *provider.TypeNode, f *provider.File) (ir.Type, bool) {
	if n == nil {
		return nil, false
	}
	switch n.Kind {
	case provider.NodePredefined:
		if k, ok := ir.ParsePrimitive(n.Text); ok {
			return &ir.Primitive{Primitive: k}, true
		}
	case provider.NodeNamed:
		return &ir.Reference{Name: n.Name, Path: importPath(f, n.Name)}, true
	}
	return nil, false
}

func (p *Parser) parseInterface(ctx context.Context, decl *provider.Declaration) (*ir.Structure, error) {
	s, err := newStructure(decl, ir.StructureRecord)
	if err != nil {
		return nil, err
	}

	// Defaults and constraints are classified before the parameters are in
	// scope, so `T extends U = V` never refers to itself.
	outer := &scope{parser: p, file: decl.File, owner: decl.Name}
	for _, tp := range decl.TypeParameters {
		s.TypeParameters = append(s.TypeParameters, &ir.TypeParameter{
			Name:       tp.Name,
			Default:    outer.classifyOptional(ctx, tp.Default),
			Constraint: outer.classifyOptional(ctx, tp.Constraint),
		})
	}

	in := &scope{parser: p, file: decl.File, owner: decl.Name, params: s.TypeParameters}
	for _, m := range decl.Members {
		if m.Doc == nil {
			return nil, noDocumentation("property " + decl.Name + "." + m.Name)
		}
		if m.Type == nil {
			return nil, errors.Wrapf(ErrUntypedProperty, "%s.%s", decl.Name, m.Name)
		}
		t := in.classify(ctx, m.Type)
		prop := ir.Property{
			Name:     m.Name,
			Comment:  flatten(m.Doc.Description),
			Type:     t,
			Required: !m.Optional,
			Tags:     m.Doc.Tags,
		}
		if imp, ok := propertyImport(t, decl.File.Imports); ok {
			prop.Imports = []ir.Import{imp}
		}
		s.Properties = append(s.Properties, prop)
	}

	for _, h := range decl.Extends {
		args := make([]ir.Type, 0, len(h.Arguments))
		for _, a := range h.Arguments {
			args = append(args, in.classify(ctx, a))
		}
		if len(args) > 0 {
			s.TypeArguments = append(s.TypeArguments, ir.Heritage{Name: h.Name, Arguments: args})
		}

		parentDecl, ok := p.findParent(ctx, decl, h.Name)
		if !ok {
			continue
		}
		parent, err := p.parseDecl(ctx, parentDecl)
		if err != nil {
			return nil, errors.Wrapf(err, "parent of %s", decl.Name)
		}
		s.Extends = append(s.Extends, ir.Extension{Base: parent, Arguments: args})
	}
	return s, nil
}

// findParent locates the declaration of a parent named in an extends
// clause: first in the same file, then through a relative import.
func (p *Parser) findParent(ctx context.Context, child *provider.Declaration, name string) (*provider.Declaration, bool) {
	warn := func(format string, args ...any) {
		w := ir.Warning{Code: ir.WarnUnresolvedParent, TypeName: child.Name}
		w.Message = fmt.Sprintf(format, args...)
		pos := child.Pos
		w.Source = &pos
		p.diag.Add(w)
	}

	decl := child.File.Lookup(name)
	if decl == nil {
		imp, ok := ir.FindImport(child.File.Imports, name)
		switch {
		case !ok:
			warn("parent %s is neither declared nor imported", name)
			return nil, false
		case imp.IsExternal():
			warn("parent %s is imported from package %s and cannot be loaded", name, imp.Path)
			return nil, false
		}
		path, ok := p.loader.Resolve(child.File.Path, imp.Path)
		if !ok {
			warn("cannot resolve module %s for parent %s", imp.Path, name)
			return nil, false
		}
		f, err := p.loader.Load(ctx, path)
		if err != nil {
			warn("load %s: %v", path, err)
			return nil, false
		}
		if decl = f.Lookup(name); decl == nil {
			warn("%s does not declare %s", path, name)
			return nil, false
		}
	}
	if decl.Kind != provider.DeclInterface {
		warn("only interfaces can be extended; %s extends %s of kind %s", child.Name, name, kindName(decl.Syntax))
		return nil, false
	}
	return decl, true
}

// propertyImport returns the file import named by the property's type,
// else by its type parameter default or constraint, else by one of its
// type arguments.
func propertyImport(t ir.Type, imports []ir.Import) (ir.Import, bool) {
	names := []string{t.Raw()}
	switch t := t.(type) {
	case *ir.TypeParameter:
		if t.Default != nil {
			names = append(names, t.Default.Raw())
		}
		if t.Constraint != nil {
			names = append(names, t.Constraint.Raw())
		}
	case *ir.Reference:
		for _, a := range t.Arguments {
			names = append(names, a.Raw())
		}
	}
	for _, n := range names {
		if imp, ok := ir.FindImport(imports, n); ok {
			return imp, true
		}
	}
	return ir.Import{}, false
}

// importPath returns where the file imports name from: an absolute path
// without extension for relative imports, the specifier for packages.
func importPath(f *provider.File, name string) string {
	imp, ok := ir.FindImport(f.Imports, name)
	if !ok {
		return ""
	}
	if imp.IsExternal() || !strings.HasPrefix(imp.Path, ".") {
		return imp.Path
	}
	return filepath.Join(filepath.Dir(f.Path), imp.Path)
}
