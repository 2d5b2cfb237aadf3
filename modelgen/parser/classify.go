package parser

import (
	"context"
	"fmt"

	"github.com/kishek/ts-model-toolkit/modelgen/ir"
	"github.com/kishek/ts-model-toolkit/modelgen/provider"
)

// scope is the context a type node is classified in: the declaring file
// and the type parameters visible to it.
type scope struct {
	parser *Parser
	file   *provider.File
	owner  string
	params []*ir.TypeParameter
}

func (c *scope) param(name string) *ir.TypeParameter {
	for _, tp := range c.params {
		if tp.Name == name {
			return tp
		}
	}
	return nil
}

func (c *scope) classifyOptional(ctx context.Context, n *provider.TypeNode) ir.Type {
	if n == nil {
		return nil
	}
	return c.classify(ctx, n)
}

// classify maps a type node to an IR type. Shapes without an IR
// counterpart become *ir.Unknown.
func (c *scope) classify(ctx context.Context, n *provider.TypeNode) ir.Type {
	if n == nil {
		return &ir.Unknown{}
	}
	if n.Kind == provider.NodeNamed {
		if tp := c.param(n.Name); tp != nil {
			return tp
		}
	}

	switch n.Kind {
	case provider.NodePredefined:
		if k, ok := ir.ParsePrimitive(n.Text); ok {
			return &ir.Primitive{Primitive: k}
		}
	case provider.NodeNamed:
		return &ir.Reference{Name: n.Name, Path: importPath(c.file, n.Name)}
	case provider.NodeQualified:
		return &ir.Reference{Name: n.Qualifier, Member: n.Name, Path: importPath(c.file, n.Qualifier)}
	case provider.NodeGeneric:
		ref := &ir.Reference{Name: n.Name, Path: importPath(c.file, n.Name)}
		for _, a := range n.Children {
			ref.Arguments = append(ref.Arguments, c.classify(ctx, a))
		}
		return ref
	case provider.NodeArray:
		return &ir.Array{Element: c.classify(ctx, n.Element())}
	case provider.NodeTuple:
		tuple := &ir.Tuple{}
		for _, e := range n.Children {
			tuple.Elements = append(tuple.Elements, c.classify(ctx, e))
		}
		return tuple
	case provider.NodeRest:
		return &ir.Rest{Element: c.classify(ctx, n.Element())}
	case provider.NodeUnion:
		union := &ir.Union{}
		for _, m := range n.Children {
			union.Members = append(union.Members, c.classify(ctx, m))
		}
		return union
	case provider.NodeIndexed:
		return c.indexed(ctx, n)
	}
	return &ir.Unknown{Text: n.Text, Syntax: n.Syntax}
}

// indexed resolves T['key'] to the type of property key on T's
// declaration. T is located through a type parameter's constraint (or
// default), the same file, or a relative import; the target file must
// have a single export.
func (c *scope) indexed(ctx context.Context, n *provider.TypeNode) ir.Type {
	unknown := &ir.Unknown{Text: n.Text, Syntax: n.Syntax}
	key := n.IndexKey()

	var (
		decl   *provider.Declaration
		target string
	)
	switch obj := c.classify(ctx, n.Element()).(type) {
	case *ir.TypeParameter:
		target = referencePath(obj.Constraint)
		if target == "" {
			target = referencePath(obj.Default)
		}
		if target == "" {
			if fb, ok := obj.Fallback().(*ir.Reference); ok {
				decl = c.file.Lookup(fb.Name)
				target = fb.Name
			}
		}
	case *ir.Reference:
		target = obj.Name
		if decl = c.file.Lookup(obj.Name); decl == nil {
			target = referencePath(obj)
		}
	default:
		target = n.Element().Text
	}

	if decl == nil && target != "" {
		decl = c.loadExport(ctx, target+".ts")
	}
	if decl != nil {
		if s, err := c.parser.parseDecl(ctx, decl); err == nil {
			if prop, ok := s.Property(key); ok {
				return prop.Type
			}
		}
	}

	c.parser.diag.Add(ir.Warning{
		Code:     ir.WarnUnresolvedIndexed,
		Message:  fmt.Sprintf("unable to follow %s to its definition in %s", n.Index, target),
		Source:   &ir.Source{File: c.file.Path},
		TypeName: c.owner,
	})
	return unknown
}

func (c *scope) loadExport(ctx context.Context, path string) *provider.Declaration {
	f, err := c.parser.loader.Load(ctx, path)
	if err != nil {
		return nil
	}
	decl, err := soleExport(f)
	if err != nil {
		return nil
	}
	return decl
}

func referencePath(t ir.Type) string {
	if ref, ok := t.(*ir.Reference); ok && ref.Path != "" && !(ir.Import{Path: ref.Path}).IsExternal() {
		return ref.Path
	}
	return ""
}
