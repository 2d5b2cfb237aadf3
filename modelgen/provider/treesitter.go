package provider

import (
	"context"

	"github.com/cockroachdb/errors"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/kishek/ts-model-toolkit/modelgen/ir"
)

// ParseSource parses TypeScript source. path is recorded on the result
// and in declaration positions; it is not read.
func ParseSource(ctx context.Context, path string, src []byte) (*File, error) {
	// A parser is not safe for concurrent use; each call gets its own.
	parser := sitter.NewParser()
	parser.SetLanguage(typescript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, errors.Newf("parse %s: empty syntax tree", path)
	}

	b := &fileBuilder{src: src, file: &File{Path: path, SyntaxErrors: root.HasError()}}
	b.build(root)
	return b.file, nil
}

type fileBuilder struct {
	src  []byte
	file *File

	// exportedNames collects `export { A, B }` clauses, applied after all
	// declarations are known.
	exportedNames []string
}

func (b *fileBuilder) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(b.src)
}

func (b *fileBuilder) pos(n *sitter.Node) ir.Source {
	p := n.StartPoint()
	return ir.Source{File: b.file.Path, Line: int(p.Row) + 1, Column: int(p.Column) + 1}
}

func (b *fileBuilder) build(root *sitter.Node) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "import_statement":
			b.importStatement(child)
		case "export_statement":
			b.exportStatement(child)
		case "comment", "expression_statement", "empty_statement":
		default:
			if d := b.declaration(child, child); d != nil {
				b.file.Declarations = append(b.file.Declarations, d)
			}
		}
	}

	for _, name := range b.exportedNames {
		d := b.file.Lookup(name)
		if d == nil || d.Exported {
			continue
		}
		d.Exported = true
		b.file.Exports = append(b.file.Exports, d)
	}
}

func (b *fileBuilder) importStatement(n *sitter.Node) {
	source := unquote(b.text(n.ChildByFieldName("source")))
	if source == "" {
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		clause := n.NamedChild(i)
		if clause.Type() != "import_clause" {
			continue
		}
		for j := 0; j < int(clause.NamedChildCount()); j++ {
			named := clause.NamedChild(j)
			if named.Type() != "named_imports" {
				continue
			}
			for k := 0; k < int(named.NamedChildCount()); k++ {
				spec := named.NamedChild(k)
				if spec.Type() != "import_specifier" {
					continue
				}
				name := b.text(spec.ChildByFieldName("alias"))
				if name == "" {
					name = b.text(spec.ChildByFieldName("name"))
				}
				b.file.Imports = append(b.file.Imports, ir.Import{Name: name, Path: source})
			}
		}
	}
}

func (b *fileBuilder) exportStatement(n *sitter.Node) {
	if decl := n.ChildByFieldName("declaration"); decl != nil {
		if d := b.declaration(decl, n); d != nil {
			d.Exported = true
			b.file.Declarations = append(b.file.Declarations, d)
			b.file.Exports = append(b.file.Exports, d)
		}
		return
	}
	// Re-exports from another module are not followed.
	if n.ChildByFieldName("source") != nil {
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		clause := n.NamedChild(i)
		if clause.Type() != "export_clause" {
			continue
		}
		for j := 0; j < int(clause.NamedChildCount()); j++ {
			spec := clause.NamedChild(j)
			if spec.Type() == "export_specifier" {
				b.exportedNames = append(b.exportedNames, b.text(spec.ChildByFieldName("name")))
			}
		}
	}
}

// declaration converts a declaration node. anchor is the node whose
// preceding comment documents the declaration: the export statement for
// exported declarations, the node itself otherwise.
func (b *fileBuilder) declaration(n, anchor *sitter.Node) *Declaration {
	d := &Declaration{
		Syntax: n.Type(),
		Doc:    b.docFor(anchor),
		Pos:    b.pos(n),
		File:   b.file,
	}
	switch n.Type() {
	case "interface_declaration":
		d.Kind = DeclInterface
		d.Name = b.text(n.ChildByFieldName("name"))
		d.TypeParameters = b.typeParameters(n.ChildByFieldName("type_parameters"))
		d.Extends = b.heritage(n)
		d.Members = b.propertySignatures(n.ChildByFieldName("body"))
	case "enum_declaration":
		d.Kind = DeclEnum
		d.Name = b.text(n.ChildByFieldName("name"))
		d.Members = b.enumMembers(n.ChildByFieldName("body"))
	case "type_alias_declaration":
		d.Kind = DeclTypeAlias
		d.Name = b.text(n.ChildByFieldName("name"))
		d.TypeParameters = b.typeParameters(n.ChildByFieldName("type_parameters"))
		d.Value = b.typeNode(n.ChildByFieldName("value"))
	case "lexical_declaration", "variable_declaration":
		d.Kind = DeclOther
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if c := n.NamedChild(i); c.Type() == "variable_declarator" {
				d.Name = b.text(c.ChildByFieldName("name"))
				break
			}
		}
	default:
		d.Kind = DeclOther
		d.Name = b.text(n.ChildByFieldName("name"))
	}
	return d
}

// docFor returns the JSDoc block immediately preceding n.
func (b *fileBuilder) docFor(n *sitter.Node) *Doc {
	prev := n.PrevNamedSibling()
	if prev == nil || prev.Type() != "comment" {
		return nil
	}
	return ParseDoc(b.text(prev))
}

func (b *fileBuilder) typeParameters(n *sitter.Node) []TypeParam {
	if n == nil {
		return nil
	}
	var params []TypeParam
	for i := 0; i < int(n.NamedChildCount()); i++ {
		p := n.NamedChild(i)
		if p.Type() != "type_parameter" {
			continue
		}
		params = append(params, TypeParam{
			Name:       b.text(p.ChildByFieldName("name")),
			Constraint: b.wrappedType(p.ChildByFieldName("constraint")),
			Default:    b.wrappedType(p.ChildByFieldName("value")),
		})
	}
	return params
}

// wrappedType unwraps constraint, default_type and type_annotation nodes.
func (b *fileBuilder) wrappedType(n *sitter.Node) *TypeNode {
	if n == nil {
		return nil
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() != "comment" {
			return b.typeNode(c)
		}
	}
	return nil
}

func (b *fileBuilder) heritage(n *sitter.Node) []Heritage {
	var out []Heritage
	for i := 0; i < int(n.NamedChildCount()); i++ {
		clause := n.NamedChild(i)
		if clause.Type() != "extends_type_clause" {
			continue
		}
		for j := 0; j < int(clause.NamedChildCount()); j++ {
			t := b.typeNode(clause.NamedChild(j))
			if t == nil {
				continue
			}
			h := Heritage{Name: t.Name, Text: t.Text}
			if t.Kind == NodeGeneric {
				h.Arguments = t.Children
			}
			if h.Name == "" {
				h.Name = t.Text
			}
			out = append(out, h)
		}
	}
	return out
}

func (b *fileBuilder) propertySignatures(body *sitter.Node) []Member {
	if body == nil {
		return nil
	}
	var out []Member
	for i := 0; i < int(body.NamedChildCount()); i++ {
		sig := body.NamedChild(i)
		if sig.Type() != "property_signature" {
			continue
		}
		m := Member{
			Name: unquote(b.text(sig.ChildByFieldName("name"))),
			Type: b.wrappedType(sig.ChildByFieldName("type")),
			Doc:  b.docFor(sig),
			Pos:  b.pos(sig),
		}
		for j := 0; j < int(sig.ChildCount()); j++ {
			if sig.Child(j).Type() == "?" {
				m.Optional = true
			}
		}
		out = append(out, m)
	}
	return out
}

func (b *fileBuilder) enumMembers(body *sitter.Node) []Member {
	if body == nil {
		return nil
	}
	var out []Member
	for i := 0; i < int(body.NamedChildCount()); i++ {
		c := body.NamedChild(i)
		m := Member{Doc: b.docFor(c), Pos: b.pos(c)}
		switch c.Type() {
		case "property_identifier", "string", "number":
			m.Name = unquote(b.text(c))
		case "enum_assignment":
			m.Name = unquote(b.text(c.ChildByFieldName("name")))
			if v := c.ChildByFieldName("value"); v != nil {
				m.Initializer = b.text(v)
				m.NumericInitializer = v.Type() == "number" ||
					(v.Type() == "unary_expression" && v.NamedChildCount() == 1 && v.NamedChild(0).Type() == "number")
			}
		default:
			continue
		}
		out = append(out, m)
	}
	return out
}

// typeNode converts a type expression. Parenthesized types are unwrapped
// and nested unions are flattened.
func (b *fileBuilder) typeNode(n *sitter.Node) *TypeNode {
	if n == nil {
		return nil
	}
	t := &TypeNode{Syntax: n.Type(), Text: b.text(n)}
	switch n.Type() {
	case "predefined_type":
		t.Kind = NodePredefined
		t.Name = t.Text
	case "type_identifier", "identifier":
		t.Kind = NodeNamed
		t.Name = t.Text
	case "nested_type_identifier":
		t.Kind = NodeQualified
		t.Qualifier = b.text(n.ChildByFieldName("module"))
		t.Name = b.text(n.ChildByFieldName("name"))
	case "generic_type":
		t.Kind = NodeGeneric
		t.Name = b.text(n.ChildByFieldName("name"))
		if args := n.ChildByFieldName("type_arguments"); args != nil {
			for i := 0; i < int(args.NamedChildCount()); i++ {
				if c := args.NamedChild(i); c.Type() != "comment" {
					t.Children = append(t.Children, b.typeNode(c))
				}
			}
		}
	case "array_type":
		t.Kind = NodeArray
		t.Children = []*TypeNode{b.typeNode(n.NamedChild(0))}
	case "tuple_type":
		t.Kind = NodeTuple
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			switch c.Type() {
			case "comment":
				continue
			case "required_parameter", "optional_parameter", "tuple_parameter":
				t.Children = append(t.Children, b.wrappedType(c.ChildByFieldName("type")))
			default:
				t.Children = append(t.Children, b.typeNode(c))
			}
		}
	case "rest_type":
		t.Kind = NodeRest
		t.Children = []*TypeNode{b.typeNode(n.NamedChild(0))}
	case "union_type":
		t.Kind = NodeUnion
		b.flattenUnion(n, t)
	case "lookup_type":
		t.Kind = NodeIndexed
		t.Children = []*TypeNode{b.typeNode(n.NamedChild(0))}
		t.Index = b.text(n.NamedChild(1))
	case "literal_type":
		t.Kind = NodeLiteral
	case "parenthesized_type":
		if inner := b.typeNode(n.NamedChild(0)); inner != nil {
			return inner
		}
	default:
		t.Kind = NodeOther
	}
	return t
}

func (b *fileBuilder) flattenUnion(n *sitter.Node, into *TypeNode) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "comment" {
			continue
		}
		member := b.typeNode(c)
		if member.Kind == NodeUnion {
			into.Children = append(into.Children, member.Children...)
			continue
		}
		into.Children = append(into.Children, member)
	}
}

func unquote(s string) string {
	if len(s) >= 2 {
		if q := s[0]; (q == '\'' || q == '"' || q == '`') && s[len(s)-1] == q {
			return s[1 : len(s)-1]
		}
	}
	return s
}
