package graphql

import (
	"slices"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/kishek/ts-model-toolkit/modelgen/ir"
	"github.com/kishek/ts-model-toolkit/modelgen/typescript"
)

const externalDescription = "The external ID reference for this entity."

func stringArg(name, value string) *ast.Argument {
	return &ast.Argument{Name: name, Value: &ast.Value{Kind: ast.StringValue, Raw: value}}
}

func keyDirective(extra ...*ast.Argument) *ast.Directive {
	return &ast.Directive{Name: "key", Arguments: append(ast.ArgumentList{stringArg("fields", "id")}, extra...)}
}

func shareable() *ast.Directive {
	return &ast.Directive{Name: "shareable"}
}

func (e *emitter) record() error {
	s := e.s
	props := ir.AllProperties(s)

	def := &ast.Definition{
		Kind:        ast.Object,
		Name:        s.Name,
		Description: s.Comment,
	}
	if s.IsBase {
		def.Kind = ast.Interface
	}
	for _, parent := range ir.AllExtendingStructures(s) {
		if !slices.Contains(def.Interfaces, parent.Name) {
			def.Interfaces = append(def.Interfaces, parent.Name)
		}
	}
	if !s.IsBase {
		if e.opts.FederationKey && slices.ContainsFunc(props, func(p ir.Property) bool { return p.Name == "id" }) {
			def.Directives = append(def.Directives, keyDirective())
		}
		if e.opts.FederationShareable {
			def.Directives = append(def.Directives, shareable())
		}
	}

	var extra []*ast.Definition
	for _, p := range props {
		if e.isConnection(p) {
			field, defs := e.connection(p)
			def.Fields = append(def.Fields, field)
			extra = append(extra, defs...)
			continue
		}
		field, stub := e.field(p)
		def.Fields = append(def.Fields, field)
		if stub != nil {
			extra = append(extra, stub)
		}
	}

	if err := e.define(def); err != nil {
		return err
	}
	for _, d := range extra {
		if err := e.define(d); err != nil {
			return err
		}
	}
	return nil
}

// field returns the field for p and, for a type imported from another
// package, a stub definition referencing it by ID.
func (e *emitter) field(p ir.Property) (*ast.FieldDefinition, *ast.Definition) {
	typ := e.fieldType(p)
	f := &ast.FieldDefinition{
		Name:        p.Name,
		Description: p.Comment,
		Type:        e.nullability(typ, p),
	}

	shareableFields := e.opts.FederationKey && !e.opts.FederationShareable && !e.inputMode
	if shareableFields && typ.Elem == nil && typ.NamedType == "ID" && e.s.IsLeaf() {
		f.Directives = append(f.Directives, shareable())
	}

	if e.inputMode {
		return f, nil
	}
	name := innermost(typ)
	imp, ok := ir.FindImport(p.Imports, name)
	if !ok || !imp.IsExternal() {
		return f, nil
	}
	return f, e.externalStub(name)
}

func (e *emitter) externalStub(name string) *ast.Definition {
	id := &ast.FieldDefinition{
		Name:        "id",
		Description: externalDescription,
		Type:        ast.NonNullNamedType("ID", nil),
	}
	stub := &ast.Definition{Kind: ast.Object, Name: name, Fields: ast.FieldList{id}}
	if e.opts.FederationKey {
		stub.Directives = ast.DirectiveList{
			keyDirective(&ast.Argument{Name: "resolvable", Value: &ast.Value{Kind: ast.BooleanValue, Raw: "false"}}),
		}
		id.Directives = ast.DirectiveList{shareable()}
	}
	return stub
}

func (e *emitter) isConnection(p ir.Property) bool {
	return !e.inputMode && slices.Contains(e.opts.RelayQualifiers, p.Type.Raw())
}

// connection exposes p as a Relay connection: a paginated field plus the
// PageInfo, Connection and Edge types it returns.
func (e *emitter) connection(p ir.Property) (*ast.FieldDefinition, []*ast.Definition) {
	s := e.s
	node := e.fieldType(p)
	prefix := s.Name + typescript.PascalCase(p.Name)
	pageInfo, conn, edge := prefix+"PageInfo", prefix+"Connection", prefix+"Edge"
	between := s.Name + " and " + p.Name

	field := &ast.FieldDefinition{
		Name:        p.Name + "Connection",
		Description: p.Comment,
		Arguments: ast.ArgumentDefinitionList{
			{Name: "first", Type: ast.NamedType("Int", nil)},
			{Name: "after", Type: ast.NamedType("String", nil)},
			{Name: "last", Type: ast.NamedType("Int", nil)},
			{Name: "before", Type: ast.NamedType("String", nil)},
		},
		Type: ast.NamedType(conn, nil),
	}

	defs := []*ast.Definition{
		{
			Kind:        ast.Object,
			Name:        pageInfo,
			Description: "Page info for connection between " + between,
			Fields: ast.FieldList{
				{Name: "hasNextPage", Type: ast.NonNullNamedType("Boolean", nil)},
				{Name: "hasPreviousPage", Type: ast.NonNullNamedType("Boolean", nil)},
			},
		},
		{
			Kind:        ast.Object,
			Name:        conn,
			Description: "Connection between " + between,
			Fields: ast.FieldList{
				{Name: "pageInfo", Type: ast.NonNullNamedType(pageInfo, nil)},
				{Name: "edges", Type: ast.ListType(ast.NamedType(edge, nil), nil)},
			},
		},
		{
			Kind:        ast.Object,
			Name:        edge,
			Description: "Edge between " + between,
			Fields: ast.FieldList{
				{Name: "cursor", Type: ast.NonNullNamedType("String", nil)},
				{Name: "node", Type: node},
			},
		},
	}

	// A node from another package is extended with a back-reference.
	name := innermost(node)
	if imp, ok := ir.FindImport(p.Imports, name); ok && imp.IsExternal() {
		defs = append(defs, &ast.Definition{
			Kind:       ast.Object,
			Name:       name,
			Directives: ast.DirectiveList{keyDirective()},
			Fields: ast.FieldList{
				{
					Name:        "id",
					Description: externalDescription,
					Type:        ast.NonNullNamedType("ID", nil),
					Directives:  ast.DirectiveList{shareable()},
				},
				{
					Name:        strings.ToLower(s.Name),
					Description: "The associated " + s.Name + " accessible through " + conn,
					Type:        ast.NamedType(s.Name, nil),
				},
			},
		})
	}
	return field, defs
}

// input emits the input type and, with a resolver name, the root field
// resolving it.
func (e *emitter) input() error {
	s := e.s
	in := e.opts.Input
	if in == nil {
		in = &InputOptions{Operation: OperationQuery}
	}
	e.inputMode = true

	def := &ast.Definition{
		Kind:        ast.InputObject,
		Name:        in.inputName(s.Name),
		Description: s.Comment,
	}
	for _, p := range ir.AllProperties(s) {
		f, _ := e.field(p)
		def.Fields = append(def.Fields, f)
	}
	if err := e.define(def); err != nil {
		return err
	}

	if in.ResolverName == nil {
		return nil
	}
	name := in.ResolverName(s.Name)
	result := resultOf(s)
	root := &ast.Definition{
		Kind: ast.Object,
		Name: in.Operation.TypeName(),
		Fields: ast.FieldList{{
			Name: name,
			Arguments: ast.ArgumentDefinitionList{
				{Name: "input", Type: ast.NonNullNamedType(def.Name, nil)},
			},
			Type: result.gqlType(),
		}},
	}
	if err := e.define(root); err != nil {
		return err
	}

	if in.Stub != nil {
		e.resolver = newResolver(s, name, in.Operation, result, in.Stub)
	}
	return nil
}

// resolverResult is the declared result of a resolver: an item type,
// optionally a list of it.
type resolverResult struct {
	Item string
	List bool
}

// resultOf reads the @returns tag. A bracketed value is a list; no tag
// means Boolean.
func resultOf(s *ir.Structure) resolverResult {
	ret := strings.TrimSpace(s.Tags.Annotations().Returns)
	if ret == "" {
		return resolverResult{Item: "Boolean"}
	}
	if strings.HasPrefix(ret, "[") && strings.HasSuffix(ret, "]") {
		return resolverResult{Item: strings.TrimSpace(ret[1 : len(ret)-1]), List: true}
	}
	return resolverResult{Item: ret}
}

func (r resolverResult) gqlType() *ast.Type {
	item := ast.NamedType(r.Item, nil)
	if r.List {
		return ast.ListType(item, nil)
	}
	return item
}

// typeScript returns the result as a TypeScript type.
func (r resolverResult) typeScript() string {
	item := r.Item
	switch item {
	case "Boolean":
		item = "boolean"
	case "String", "ID":
		item = "string"
	case "Int", "Float":
		item = "number"
	}
	if r.List {
		return item + "[]"
	}
	return item
}
