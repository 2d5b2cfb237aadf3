package graphql

import (
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/kishek/ts-model-toolkit/modelgen/ir"
)

// namedMappings replaces named types GraphQL has no equivalent for.
var namedMappings = map[string]string{
	"Date": "String",
}

// scalars are the built-in GraphQL scalars.
var scalars = map[string]bool{
	"ID":      true,
	"String":  true,
	"Int":     true,
	"Float":   true,
	"Boolean": true,
}

func named(name string) *ast.Type {
	if mapped, ok := namedMappings[name]; ok {
		name = mapped
	}
	return ast.NamedType(name, nil)
}

// fieldType returns the GraphQL type of a property, before nullability.
func (e *emitter) fieldType(p ir.Property) *ast.Type {
	if p.Name == "id" {
		return ast.NamedType("ID", nil)
	}
	return e.typeOf(p.Type, p.Tags.Annotations().Float)
}

// typeOf maps t onto a GraphQL type. float selects Float for numbers.
func (e *emitter) typeOf(t ir.Type, float bool) *ast.Type {
	switch t := ir.Resolve(t).(type) {
	case *ir.Primitive:
		switch t.Primitive {
		case ir.PrimitiveString:
			return named("String")
		case ir.PrimitiveNumber:
			if float {
				return named("Float")
			}
			return named("Int")
		case ir.PrimitiveBoolean:
			return named("Boolean")
		}
	case *ir.EnumMember:
		if t.Value != nil {
			return named(t.Value.Raw)
		}
		return named(t.Raw())
	case *ir.Reference:
		if t.Member == "" && len(t.Arguments) == 1 {
			return named(t.Arguments[0].Raw())
		}
		return named(t.Name)
	case *ir.TypeParameter:
		if fb := t.Fallback(); fb != nil {
			return named(fb.Raw())
		}
	case *ir.Array:
		return ast.ListType(e.typeOf(t.Element, float), nil)
	case *ir.Union:
		parts := make([]string, len(t.Members))
		for i, m := range t.Members {
			parts[i] = e.typeOf(m, float).String()
		}
		return ast.NamedType(strings.Join(parts, " | "), nil)
	case *ir.Tuple:
		if _, rest, ok := t.RestElement(); ok {
			return e.typeOf(rest.Element, float)
		}
	}
	resolved := ir.Resolve(t)
	e.warn(ir.WarnUnsupportedKind, "%s (%s) unsupported by the GraphQL projection", resolved.Kind(), resolved.Raw())
	return ast.NamedType("Unknown", nil)
}

// nullability applies the non-null marker for required properties when
// nullability is inherited.
func (e *emitter) nullability(t *ast.Type, p ir.Property) *ast.Type {
	if e.opts.InheritNullability && p.Required {
		t.NonNull = true
	}
	return t
}

// innermost returns the named type at the core of t.
func innermost(t *ast.Type) string {
	for t.Elem != nil {
		t = t.Elem
	}
	return t.NamedType
}
