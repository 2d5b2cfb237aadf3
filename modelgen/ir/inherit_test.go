package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(name string, props ...Property) *Structure {
	return &Structure{Name: name, Kind: StructureRecord, Comment: name + " docs", Properties: props}
}

func prop(name string, t Type) Property {
	return Property{Name: name, Comment: name + " docs", Type: t, Required: true}
}

func names(props []Property) []string {
	out := make([]string, len(props))
	for i, p := range props {
		out[i] = p.Name
	}
	return out
}

func TestAllProperties_ThreeLevelChain(t *testing.T) {
	grand := record("Grand", prop("grandOnly", String()), prop("shared", Number()))
	parent := record("Parent", prop("parentOnly", Boolean()))
	parent.Extends = []Extension{{Base: grand}}
	child := record("Child", prop("childOnly", String()), prop("shared", String()))
	child.Extends = []Extension{{Base: parent}}

	all := AllProperties(child)
	assert.Equal(t, []string{"grandOnly", "parentOnly", "childOnly", "shared"}, names(all))

	shared := all[len(all)-1]
	assert.Equal(t, "string", shared.Type.Raw(), "most derived declaration wins")
}

func TestAllProperties_ParentOverride(t *testing.T) {
	parent := record("Parent", prop("a", String()), prop("b", String()))
	child := record("Child", prop("b", Number()))
	child.Extends = []Extension{{Base: parent}}

	all := AllProperties(child)
	require.Len(t, all, 2)
	assert.Equal(t, []string{"a", "b"}, names(all))
	assert.Equal(t, KindPrimitive, all[1].Type.Kind())
	assert.Equal(t, "number", all[1].Type.Raw())
}

func TestAllProperties_NoParents(t *testing.T) {
	s := record("Solo", prop("x", String()))
	assert.Equal(t, []string{"x"}, names(AllProperties(s)))
}

func TestAllExtendingStructures_Order(t *testing.T) {
	grand := record("Grand")
	parent := record("Parent")
	parent.Extends = []Extension{{Base: grand}}
	other := record("Other")
	child := record("Child")
	child.Extends = []Extension{{Base: parent}, {Base: other}}

	var got []string
	for _, s := range AllExtendingStructures(child) {
		got = append(got, s.Name)
	}
	assert.Equal(t, []string{"Grand", "Parent", "Other"}, got)
	assert.True(t, Extends(child, "Grand"))
	assert.False(t, Extends(child, "Missing"))
}

func genericParent() *Structure {
	param := &TypeParameter{Name: "T", Default: Ref("Identifiable")}
	parent := record("Relationship",
		prop("entity", param),
		prop("entities", ArrayOf(param)),
		prop("nested", &Union{Members: []Type{ArrayOf(param), String()}}),
		prop("label", String()),
	)
	parent.TypeParameters = []*TypeParameter{param}
	return parent
}

func TestSubstitute_DirectAndOneLevel(t *testing.T) {
	parent := genericParent()
	invoice := Ref("Invoice")

	bound := Substitute(parent, []Type{invoice})

	entity, ok := bound.Property("entity")
	require.True(t, ok)
	require.IsType(t, &Supplied{}, entity.Type)
	assert.Same(t, invoice, Resolve(entity.Type))

	entities, _ := bound.Property("entities")
	arr, ok := entities.Type.(*Array)
	require.True(t, ok)
	assert.Equal(t, "Invoice", Resolve(arr.Element).Raw())

	// Parameters nested deeper than one level are not substituted.
	nested, _ := bound.Property("nested")
	union := nested.Type.(*Union)
	inner := union.Members[0].(*Array)
	assert.Equal(t, KindTypeParameter, inner.Element.Kind())

	label, _ := bound.Property("label")
	assert.Equal(t, KindPrimitive, label.Type.Kind())
}

func TestSubstitute_DoesNotMutateBase(t *testing.T) {
	parent := genericParent()
	_ = Substitute(parent, []Type{Ref("Invoice")})

	entity, _ := parent.Property("entity")
	assert.Equal(t, KindTypeParameter, entity.Type.Kind())
}

func TestSubstitute_Identity(t *testing.T) {
	parent := genericParent()
	same := Substitute(parent, nil)
	assert.Equal(t, parent.Properties, same.Properties)
	assert.NotSame(t, parent, same)
}

func TestSubstitute_ArityMismatch(t *testing.T) {
	first := &TypeParameter{Name: "A"}
	second := &TypeParameter{Name: "B"}
	parent := record("Pair", prop("a", first), prop("b", second))
	parent.TypeParameters = []*TypeParameter{first, second}

	bound := Substitute(parent, []Type{String()})
	a, _ := bound.Property("a")
	b, _ := bound.Property("b")
	assert.Equal(t, KindPrimitive, Resolve(a.Type).Kind())
	assert.Equal(t, KindTypeParameter, Resolve(b.Type).Kind())

	extra := Substitute(parent, []Type{String(), Number(), Boolean()})
	b, _ = extra.Property("b")
	assert.Equal(t, "number", Resolve(b.Type).Raw())
}

func TestExtension_ResolvePerChild(t *testing.T) {
	parent := genericParent()
	invoices := record("InvoiceGroup")
	invoices.Extends = []Extension{{Base: parent, Arguments: []Type{Ref("Invoice")}}}
	payments := record("PaymentGroup")
	payments.Extends = []Extension{{Base: parent, Arguments: []Type{Ref("Payment")}}}

	byName := func(s *Structure) string {
		p, _ := s.Parents()[0].Property("entity")
		return Resolve(p.Type).Raw()
	}
	assert.Equal(t, "Invoice", byName(invoices))
	assert.Equal(t, "Payment", byName(payments))
}

func TestAllImports(t *testing.T) {
	parent := record("Identifiable")
	parent.Path = "/src/model/core/identifiable.ts"
	parent.Imports = []Import{
		{Name: "RelationshipType", Path: "./relationship-type"},
		{Name: "Money", Path: "@acme/money"},
		{Name: "Shared", Path: "./shared"},
	}
	child := record("Invoice")
	child.Path = "/src/model/invoice.ts"
	child.Imports = []Import{
		{Name: "Identifiable", Path: "./core/identifiable"},
		{Name: "Shared", Path: "./mine"},
	}
	child.Extends = []Extension{{Base: parent}}

	got := AllImports(child)
	assert.Equal(t, []Import{
		{Name: "RelationshipType", Path: "/src/model/core/relationship-type"},
		{Name: "Money", Path: "@acme/money"},
		{Name: "Identifiable", Path: "./core/identifiable"},
		{Name: "Shared", Path: "./mine"},
	}, got)
}

func TestAllImports_ParentFromPackage(t *testing.T) {
	parent := record("Identifiable")
	parent.Path = "/node_modules/@acme/core/identifiable.ts"
	parent.Imports = []Import{{Name: "RelationshipType", Path: "./relationship-type"}}
	child := record("Invoice")
	child.Imports = []Import{{Name: "Identifiable", Path: "@acme/core"}}
	child.Extends = []Extension{{Base: parent}}

	got := AllImports(child)
	assert.Contains(t, got, Import{Name: "RelationshipType", Path: "@acme/core"})
}
