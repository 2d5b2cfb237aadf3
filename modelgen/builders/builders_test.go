package builders

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kishek/ts-model-toolkit/internal/testfixtures"
	"github.com/kishek/ts-model-toolkit/modelgen/ir"
	"github.com/kishek/ts-model-toolkit/modelgen/parser"
)

func parseFeature(t *testing.T, file string) *ir.Structure {
	t.Helper()
	dir := testfixtures.Write(t, testfixtures.Features)
	s, err := parser.New().Parse(context.Background(), filepath.Join(dir, filepath.FromSlash(file)))
	require.NoError(t, err)
	return s
}

func buildFeature(t *testing.T, file string) *Result {
	t.Helper()
	r, err := New().Transform(parseFeature(t, file), Options{})
	require.NoError(t, err)
	return r
}

func TestBuilder_BasicProperties(t *testing.T) {
	r := buildFeature(t, "test.interface.with.basic.properties.ts")

	want := `import { TestInterfaceWithBasicProperties } from "./test.interface.with.basic.properties";

export class TestInterfaceWithBasicPropertiesBuilder implements Partial<TestInterfaceWithBasicProperties> {
    readonly myStringProperty?: string;
    readonly myNumberProperty?: number;
    readonly myBooleanProperty?: boolean;

    withMyStringProperty(value: string): this & Pick<TestInterfaceWithBasicProperties, 'myStringProperty'> {
        return Object.assign(this, { myStringProperty: value });
    }

    withMyNumberProperty(value: number): this & Pick<TestInterfaceWithBasicProperties, 'myNumberProperty'> {
        return Object.assign(this, { myNumberProperty: value });
    }

    withMyBooleanProperty(value: boolean): this & Pick<TestInterfaceWithBasicProperties, 'myBooleanProperty'> {
        return Object.assign(this, { myBooleanProperty: value });
    }

    build(this: TestInterfaceWithBasicProperties): TestInterfaceWithBasicProperties {
        return {
            myStringProperty: this.myStringProperty,
            myNumberProperty: this.myNumberProperty,
            myBooleanProperty: this.myBooleanProperty,
        };
    }
}
`
	assert.Equal(t, want, r.Text())
	assert.Empty(t, r.Warnings)
}

func TestBuilder_EnumNarrow(t *testing.T) {
	r := buildFeature(t, "test.interface.with.enum.narrow.ts")

	want := `import { TestEnum } from "./test.enum";
import { TestInterfaceWithEnumNarrowProperty } from "./test.interface.with.enum.narrow";

export class TestInterfaceWithEnumNarrowPropertyBuilder implements Partial<TestInterfaceWithEnumNarrowProperty> {
    readonly myEnumProperty: TestEnum.ENUM_KEY_STRING = TestEnum.ENUM_KEY_STRING;

    build(this: TestInterfaceWithEnumNarrowProperty): TestInterfaceWithEnumNarrowProperty {
        return {
            myEnumProperty: TestEnum.ENUM_KEY_STRING,
        };
    }
}
`
	assert.Equal(t, want, r.Text())
}

func TestBuilder_GenericParent(t *testing.T) {
	r := buildFeature(t, "test.interface.with.parent-interface-generic.ts")
	text := r.Text()

	assert.Contains(t, text, "export class TestInterfaceWithParentGenericBuilder implements Partial<TestInterfaceWithParentGeneric> {\n"+
		"    readonly mySuperParentProperty?: string;\n"+
		"    readonly myParentProperty?: string;\n"+
		"    readonly myGenericProperty?: TestInterfaceConstraintExtender;\n"+
		"    readonly myGenericPropertySecond?: string;\n"+
		"    readonly myBaseProperty?: string;\n")
	assert.Contains(t, text,
		"withMyGenericProperty(value: TestInterfaceConstraintExtender): this & Pick<TestInterfaceWithParentGeneric, 'myGenericProperty'> {")
	assert.Equal(t, map[string][]string{
		"./primitives/test.interface.generic.constraint.extender": {"TestInterfaceConstraintExtender"},
		"./test.interface.with.parent-interface-generic":          {"TestInterfaceWithParentGeneric"},
	}, r.File.Imports())
}

func TestBuilder_GenericParentArrays(t *testing.T) {
	r := buildFeature(t, "test.interface.with.parent-interface-generic.arrays.ts")
	text := r.Text()
	assert.Contains(t, text, "readonly myParentProperty?: string[];")
	assert.Contains(t, text, "readonly myGenericProperty?: TestInterfaceConstraintExtender[];")
	assert.Contains(t, text, "readonly myGenericPropertySecond?: string[];")
}

func TestBuilder_TypeParameters(t *testing.T) {
	r := buildFeature(t, "test.interface.with.indexed.access.ts")
	text := r.Text()

	assert.Contains(t, text,
		"export class TestInterfaceWithIndexedAccessTypeBuilder<GenericType extends TestInterfaceConstraint = TestInterfaceConstraintExtender> "+
			"implements Partial<TestInterfaceWithIndexedAccessType<GenericType>> {")
	assert.Contains(t, text, "readonly myIndexedProperty?: string;")
	assert.Contains(t, text, "readonly myMissingIndexedProperty?: Unknown;")
	assert.Contains(t, text,
		"build(this: TestInterfaceWithIndexedAccessType<GenericType>): TestInterfaceWithIndexedAccessType<GenericType> {")

	imports := r.File.Imports()
	assert.Equal(t, []string{"TestInterfaceConstraint"}, imports["./primitives/test.interface.generic.constraint"])
	assert.Equal(t, []string{"TestInterfaceConstraintExtender"}, imports["./primitives/test.interface.generic.constraint.extender"])

	require.Len(t, r.Warnings, 1)
	assert.Equal(t, ir.WarnUnsupportedKind, r.Warnings[0].Code)
}

func TestBuilder_SingleTypeParameterProperty(t *testing.T) {
	r := buildFeature(t, "primitives/test.interface.relationship.ts")
	assert.Contains(t, r.Text(), "readonly entity?: Entity;")
	assert.Contains(t, r.Text(), "withEntity(value: Entity): this & Pick<TestRelationship, 'entity'> {")
}

func TestBuilder_TypeParameterFallback(t *testing.T) {
	s := &ir.Structure{
		Name: "Pair",
		Kind: ir.StructureRecord,
		Path: filepath.FromSlash("/work/pair.ts"),
		Imports: []ir.Import{
			{Name: "Money", Path: "@acme/money"},
		},
		TypeParameters: []*ir.TypeParameter{
			{Name: "A", Default: ir.Ref("Money")},
			{Name: "B"},
		},
		Properties: []ir.Property{
			{Name: "left", Type: &ir.TypeParameter{Name: "A", Default: ir.Ref("Money")}, Required: true},
			{Name: "right", Type: &ir.TypeParameter{Name: "B"}, Required: true},
		},
	}
	r, err := New().Transform(s, Options{})
	require.NoError(t, err)

	assert.Contains(t, r.Text(), "readonly left?: Money;")
	assert.Contains(t, r.Text(), "readonly right?: B;")
	assert.Equal(t, []string{"Money"}, r.File.Imports()["@acme/money"])
}

func TestBuilder_RestUnionAndReference(t *testing.T) {
	rest := buildFeature(t, "test.interface.with.rest-type.ts")
	assert.Contains(t, rest.Text(),
		"readonly myTupleTypePropertyWithRestType?: [TestEnum.ENUM_KEY_STRING, ...TestEnum[]];")

	union := buildFeature(t, "test.interface.with.union-type.ts")
	assert.Contains(t, union.Text(), "readonly myUnionProperty?: string | number | boolean;")

	ref := buildFeature(t, "test.interface.with.relationship.ts")
	assert.Contains(t, ref.Text(), "readonly myRelatedEntities?: TestRelationship<TestNode>;")
	imports := ref.File.Imports()
	assert.Equal(t, []string{"TestNode"}, imports["./primitives/test.interface.node"])
	assert.Equal(t, []string{"TestRelationship"}, imports["./primitives/test.interface.relationship"])
}

func TestBuilder_QuotedPropertyName(t *testing.T) {
	s := &ir.Structure{
		Name: "Invoice",
		Kind: ir.StructureRecord,
		Path: filepath.FromSlash("/work/invoice.ts"),
		Properties: []ir.Property{
			{Name: "due-date", Type: ir.String(), Required: true},
		},
	}
	r, err := New().Transform(s, Options{OutputPath: filepath.FromSlash("/work/gen/invoice.builder.ts")})
	require.NoError(t, err)

	text := r.Text()
	assert.Contains(t, text, `readonly "due-date"?: string;`)
	assert.Contains(t, text, `return Object.assign(this, { "due-date": value });`)
	assert.Contains(t, text, `"due-date": this["due-date"],`)
	assert.Contains(t, text, "withDueDate(value: string): this & Pick<Invoice, 'due-date'> {")
	assert.Equal(t, map[string][]string{"../invoice": {"Invoice"}}, r.File.Imports())
}

func TestBuilder_RejectsNonRecords(t *testing.T) {
	for _, file := range []string{"test.enum.ts", "test.type-alias.ts"} {
		t.Run(file, func(t *testing.T) {
			s := parseFeature(t, file)
			_, err := New().Transform(s, Options{})
			assert.True(t, errors.Is(err, ir.ErrUnsupportedStructure))
			assert.Nil(t, New().TransformSafe(s, Options{}))
		})
	}
}

func TestBuilder_UnboundTypeParameter(t *testing.T) {
	tp := &ir.TypeParameter{Name: "T"}
	record := func(params ...*ir.TypeParameter) *ir.Structure {
		return &ir.Structure{
			Name:           "Batch",
			Kind:           ir.StructureRecord,
			Path:           filepath.FromSlash("/work/batch.ts"),
			TypeParameters: params,
			Properties: []ir.Property{
				{Name: "head", Type: &ir.Tuple{Elements: []ir.Type{
					ir.String(),
					&ir.Rest{Element: &ir.Array{Element: tp}},
				}}, Required: true},
				{Name: "items", Type: &ir.Array{Element: tp}, Required: true},
			},
		}
	}
	opts := Options{OutputPath: filepath.FromSlash("/work/gen/batch.builder.ts")}

	t.Run("undeclared", func(t *testing.T) {
		r, err := New().Transform(record(), opts)
		require.NoError(t, err)
		text := r.Text()
		assert.Contains(t, text, "readonly head?: [string, ...unknown[]];")
		assert.Contains(t, text, "readonly items?: unknown[];")
		assert.NotContains(t, text, "T[]")
	})

	t.Run("declared", func(t *testing.T) {
		r, err := New().Transform(record(tp), opts)
		require.NoError(t, err)
		text := r.Text()
		assert.Contains(t, text, "export class BatchBuilder<T> implements Partial<Batch<T>> {")
		assert.Contains(t, text, "readonly head?: [string, ...T[]];")
		assert.Contains(t, text, "readonly items?: T[];")
	})
}
