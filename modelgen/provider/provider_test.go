package provider

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kishek/ts-model-toolkit/modelgen/ir"
)

const invoiceSource = `import { Identifiable } from './core/identifiable';
import { Money as Amount } from '@acme/money';

/**
 * A customer-facing invoice.
 * Spans two lines.
 *
 * @input
 * @returns [Invoice]
 */
export interface Invoice<T extends Identifiable = Identifiable> extends Identifiable, Relationship<T> {
  /** Unique identifier. */
  id: string;
  /** Optional note. */
  note?: string;
  /** The amount. */
  amount: Amount;
  /** Tags. */
  tags: string[];
  /** Mixed. */
  mixed: (string | number) | boolean;
  /** Status. */
  status: Status.PAID;
  /** Tuple. */
  pair: [Status, ...Status[]];
  /** Indexed. */
  owner: Identifiable['id'];
  method(): void;
}

/** Invoice status. */
export enum Status {
  /** Paid. */
  PAID = 'paid',
  /** Due. */
  DUE = 2,
  /** Bare. */
  BARE,
}

/** Either. */
export type Either = Invoice | string;

const hidden = 1;
`

func parseInvoice(t *testing.T) *File {
	t.Helper()
	f, err := ParseSource(context.Background(), "/src/invoice.ts", []byte(invoiceSource))
	require.NoError(t, err)
	return f
}

func TestParseSource_Imports(t *testing.T) {
	f := parseInvoice(t)
	assert.Equal(t, []ir.Import{
		{Name: "Identifiable", Path: "./core/identifiable"},
		{Name: "Amount", Path: "@acme/money"},
	}, f.Imports)
}

func TestParseSource_Exports(t *testing.T) {
	f := parseInvoice(t)
	require.Len(t, f.Exports, 3)
	assert.Equal(t, DeclInterface, f.Exports[0].Kind)
	assert.Equal(t, DeclEnum, f.Exports[1].Kind)
	assert.Equal(t, DeclTypeAlias, f.Exports[2].Kind)

	hidden := f.Lookup("hidden")
	require.NotNil(t, hidden)
	assert.False(t, hidden.Exported)
	assert.Equal(t, DeclOther, hidden.Kind)
	assert.Nil(t, f.Export("hidden"))
}

func TestParseSource_Interface(t *testing.T) {
	d := parseInvoice(t).Export("Invoice")
	require.NotNil(t, d)

	require.NotNil(t, d.Doc)
	assert.Equal(t, "A customer-facing invoice.\nSpans two lines.", d.Doc.Description)
	assert.Equal(t, ir.Tags{{Name: "input"}, {Name: "returns", Text: "[Invoice]"}}, d.Doc.Tags)
	assert.Equal(t, 11, d.Pos.Line)

	require.Len(t, d.TypeParameters, 1)
	tp := d.TypeParameters[0]
	assert.Equal(t, "T", tp.Name)
	assert.Equal(t, "Identifiable", tp.Constraint.Name)
	assert.Equal(t, "Identifiable", tp.Default.Name)

	require.Len(t, d.Extends, 2)
	assert.Equal(t, "Identifiable", d.Extends[0].Name)
	assert.Equal(t, "Relationship", d.Extends[1].Name)
	require.Len(t, d.Extends[1].Arguments, 1)
	assert.Equal(t, "T", d.Extends[1].Arguments[0].Text)

	members := map[string]Member{}
	for _, m := range d.Members {
		members[m.Name] = m
	}
	assert.Len(t, d.Members, 8, "method signatures are skipped")

	assert.Equal(t, NodePredefined, members["id"].Type.Kind)
	assert.Equal(t, "Unique identifier.", members["id"].Doc.Description)
	assert.True(t, members["note"].Optional)
	assert.False(t, members["id"].Optional)
	assert.Equal(t, NodeNamed, members["amount"].Type.Kind)

	tags := members["tags"].Type
	assert.Equal(t, NodeArray, tags.Kind)
	assert.Equal(t, "string", tags.Element().Text)

	mixed := members["mixed"].Type
	require.Equal(t, NodeUnion, mixed.Kind)
	require.Len(t, mixed.Children, 3)
	assert.Equal(t, "boolean", mixed.Children[2].Text)

	status := members["status"].Type
	assert.Equal(t, NodeQualified, status.Kind)
	assert.Equal(t, "Status", status.Qualifier)
	assert.Equal(t, "PAID", status.Name)

	pair := members["pair"].Type
	require.Equal(t, NodeTuple, pair.Kind)
	require.Len(t, pair.Children, 2)
	assert.Equal(t, NodeRest, pair.Children[1].Kind)
	assert.Equal(t, NodeArray, pair.Children[1].Element().Kind)

	owner := members["owner"].Type
	require.Equal(t, NodeIndexed, owner.Kind)
	assert.Equal(t, "Identifiable", owner.Element().Name)
	assert.Equal(t, "id", owner.IndexKey())
}

func TestParseSource_Enum(t *testing.T) {
	d := parseInvoice(t).Export("Status")
	require.NotNil(t, d)
	require.Len(t, d.Members, 3)

	assert.Equal(t, "PAID", d.Members[0].Name)
	assert.Equal(t, "'paid'", d.Members[0].Initializer)
	assert.False(t, d.Members[0].NumericInitializer)
	assert.Equal(t, "Paid.", d.Members[0].Doc.Description)

	assert.Equal(t, "2", d.Members[1].Initializer)
	assert.True(t, d.Members[1].NumericInitializer)

	assert.Equal(t, "BARE", d.Members[2].Name)
	assert.Empty(t, d.Members[2].Initializer)
}

func TestParseSource_Alias(t *testing.T) {
	d := parseInvoice(t).Export("Either")
	require.NotNil(t, d)
	require.Equal(t, NodeUnion, d.Value.Kind)
	assert.Equal(t, "Invoice", d.Value.Children[0].Name)
	assert.Equal(t, "string", d.Value.Children[1].Text)
}

func TestParseSource_ExportClause(t *testing.T) {
	src := "/** Local. */\ninterface Local {\n  /** A. */\n  a: string;\n}\nexport { Local };\n"
	f, err := ParseSource(context.Background(), "local.ts", []byte(src))
	require.NoError(t, err)
	require.Len(t, f.Exports, 1)
	assert.Equal(t, "Local", f.Exports[0].Name)
	assert.Equal(t, "Local.", f.Exports[0].Doc.Description)
}

func TestParseDoc(t *testing.T) {
	tests := []struct {
		name    string
		comment string
		want    *Doc
	}{
		{"line comment", "// nope", nil},
		{"block comment", "/* nope */", nil},
		{"single line", "/** Hello there. */", &Doc{Description: "Hello there."}},
		{
			"multi-line tag text",
			"/**\n * Summary.\n * @returns Invoice\n *   and more\n * @float\n */",
			&Doc{Description: "Summary.", Tags: ir.Tags{{Name: "returns", Text: "Invoice\n  and more"}, {Name: "float"}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDoc(tt.comment))
		})
	}
}

func TestLoader_CachesAndResolves(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "core"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "core", "index.ts"), []byte("/** I. */\nexport enum I { /** A. */ A }\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.ts"), []byte("/** M. */\nexport enum M { /** A. */ A }\n"), 0o644))

	l := NewLoader()
	from := filepath.Join(dir, "invoice.ts")

	got, ok := l.Resolve(from, "./model")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "model.ts"), got)

	got, ok = l.Resolve(from, "./core")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "core", "index.ts"), got)

	_, ok = l.Resolve(from, "@acme/money")
	assert.False(t, ok)
	_, ok = l.Resolve(from, "./missing")
	assert.False(t, ok)

	first, err := l.Load(context.Background(), got)
	require.NoError(t, err)
	second, err := l.Load(context.Background(), got)
	require.NoError(t, err)
	assert.Same(t, first, second)
}
