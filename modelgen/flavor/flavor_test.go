package flavor

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kishek/ts-model-toolkit/internal/testfixtures"
	"github.com/kishek/ts-model-toolkit/modelgen/identifiers"
	"github.com/kishek/ts-model-toolkit/modelgen/ir"
	"github.com/kishek/ts-model-toolkit/modelgen/parser"
)

func invoiceModel(t *testing.T) (string, []*ir.Structure) {
	t.Helper()
	dir := testfixtures.Write(t, testfixtures.Basic)
	var files []string
	for _, f := range testfixtures.Files(t, testfixtures.Basic) {
		if filepath.Ext(f) == ".ts" {
			files = append(files, filepath.Join(dir, filepath.FromSlash(f)))
		}
	}
	proj, err := parser.New().ParseProject(context.Background(), files, filepath.Join(dir, "src"))
	require.NoError(t, err)
	structures := proj.Structures(filepath.Join(dir, "src", "model", "invoice.ts"))
	require.Len(t, structures, 4)
	return dir, structures
}

func mustGet(t *testing.T, name string) Flavor {
	t.Helper()
	f, err := Get(name)
	require.NoError(t, err)
	return f
}

func TestGet(t *testing.T) {
	for _, name := range Names() {
		f := mustGet(t, name)
		assert.Equal(t, name, f.Name())
	}
	assert.Equal(t, ".guard.ts", mustGet(t, "guards").FileExtension())
	assert.Equal(t, ".builder.ts", mustGet(t, "builders").FileExtension())
	assert.Equal(t, ".identifier.ts", mustGet(t, "identifiers").FileExtension())

	_, err := Get("zod")
	assert.EqualError(t, err, `unknown flavor: "zod"`)
}

func TestOutputPath(t *testing.T) {
	guards := mustGet(t, "guards")
	model := filepath.Join("src", "model", "invoice.ts")
	assert.Equal(t, filepath.Join("src", "model", "invoice.guard.ts"), OutputPath(guards, model, ""))
	assert.Equal(t, filepath.Join("out", "guards", "invoice.guard.ts"), OutputPath(guards, model, filepath.Join("out", "guards")))
}

func TestGenerate_Guards(t *testing.T) {
	dir, structures := invoiceModel(t)
	f := mustGet(t, "guards")
	ctx := &EmitContext{OutputPath: filepath.Join(dir, "out", "invoice.guard.ts")}

	file, err := Generate(f, ctx, structures)
	require.NoError(t, err)
	text := file.Render()
	for _, fn := range []string{"isInvoice", "isInvoiceGroup", "isCreateInvoiceCommand", "isGetInvoiceByIdQuery"} {
		assert.Contains(t, text, "export function "+fn+"(entity: any)")
	}

	imports := file.Imports()
	assert.NotContains(t, imports, "./invoice.guard")
	assert.Equal(t,
		[]string{"Invoice", "InvoiceGroup", "CreateInvoiceCommand", "GetInvoiceByIdQuery"},
		imports["../src/model/invoice"])
}

func TestGenerate_BuildersSkipEnums(t *testing.T) {
	dir := testfixtures.Write(t, testfixtures.Features)
	s, err := parser.New().Parse(context.Background(), filepath.Join(dir, "test.enum.ts"))
	require.NoError(t, err)

	file, err := Generate(mustGet(t, "builders"), &EmitContext{}, []*ir.Structure{s, nil})
	require.NoError(t, err)
	assert.True(t, file.Empty())
	assert.Empty(t, file.Render())
}

func TestGenerate_Identifiers(t *testing.T) {
	dir, structures := invoiceModel(t)
	f := mustGet(t, "identifiers")

	ctx := &EmitContext{
		OutputPath: filepath.Join(dir, "src", "model", "invoice.identifier.ts"),
		MustExtend: "Identifiable",
		Base:       ir.Import{Path: filepath.Join(dir, "src", "model", "core", "identifier.ts")},
	}
	file, err := Generate(f, ctx, structures)
	require.NoError(t, err)
	text := file.Render()
	assert.Contains(t, text, "export class InvoiceIdentifier extends BaseIdentifier<'invoice'> {")
	assert.Contains(t, text, "export class InvoiceGroupIdentifier extends BaseIdentifier<'invoiceGroup'> {")
	assert.NotContains(t, text, "CreateInvoiceCommandIdentifier")
	assert.Equal(t, map[string][]string{"./core/identifier": {"BaseIdentifier", "Parser"}}, file.Imports())

	ctx.Base = ir.Import{}
	_, err = Generate(f, ctx, structures)
	require.Error(t, err)
	assert.True(t, errors.Is(err, identifiers.ErrNoBase))
	assert.Contains(t, err.Error(), "emit Invoice")
}

func TestGenerate_CollectsWarnings(t *testing.T) {
	dir := testfixtures.Write(t, testfixtures.Features)
	s, err := parser.New().Parse(context.Background(), filepath.Join(dir, "test.interface.with.indexed.access.ts"))
	require.NoError(t, err)

	ctx := &EmitContext{}
	_, err = Generate(mustGet(t, "builders"), ctx, []*ir.Structure{s})
	require.NoError(t, err)
	require.Len(t, ctx.Warnings, 1)
	assert.Equal(t, "TestInterfaceWithIndexedAccessType", ctx.Warnings[0].TypeName)
}
