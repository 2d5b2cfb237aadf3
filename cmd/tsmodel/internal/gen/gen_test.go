package gen

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/kishek/ts-model-toolkit/internal/testfixtures"
	"github.com/kishek/ts-model-toolkit/modelgen"
)

func TestGraphQLCmd_Config(t *testing.T) {
	cmd := &GraphQLCmd{
		SourceFlags: SourceFlags{Src: filepath.FromSlash("/work/src")},
		Relay:       []string{"ComposedOf"},
		Query:       "Query",
		Mutation:    "Command",
	}
	cfg := cmd.config()
	assert.Equal(t, filepath.FromSlash("/work/__generated__/graphql"), cfg.Target)
	require.NotNil(t, cfg.GraphQL)
	assert.Equal(t, ".", cfg.GraphQL.Dir)
	assert.Equal(t, []string{"ComposedOf"}, cfg.GraphQL.Relay)
	assert.Equal(t, "Query", cfg.GraphQL.QuerySuffix)
	assert.Equal(t, "Command", cfg.GraphQL.MutationSuffix)
	assert.Empty(t, cfg.Flavors)

	cmd.Target = filepath.FromSlash("/work/out")
	assert.Equal(t, filepath.FromSlash("/work/out"), cmd.config().Target)
}

func TestIdentifierCmd_Config(t *testing.T) {
	cmd := &IdentifierCmd{
		SourceFlags: SourceFlags{Src: "src"},
		MustExtend:  "Identifiable",
		Base:        "@acme/ids",
		BaseName:    "BaseIdentifier",
		Parser:      "Parser",
	}
	cfg := cmd.config()
	assert.Equal(t, []modelgen.Flavor{modelgen.FlavorIdentifiers}, cfg.Flavors)
	assert.Equal(t, &modelgen.IdentifierConfig{
		MustExtend: "Identifiable",
		Base:       "@acme/ids",
		BaseName:   "BaseIdentifier",
		Parser:     "Parser",
	}, cfg.Identifiers)
	assert.Empty(t, cfg.Target, "defaulted by Generate")
}

func TestGraphQLCmd_Run(t *testing.T) {
	dir := testfixtures.Write(t, testfixtures.Basic)
	cmd := &GraphQLCmd{
		SourceFlags: SourceFlags{Src: filepath.Join(dir, "src")},
		Query:       "Query",
		Schema:      true,
	}
	require.NoError(t, cmd.Run(context.Background(), zaptest.NewLogger(t)))

	out := filepath.Join(dir, "__generated__", "graphql")
	assert.FileExists(t, filepath.Join(out, "model", "invoice.gql"))
	assert.FileExists(t, filepath.Join(out, modelgen.SchemaFile))
	assert.NoFileExists(t, filepath.Join(out, modelgen.ResolverMapFile))
}

func TestGuardsCmd_Run(t *testing.T) {
	dir := testfixtures.Write(t, testfixtures.Basic)
	target := filepath.Join(dir, "out")
	cmd := &GuardsCmd{SourceFlags{Src: filepath.Join(dir, "src"), Target: target}}
	require.NoError(t, cmd.Run(context.Background(), zaptest.NewLogger(t)))

	data, err := os.ReadFile(filepath.Join(target, "guards", "model", "customer.guard.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "isCustomer")
}

func TestConfigCmd_Run(t *testing.T) {
	dir := testfixtures.Write(t, testfixtures.Basic)
	path := filepath.Join(dir, "tsmodel.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source: src\ntsconfig: tsconfig.json\nflavors: [builders]\n"), 0o644))

	cmd := &ConfigCmd{Config: path}
	require.NoError(t, cmd.Run(context.Background(), zaptest.NewLogger(t)))
	assert.FileExists(t, filepath.Join(dir, "__generated__", "builders", "model", "invoice.builder.ts"))

	require.NoError(t, os.WriteFile(path, []byte("source: src\n"), 0o644))
	err := cmd.Run(context.Background(), zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
