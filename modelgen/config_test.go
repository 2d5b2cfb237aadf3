package modelgen

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "yaml",
			file: "tsmodel.yaml",
			content: `source: src/model
flavors: [guards, builders]
graphql:
  query: Query
  mutation: Command
  relay: [ComposedOf]
  resolvers: true
`,
		},
		{
			name: "toml",
			file: "tsmodel.toml",
			content: `source = "src/model"
flavors = ["guards", "builders"]

[graphql]
query = "Query"
mutation = "Command"
relay = ["ComposedOf"]
resolvers = true
`,
		},
		{
			name: "json",
			file: "tsmodel.json",
			content: `{
  "source": "src/model",
  "flavors": ["guards", "builders"],
  "graphql": {"query": "Query", "mutation": "Command", "relay": ["ComposedOf"], "resolvers": true}
}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.MkdirAll(filepath.Join(dir, "src", "model"), 0o755))
			path := writeFile(t, dir, tt.file, tt.content)

			cfg, err := LoadConfig(path)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, "src", "model"), cfg.Source)
			assert.Equal(t, filepath.Join(dir, "src", "__generated__"), cfg.Target)
			assert.Equal(t, []Flavor{FlavorGuards, FlavorBuilders}, cfg.Flavors)
			assert.Equal(t, runtime.GOMAXPROCS(0), cfg.Concurrency)
			require.NotNil(t, cfg.GraphQL)
			assert.Equal(t, "graphql", cfg.GraphQL.Dir)
			assert.Equal(t, "Query", cfg.GraphQL.QuerySuffix)
			assert.Equal(t, "Command", cfg.GraphQL.MutationSuffix)
			assert.Equal(t, []string{"ComposedOf"}, cfg.GraphQL.Relay)
			assert.True(t, cfg.GraphQL.Resolvers)
			assert.Nil(t, cfg.Identifiers)
		})
	}
}

func TestLoadConfig_Identifiers(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "model"), 0o755))
	path := writeFile(t, dir, "tsmodel.yaml", `source: model
target: out
flavors: [identifiers]
identifiers:
  mustExtend: Identifiable
  base: ./model/core/identifier
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out"), cfg.Target)
	require.NotNil(t, cfg.Identifiers)
	assert.Equal(t, "Identifiable", cfg.Identifiers.MustExtend)
	assert.Equal(t, filepath.Join(dir, "model", "core", "identifier"), cfg.Identifiers.Base)
	assert.Equal(t, "BaseIdentifier", cfg.Identifiers.BaseName)
	assert.Equal(t, "Parser", cfg.Identifiers.Parser)
}

func TestLoadConfig_PackageBase(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "model"), 0o755))
	path := writeFile(t, dir, "tsmodel.json", `{
  "source": "model",
  "flavors": ["identifiers"],
  "identifiers": {"mustExtend": "Identifiable", "base": "@acme/ids", "baseName": "Id"}
}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "@acme/ids", cfg.Identifiers.Base)
	assert.Equal(t, "Id", cfg.Identifiers.BaseName)
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "model"), 0o755))

	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"unknown yaml key", "a.yaml", "source: model\nflavors: [guards]\nextra: 1\n", "field extra not found"},
		{"unknown json key", "b.json", `{"source": "model", "flavors": ["guards"], "extra": 1}`, "extra"},
		{"unknown toml key", "c.toml", "source = \"model\"\nflavors = [\"guards\"]\nextra = 1\n", "strict mode"},
		{"unsupported format", "d.ini", "source=model", "unsupported config format"},
		{"missing source", "e.yaml", "flavors: [guards]\n", "source: required"},
		{"source not a directory", "f.yaml", "source: nowhere\nflavors: [guards]\n", "source: must be an existing directory"},
		{"nothing to generate", "g.yaml", "source: model\n", "flavors: enable graphql or at least one flavor"},
		{"unknown flavor", "h.yaml", "source: model\nflavors: [zod]\n", "flavors[0]: must be one of: guards builders identifiers"},
		{"duplicate flavor", "i.yaml", "source: model\nflavors: [guards, guards]\n", "flavors: must not contain duplicates"},
		{"identifiers without config", "j.yaml", "source: model\nflavors: [identifiers]\n", "identifiers: required by the identifiers flavor"},
		{"identifiers missing base", "k.yaml", "source: model\nflavors: [identifiers]\nidentifiers:\n  mustExtend: Identifiable\n", "identifiers.base: required"},
		{"same suffixes", "l.yaml", "source: model\ngraphql:\n  query: Input\n  mutation: Input\n", "graphql.mutation: must differ from QuerySuffix"},
		{"negative concurrency", "m.yaml", "source: model\nflavors: [guards]\nconcurrency: -1\n", "concurrency: must be at least 0"},
		{"missing stub template", "n.yaml", "source: model\ngraphql:\n  stubTemplate: stub.ts\n", "graphql.stubTemplate: must be an existing file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.content)
			_, err := LoadConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := &Config{Source: "model", GraphQL: &GraphQLConfig{}, Concurrency: 3}
	cfg.ApplyDefaults("/work")
	first := *cfg
	firstGQL := *cfg.GraphQL
	cfg.ApplyDefaults("/work")

	assert.Equal(t, first.Source, cfg.Source)
	assert.Equal(t, first.Target, cfg.Target)
	assert.Equal(t, firstGQL, *cfg.GraphQL)
	assert.Equal(t, filepath.Join("/work", "model"), cfg.Source)
	assert.Equal(t, filepath.Join("/work", "__generated__"), cfg.Target)
	assert.Equal(t, 3, cfg.Concurrency)
}

func TestFlavorNames(t *testing.T) {
	assert.Equal(t, "guards", FlavorGuards.String())
	assert.Equal(t, "builders", FlavorBuilders.String())
	assert.Equal(t, "identifiers", FlavorIdentifiers.String())
}
