package gen

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/kishek/ts-model-toolkit/internal/runner"
	"github.com/kishek/ts-model-toolkit/modelgen"
)

// SourceFlags select the model and the output directory.
type SourceFlags struct {
	Src      string `help:"Directory holding the model." default:"src" type:"path"`
	TSConfig string `help:"tsconfig.json selecting the model files." name:"tsconfig" type:"path"`
	Target   string `help:"Output directory (default: <src>/../__generated__)." short:"o" type:"path"`
	Watch    bool   `help:"Watch for changes and regenerate." short:"w"`
}

func (f SourceFlags) config() *modelgen.Config {
	return &modelgen.Config{Source: f.Src, TSConfig: f.TSConfig, Target: f.Target}
}

type GraphQLCmd struct {
	SourceFlags `embed:""`

	Schema              bool     `help:"Also write every definition to schema.generated.graphql."`
	Relay               []string `help:"Property type names exposed as Relay connections." sep:","`
	Query               string   `help:"Name suffix of query input structures." placeholder:"SUFFIX"`
	Mutation            string   `help:"Name suffix of mutation input structures." placeholder:"SUFFIX"`
	FederationKey       bool     `help:"Add @key(fields: \"id\") to types with an id."`
	FederationShareable bool     `help:"Add @shareable to types."`
	Resolvers           bool     `help:"Write resolver stubs for queries and mutations and a resolvers.ts map."`
	StubTemplate        string   `help:"File holding the resolver stub template." type:"path"`
}

// config writes schemas straight into the target, which defaults to
// <src>/../__generated__/graphql.
func (c *GraphQLCmd) config() *modelgen.Config {
	cfg := c.SourceFlags.config()
	if cfg.Target == "" {
		cfg.Target = filepath.Join(c.Src, "..", "__generated__", "graphql")
	}
	cfg.GraphQL = &modelgen.GraphQLConfig{
		Dir:                 ".",
		Schema:              c.Schema,
		Relay:               c.Relay,
		QuerySuffix:         c.Query,
		MutationSuffix:      c.Mutation,
		FederationKey:       c.FederationKey,
		FederationShareable: c.FederationShareable,
		Resolvers:           c.Resolvers,
		StubTemplate:        c.StubTemplate,
	}
	return cfg
}

func (c *GraphQLCmd) Run(ctx context.Context, logger *zap.Logger) error {
	return run(ctx, logger, c.config(), c.Watch)
}

type GuardsCmd struct {
	SourceFlags `embed:""`
}

func (c *GuardsCmd) Run(ctx context.Context, logger *zap.Logger) error {
	cfg := c.config()
	cfg.Flavors = []modelgen.Flavor{modelgen.FlavorGuards}
	return run(ctx, logger, cfg, c.Watch)
}

type BuildersCmd struct {
	SourceFlags `embed:""`
}

func (c *BuildersCmd) Run(ctx context.Context, logger *zap.Logger) error {
	cfg := c.config()
	cfg.Flavors = []modelgen.Flavor{modelgen.FlavorBuilders}
	return run(ctx, logger, cfg, c.Watch)
}

type IdentifierCmd struct {
	SourceFlags `embed:""`

	MustExtend string `help:"Ancestor a record needs to get an identifier." required:""`
	Base       string `help:"Module exporting the base identifier class and parser." required:""`
	BaseName   string `help:"Base identifier class." default:"BaseIdentifier"`
	Parser     string `help:"Class exposing id(string)." default:"Parser"`
}

func (c *IdentifierCmd) config() *modelgen.Config {
	cfg := c.SourceFlags.config()
	cfg.Flavors = []modelgen.Flavor{modelgen.FlavorIdentifiers}
	cfg.Identifiers = &modelgen.IdentifierConfig{
		MustExtend: c.MustExtend,
		Base:       c.Base,
		BaseName:   c.BaseName,
		Parser:     c.Parser,
	}
	return cfg
}

func (c *IdentifierCmd) Run(ctx context.Context, logger *zap.Logger) error {
	return run(ctx, logger, c.config(), c.Watch)
}

type ConfigCmd struct {
	Config string `help:"Configuration file." short:"c" default:"tsmodel.yaml" type:"existingfile"`
	Watch  bool   `help:"Watch for changes and regenerate." short:"w"`
}

func (c *ConfigCmd) Run(ctx context.Context, logger *zap.Logger) error {
	cfg, err := modelgen.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	return run(ctx, logger, cfg, c.Watch)
}

// run generates once, or on every change of the model when watch is set.
func run(ctx context.Context, logger *zap.Logger, cfg *modelgen.Config, watch bool) error {
	cfg.ApplyDefaults("")
	generate := func(ctx context.Context) error {
		res, err := modelgen.Generate(ctx, cfg, modelgen.WithLogger(logger))
		if err != nil {
			return err
		}
		logger.Info("generated",
			zap.Int("structures", res.Structures),
			zap.Int("files", len(res.Files)),
			zap.Int("kept", len(res.Kept)),
			zap.Int("warnings", len(res.Warnings)),
			zap.String("target", cfg.Target),
		)
		return nil
	}

	if !watch {
		return runner.Run(ctx, logger, generate)
	}
	dirs := []string{cfg.Source}
	if cfg.TSConfig != "" {
		dirs = append(dirs, filepath.Dir(cfg.TSConfig))
	}
	return runner.Watch(ctx, runner.Options{
		Dirs:   dirs,
		Ignore: []string{cfg.Target},
		Logger: logger,
	}, generate)
}
