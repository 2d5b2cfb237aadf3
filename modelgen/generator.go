// Package modelgen generates GraphQL schemas and TypeScript companions
// (guards, builders, identifiers) from a TypeScript model.
//
// Configure a run with a Config, usually loaded with LoadConfig, and call
// Generate; or use the fluent Generator:
//
//	modelgen.FromSource("./src/model").
//	    WithFlavor(modelgen.FlavorGuards).
//	    ToDir(ctx, "./src/__generated__")
package modelgen

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/vektah/gqlparser/v2/ast"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kishek/ts-model-toolkit/internal/discover"
	"github.com/kishek/ts-model-toolkit/modelgen/flavor"
	"github.com/kishek/ts-model-toolkit/modelgen/graphql"
	"github.com/kishek/ts-model-toolkit/modelgen/ir"
	"github.com/kishek/ts-model-toolkit/modelgen/parser"
	"github.com/kishek/ts-model-toolkit/modelgen/sink"
	"github.com/kishek/ts-model-toolkit/modelgen/typescript"
)

const (
	// SchemaFile is the combined schema written below the GraphQL
	// directory.
	SchemaFile = "schema.generated.graphql"

	// ResolverMapFile is the resolver map written below the GraphQL
	// directory.
	ResolverMapFile = "resolvers.ts"
)

// Result summarizes a generation run.
type Result struct {
	// Files are the written files relative to the target, sorted.
	Files []string

	// Kept are resolver stubs that already existed and were left alone.
	Kept []string

	// Structures counts the parsed structures.
	Structures int

	// Warnings are the non-fatal issues found while parsing and
	// generating.
	Warnings []ir.Warning

	// Output holds file contents when generating in memory.
	Output map[string][]byte
}

// Option configures Generate.
type Option func(*generateOptions)

type generateOptions struct {
	logger *zap.Logger
	sink   sink.OutputSink
}

// WithLogger sets the logger. Progress is logged at debug, written files
// at info and warnings at warn.
func WithLogger(l *zap.Logger) Option {
	return func(o *generateOptions) { o.logger = l }
}

// WithSink sets where files are written. Paths given to the sink are
// relative to the target directory. Default: the filesystem.
func WithSink(s sink.OutputSink) Option {
	return func(o *generateOptions) { o.sink = s }
}

// Generate parses the model described by cfg and writes every configured
// output.
func Generate(ctx context.Context, cfg *Config, opts ...Option) (*Result, error) {
	c := cfg.clone()
	c.ApplyDefaults("")
	if err := c.Validate(); err != nil {
		return nil, err
	}

	o := generateOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.sink == nil {
		o.sink = sink.NewFilesystemSink(c.Target)
	}

	g := &generation{cfg: c, log: o.logger, sink: o.sink, docs: make(map[string]*ast.SchemaDocument)}
	if err := g.run(ctx); err != nil {
		return nil, err
	}
	return &g.result, nil
}

func (c *Config) clone() *Config {
	out := *c
	out.Flavors = slices.Clone(c.Flavors)
	if c.GraphQL != nil {
		gql := *c.GraphQL
		gql.Relay = slices.Clone(c.GraphQL.Relay)
		out.GraphQL = &gql
	}
	if c.Identifiers != nil {
		id := *c.Identifiers
		out.Identifiers = &id
	}
	return &out
}

// generation is the state of one Generate call.
type generation struct {
	cfg      *Config
	log      *zap.Logger
	sink     sink.OutputSink
	flavors  []flavor.Flavor
	template string

	mu        sync.Mutex
	result    Result
	docs      map[string]*ast.SchemaDocument
	resolvers []graphql.Resolver
}

func (g *generation) run(ctx context.Context) error {
	c := g.cfg
	for _, name := range c.Flavors {
		f, err := flavor.Get(name.String())
		if err != nil {
			return err
		}
		g.flavors = append(g.flavors, f)
	}
	if c.GraphQL != nil && c.GraphQL.StubTemplate != "" {
		data, err := os.ReadFile(c.GraphQL.StubTemplate)
		if err != nil {
			return errors.Wrap(err, "read resolver stub template")
		}
		g.template = string(data)
	}

	files, err := discover.Files(ctx, discover.Options{Source: c.Source, TSConfig: c.TSConfig})
	if err != nil {
		return err
	}
	files = slices.DeleteFunc(files, func(f string) bool { return within(c.Target, f) })
	g.log.Debug("discovered model files", zap.Int("count", len(files)), zap.String("source", c.Source))

	proj, err := parser.New().ParseProject(ctx, files, c.Source)
	if err != nil {
		return errors.Wrap(err, "parse project")
	}
	g.result.Structures = len(proj.All())
	g.addWarnings(proj.Warnings()...)

	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(c.Concurrency)
	for _, file := range proj.Files() {
		file := file
		structures := proj.Structures(file)
		eg.Go(func() error {
			return g.file(ectx, file, structures)
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	if err := g.schema(ctx); err != nil {
		return err
	}
	if err := g.resolverModules(ctx); err != nil {
		return err
	}

	slices.Sort(g.result.Files)
	slices.Sort(g.result.Kept)
	for _, w := range g.result.Warnings {
		g.log.Warn(w.Message, warningFields(w)...)
	}
	return nil
}

// file generates every output of one model file.
func (g *generation) file(ctx context.Context, path string, structures []*ir.Structure) error {
	rel, err := filepath.Rel(g.cfg.Source, path)
	if err != nil {
		return err
	}
	g.log.Debug("generating", zap.String("file", rel), zap.Int("structures", len(structures)))

	if g.cfg.GraphQL != nil {
		if err := g.graphQL(ctx, path, rel, structures); err != nil {
			return err
		}
	}
	for _, f := range g.flavors {
		if err := g.flavor(ctx, f, path, rel, structures); err != nil {
			return err
		}
	}
	return nil
}

func (g *generation) graphQL(ctx context.Context, path, rel string, structures []*ir.Structure) error {
	gc := g.cfg.GraphQL
	t := graphql.New()
	base := graphql.Options{
		InheritNullability:  true,
		FederationKey:       gc.FederationKey,
		FederationShareable: gc.FederationShareable,
	}

	var docs []*ast.SchemaDocument
	var resolvers []graphql.Resolver
	for _, s := range structures {
		if s == nil {
			continue
		}
		opts := base
		var r *graphql.Result
		var err error
		if op, suffix, ok := g.operation(s.Name); ok {
			opts.Input = &graphql.InputOptions{
				Operation:    op,
				InputName:    func(n string) string { return strings.TrimSuffix(n, suffix) + "Input" },
				ResolverName: typescript.CamelCase,
			}
			if gc.Resolvers {
				opts.Input.Stub = &graphql.StubOptions{
					Dir:      filepath.Join(g.cfg.Target, filepath.FromSlash(gc.Dir), op.Dir()),
					Template: g.template,
				}
			}
			r, err = t.TransformInput(s, opts)
		} else {
			opts.RelayQualifiers = gc.Relay
			r, err = t.Transform(s, opts)
		}
		if err != nil {
			g.addWarnings(failure(s, "graphql", err))
			continue
		}
		g.addWarnings(r.Warnings...)
		docs = append(docs, r.Document)
		if r.Resolver != nil {
			resolvers = append(resolvers, *r.Resolver)
		}
	}
	if len(docs) == 0 {
		return nil
	}

	doc, err := graphql.Merge(docs...)
	if err != nil {
		return errors.Wrapf(err, "merge schema of %s", rel)
	}
	out := filepath.ToSlash(filepath.Join(gc.Dir, strings.TrimSuffix(rel, ".ts")+".gql"))
	if err := g.write(ctx, out, graphql.Format(doc)); err != nil {
		return err
	}

	g.mu.Lock()
	g.docs[path] = doc
	g.resolvers = append(g.resolvers, resolvers...)
	g.mu.Unlock()
	return nil
}

// operation reports whether name carries the query or mutation suffix.
func (g *generation) operation(name string) (graphql.Operation, string, bool) {
	gc := g.cfg.GraphQL
	switch {
	case gc.QuerySuffix != "" && strings.HasSuffix(name, gc.QuerySuffix):
		return graphql.OperationQuery, gc.QuerySuffix, true
	case gc.MutationSuffix != "" && strings.HasSuffix(name, gc.MutationSuffix):
		return graphql.OperationMutation, gc.MutationSuffix, true
	}
	return "", "", false
}

func (g *generation) flavor(ctx context.Context, f flavor.Flavor, path, rel string, structures []*ir.Structure) error {
	dir := filepath.Join(g.cfg.Target, f.Name(), filepath.Dir(rel))
	ectx := &flavor.EmitContext{OutputPath: flavor.OutputPath(f, path, dir)}
	if id := g.cfg.Identifiers; id != nil {
		ectx.MustExtend = id.MustExtend
		ectx.Base = ir.Import{Name: id.BaseName, Path: id.Base}
		ectx.Parser = id.Parser
	}

	file, err := flavor.Generate(f, ectx, structures)
	g.addWarnings(ectx.Warnings...)
	if err != nil {
		g.addWarnings(ir.Warning{
			Code:    ir.WarnGenerateFailed,
			Message: f.Name() + ": " + err.Error(),
			Source:  &ir.Source{File: path},
		})
		return nil
	}
	if file.Empty() {
		return nil
	}
	out, err := filepath.Rel(g.cfg.Target, ectx.OutputPath)
	if err != nil {
		return err
	}
	return g.write(ctx, filepath.ToSlash(out), file.Render())
}

// schema writes the combined schema of every file.
func (g *generation) schema(ctx context.Context) error {
	gc := g.cfg.GraphQL
	if gc == nil || !gc.Schema {
		return nil
	}
	paths := make([]string, 0, len(g.docs))
	for p := range g.docs {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	docs := make([]*ast.SchemaDocument, len(paths))
	for i, p := range paths {
		docs[i] = g.docs[p]
	}
	doc, err := graphql.Merge(docs...)
	if err != nil {
		return errors.Wrap(err, "merge combined schema")
	}
	return g.write(ctx, filepath.ToSlash(filepath.Join(gc.Dir, SchemaFile)), graphql.Format(doc))
}

// resolverModules writes missing resolver stubs and the resolver map.
func (g *generation) resolverModules(ctx context.Context) error {
	gc := g.cfg.GraphQL
	if gc == nil || !gc.Resolvers || len(g.resolvers) == 0 {
		return nil
	}
	for _, r := range g.resolvers {
		rel, err := filepath.Rel(g.cfg.Target, r.Path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		err = g.sink.CreateFile(ctx, rel, []byte(r.Contents))
		if errors.Is(err, sink.ErrExist) {
			g.log.Debug("keeping resolver stub", zap.String("path", rel))
			g.result.Kept = append(g.result.Kept, rel)
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "write resolver stub %s", rel)
		}
		g.log.Info("wrote", zap.String("path", rel))
		g.result.Files = append(g.result.Files, rel)
	}

	target := filepath.Join(g.cfg.Target, filepath.FromSlash(gc.Dir), ResolverMapFile)
	return g.write(ctx, filepath.ToSlash(filepath.Join(gc.Dir, ResolverMapFile)), graphql.ResolverMap(target, g.resolvers))
}

func (g *generation) write(ctx context.Context, rel, content string) error {
	if err := g.sink.WriteFile(ctx, rel, []byte(content)); err != nil {
		return errors.Wrapf(err, "write %s", rel)
	}
	g.log.Info("wrote", zap.String("path", rel))
	g.mu.Lock()
	g.result.Files = append(g.result.Files, rel)
	g.mu.Unlock()
	return nil
}

func (g *generation) addWarnings(ws ...ir.Warning) {
	if len(ws) == 0 {
		return
	}
	g.mu.Lock()
	g.result.Warnings = append(g.result.Warnings, ws...)
	g.mu.Unlock()
}

// failure turns a projection error into a warning.
func failure(s *ir.Structure, projection string, err error) ir.Warning {
	return ir.Warning{
		Code:     ir.WarnGenerateFailed,
		Message:  projection + ": " + err.Error(),
		Source:   s.Location(),
		TypeName: s.Name,
	}
}

func warningFields(w ir.Warning) []zap.Field {
	fields := []zap.Field{zap.String("code", w.Code)}
	if w.TypeName != "" {
		fields = append(fields, zap.String("type", w.TypeName))
	}
	if w.Source != nil && !w.Source.IsZero() {
		fields = append(fields, zap.Stringer("source", w.Source))
	}
	return fields
}

// within reports whether path is dir or below it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// Generator is a fluent builder over Config.
type Generator struct {
	cfg    Config
	logger *zap.Logger
}

// FromSource starts a Generator for the model below dir.
func FromSource(dir string) *Generator {
	return &Generator{cfg: Config{Source: dir}}
}

// TSConfig selects the model files through a tsconfig.json.
func (g *Generator) TSConfig(path string) *Generator {
	g.cfg.TSConfig = path
	return g
}

// WithFlavor adds TypeScript outputs.
func (g *Generator) WithFlavor(flavors ...Flavor) *Generator {
	g.cfg.Flavors = append(g.cfg.Flavors, flavors...)
	return g
}

// WithGraphQL enables schema generation. A nil config uses the defaults.
func (g *Generator) WithGraphQL(cfg *GraphQLConfig) *Generator {
	if cfg == nil {
		cfg = &GraphQLConfig{}
	}
	g.cfg.GraphQL = cfg
	return g
}

// WithIdentifiers configures the identifiers flavor and enables it.
func (g *Generator) WithIdentifiers(cfg IdentifierConfig) *Generator {
	g.cfg.Identifiers = &cfg
	if !slices.Contains(g.cfg.Flavors, FlavorIdentifiers) {
		g.cfg.Flavors = append(g.cfg.Flavors, FlavorIdentifiers)
	}
	return g
}

// Logger sets the logger.
func (g *Generator) Logger(l *zap.Logger) *Generator {
	g.logger = l
	return g
}

// Config returns a copy of the accumulated configuration.
func (g *Generator) Config() *Config {
	return g.cfg.clone()
}

// ToDir writes the outputs below dir.
func (g *Generator) ToDir(ctx context.Context, dir string) (*Result, error) {
	cfg := g.cfg.clone()
	cfg.Target = dir
	return Generate(ctx, cfg, g.options()...)
}

// Generate runs without touching the filesystem and returns the outputs
// in Result.Output, keyed by their path relative to the target.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	mem := sink.NewMemorySink()
	res, err := Generate(ctx, g.cfg.clone(), append(g.options(), WithSink(mem))...)
	if err != nil {
		return nil, err
	}
	res.Output = mem.Files()
	return res, nil
}

func (g *Generator) options() []Option {
	if g.logger == nil {
		return nil
	}
	return []Option{WithLogger(g.logger)}
}
