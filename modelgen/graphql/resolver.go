package graphql

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/kishek/ts-model-toolkit/modelgen/ir"
	"github.com/kishek/ts-model-toolkit/modelgen/typescript"
)

// DefaultStubTemplate is the resolver module body used when none is
// configured. RESOLVER_NAME, RESOLVER_INPUT_TYPE and RESOLVER_RESULT are
// replaced with the resolver's name, its input structure and its result
// type.
const DefaultStubTemplate = `export const RESOLVER_NAME = async (
    _parent: unknown,
    { input }: { input: RESOLVER_INPUT_TYPE },
): Promise<RESOLVER_RESULT> => {
    throw new Error("RESOLVER_NAME is not implemented");
};
`

// StubOptions configures resolver modules.
type StubOptions struct {
	// Dir is the directory resolver modules are written to.
	Dir string

	// Template is the module body. Defaults to DefaultStubTemplate.
	Template string
}

// Resolver describes the resolver module generated for an input.
type Resolver struct {
	Name      string
	Operation Operation

	// Path is the module's file, <Dir>/<kebab-case name>.ts.
	Path string

	// Contents is the module source.
	Contents string
}

func newResolver(s *ir.Structure, name string, op Operation, result resolverResult, opts *StubOptions) *Resolver {
	path := filepath.Join(opts.Dir, typescript.KebabCase(name)+".ts")
	tmpl := opts.Template
	if tmpl == "" {
		tmpl = DefaultStubTemplate
	}

	// The result type is assumed to live in the input's model file.
	f := &typescript.File{}
	model := typescript.ModuleSpecifier(path, s.Path)
	f.Import(s.Name, model)
	if !scalars[result.Item] {
		f.Import(result.Item, model)
	}

	body := strings.NewReplacer(
		"RESOLVER_NAME", name,
		"RESOLVER_INPUT_TYPE", s.Name,
		"RESOLVER_RESULT", result.typeScript(),
	).Replace(tmpl)
	f.Add(typescript.Verbatim(body))

	return &Resolver{
		Name:      name,
		Operation: op,
		Path:      path,
		Contents:  f.Render(),
	}
}

// ResolverMap renders the module at target that collects every resolver
// into the Query and Mutation maps a GraphQL server expects.
func ResolverMap(target string, resolvers []Resolver) string {
	sorted := slices.Clone(resolvers)
	slices.SortFunc(sorted, func(a, b Resolver) int { return strings.Compare(a.Name, b.Name) })

	f := &typescript.File{}
	var queries, mutations []string
	for _, r := range sorted {
		f.Import(r.Name, typescript.ModuleSpecifier(absolute(target), absolute(r.Path)))
		if r.Operation == OperationMutation {
			mutations = append(mutations, r.Name)
		} else {
			queries = append(queries, r.Name)
		}
	}
	f.Add(typescript.Verbatim("export const resolvers = {\n" +
		"    Query: " + objectOf(queries) + ",\n" +
		"    Mutation: " + objectOf(mutations) + ",\n" +
		"};"))
	return f.Render()
}

func objectOf(names []string) string {
	if len(names) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(names, ", ") + " }"
}

func absolute(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
