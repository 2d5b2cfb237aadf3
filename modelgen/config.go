package modelgen

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Flavor names a TypeScript output generated alongside the model.
type Flavor string

const (
	// FlavorGuards generates isX type guards, one .guard.ts per model file.
	FlavorGuards Flavor = "guards"

	// FlavorBuilders generates XBuilder classes, one .builder.ts per model
	// file.
	FlavorBuilders Flavor = "builders"

	// FlavorIdentifiers generates XIdentifier classes for records
	// descending from a configured base.
	FlavorIdentifiers Flavor = "identifiers"
)

// String returns the flavor name.
func (f Flavor) String() string {
	return string(f)
}

// Config holds the configuration for code generation. It is usually read
// from tsmodel.yaml, tsmodel.toml or tsmodel.json with LoadConfig.
type Config struct {
	// Source is the directory holding the model. Only files below it are
	// parsed.
	Source string `json:"source" yaml:"source" toml:"source" validate:"required,dir"`

	// TSConfig optionally selects the model files through a tsconfig.json.
	TSConfig string `json:"tsconfig,omitempty" yaml:"tsconfig,omitempty" toml:"tsconfig,omitempty" validate:"omitempty,file"`

	// Target is the output directory.
	// Default: <Source>/../__generated__
	Target string `json:"target,omitempty" yaml:"target,omitempty" toml:"target,omitempty" validate:"required"`

	// Concurrency bounds the files generated at once.
	// Default: GOMAXPROCS
	Concurrency int `json:"concurrency,omitempty" yaml:"concurrency,omitempty" toml:"concurrency,omitempty" validate:"gte=0"`

	// GraphQL enables schema generation.
	GraphQL *GraphQLConfig `json:"graphql,omitempty" yaml:"graphql,omitempty" toml:"graphql,omitempty"`

	// Flavors are the TypeScript outputs to generate. Each is written
	// under <Target>/<flavor>/ mirroring the model's directory layout.
	Flavors []Flavor `json:"flavors,omitempty" yaml:"flavors,omitempty" toml:"flavors,omitempty" validate:"unique,dive,oneof=guards builders identifiers"`

	// Identifiers configures the identifiers flavor.
	Identifiers *IdentifierConfig `json:"identifiers,omitempty" yaml:"identifiers,omitempty" toml:"identifiers,omitempty"`
}

// GraphQLConfig configures schema generation.
type GraphQLConfig struct {
	// Dir is the output directory below Target.
	// Default: "graphql"
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty" toml:"dir,omitempty" validate:"required"`

	// Schema also writes every file's definitions merged into
	// schema.generated.graphql.
	Schema bool `json:"schema,omitempty" yaml:"schema,omitempty" toml:"schema,omitempty"`

	// Relay lists the property type names exposed as Relay connections.
	Relay []string `json:"relay,omitempty" yaml:"relay,omitempty" toml:"relay,omitempty"`

	// QuerySuffix marks structures projected as query inputs, e.g. "Query".
	QuerySuffix string `json:"query,omitempty" yaml:"query,omitempty" toml:"query,omitempty"`

	// MutationSuffix marks structures projected as mutation inputs, e.g.
	// "Command".
	MutationSuffix string `json:"mutation,omitempty" yaml:"mutation,omitempty" toml:"mutation,omitempty" validate:"omitempty,nefield=QuerySuffix"`

	// FederationKey and FederationShareable add Apollo Federation
	// directives.
	FederationKey       bool `json:"federationKey,omitempty" yaml:"federationKey,omitempty" toml:"federationKey,omitempty"`
	FederationShareable bool `json:"federationShareable,omitempty" yaml:"federationShareable,omitempty" toml:"federationShareable,omitempty"`

	// Resolvers writes a stub module per query and mutation (never
	// overwriting an existing one) and a resolvers.ts map of them.
	Resolvers bool `json:"resolvers,omitempty" yaml:"resolvers,omitempty" toml:"resolvers,omitempty"`

	// StubTemplate is a file holding the resolver stub template.
	// Default: graphql.DefaultStubTemplate
	StubTemplate string `json:"stubTemplate,omitempty" yaml:"stubTemplate,omitempty" toml:"stubTemplate,omitempty" validate:"omitempty,file"`
}

// IdentifierConfig configures the identifiers flavor.
type IdentifierConfig struct {
	// MustExtend names the ancestor a record needs to get an identifier.
	MustExtend string `json:"mustExtend" yaml:"mustExtend" toml:"mustExtend" validate:"required"`

	// Base is the module exporting the base identifier class and parser:
	// a file path, relative to the configuration, or a package name.
	Base string `json:"base" yaml:"base" toml:"base" validate:"required"`

	// BaseName is the base class. Default: "BaseIdentifier"
	BaseName string `json:"baseName,omitempty" yaml:"baseName,omitempty" toml:"baseName,omitempty"`

	// Parser is the class exposing id(string). Default: "Parser"
	Parser string `json:"parser,omitempty" yaml:"parser,omitempty" toml:"parser,omitempty"`
}

var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(validateConfig, Config{})
	return v
}()

// validateConfig checks constraints spanning fields.
func validateConfig(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(Config)
	if slices.Contains(cfg.Flavors, FlavorIdentifiers) && cfg.Identifiers == nil {
		sl.ReportError(cfg.Identifiers, "identifiers", "Identifiers", "required_with_identifiers", "")
	}
	if cfg.GraphQL == nil && len(cfg.Flavors) == 0 {
		sl.ReportError(cfg.Flavors, "flavors", "Flavors", "nothing_to_generate", "")
	}
}

// LoadConfig reads a configuration file. The format follows the extension:
// .yaml or .yml, .toml, or .json. Unknown keys are rejected. Relative
// paths are resolved against the file's directory, defaults are applied
// and the result is validated.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&cfg)
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	default:
		return nil, errors.WithHint(
			errors.Newf("unsupported config format %q", ext),
			"use a .yaml, .toml or .json file")
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults(dir)
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return &cfg, nil
}

// ApplyDefaults fills unset fields and resolves relative paths against
// baseDir (the working directory when empty). It is idempotent.
func (c *Config) ApplyDefaults(baseDir string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		if baseDir != "" {
			return filepath.Join(baseDir, p)
		}
		if abs, err := filepath.Abs(p); err == nil {
			return abs
		}
		return p
	}

	c.Source = resolve(c.Source)
	c.TSConfig = resolve(c.TSConfig)
	if c.Target == "" && c.Source != "" {
		c.Target = filepath.Join(c.Source, "..", "__generated__")
	}
	c.Target = resolve(c.Target)
	if c.Concurrency == 0 {
		c.Concurrency = runtime.GOMAXPROCS(0)
	}

	if g := c.GraphQL; g != nil {
		if g.Dir == "" {
			g.Dir = "graphql"
		}
		g.StubTemplate = resolve(g.StubTemplate)
	}

	if id := c.Identifiers; id != nil {
		if isFilePath(id.Base) {
			id.Base = resolve(id.Base)
		}
		if id.BaseName == "" {
			id.BaseName = "BaseIdentifier"
		}
		if id.Parser == "" {
			id.Parser = "Parser"
		}
	}
}

// isFilePath reports whether a module reference names a file rather than
// a package.
func isFilePath(ref string) bool {
	return filepath.IsAbs(ref) || strings.HasPrefix(ref, "./") || strings.HasPrefix(ref, "../") ||
		strings.HasSuffix(ref, ".ts")
}

// Validate checks the configuration. Defaults should be applied first.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return err
	}
	messages := make([]string, 0, len(valErrs))
	for _, ve := range valErrs {
		field := strings.TrimPrefix(ve.Namespace(), "Config.")
		messages = append(messages, field+": "+formatValidationError(ve))
	}
	return errors.Newf("invalid configuration: %s", strings.Join(messages, "; "))
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "dir":
		return "must be an existing directory"
	case "file":
		return "must be an existing file"
	case "gte":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	case "unique":
		return "must not contain duplicates"
	case "nefield":
		return fmt.Sprintf("must differ from %s", ve.Param())
	case "required_with_identifiers":
		return "required by the identifiers flavor"
	case "nothing_to_generate":
		return "enable graphql or at least one flavor"
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
