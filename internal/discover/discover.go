// Package discover finds the TypeScript model files of a project.
//
// With a tsconfig.json the project's declared file set is used: "files",
// "include" and "exclude" are evaluated against the directory holding the
// tsconfig. Without one, every .ts file under the source directory is a
// candidate. In both cases declaration files, tests and files outside the
// source directory are left out.
package discover

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	"github.com/tailscale/hujson"
)

// TSConfig is the part of tsconfig.json that selects source files.
type TSConfig struct {
	Files           []string        `json:"files"`
	Include         []string        `json:"include"`
	Exclude         []string        `json:"exclude"`
	CompilerOptions CompilerOptions `json:"compilerOptions"`

	// Dir is the directory containing the tsconfig.
	Dir string `json:"-"`
}

// CompilerOptions holds the compiler options that affect discovery.
type CompilerOptions struct {
	OutDir  string `json:"outDir"`
	RootDir string `json:"rootDir"`
}

// defaultExclude mirrors the TypeScript compiler's exclusions when a
// tsconfig declares none.
var defaultExclude = []string{"node_modules", "bower_components", "jspm_packages"}

// skippedDirs are never walked.
var skippedDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
}

// LoadTSConfig reads a tsconfig.json. Comments and trailing commas are
// accepted.
func LoadTSConfig(path string) (*TSConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read tsconfig")
	}
	data, err = hujson.Standardize(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse tsconfig %s", path)
	}
	var cfg TSConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parse tsconfig %s", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	cfg.Dir = filepath.Dir(abs)
	return &cfg, nil
}

// Options selects the files to discover.
type Options struct {
	// Source is the model directory. Only files below it are returned.
	Source string

	// TSConfig is an optional tsconfig.json.
	TSConfig string
}

// Files returns the absolute paths of the model files, sorted.
func Files(ctx context.Context, opts Options) ([]string, error) {
	if opts.Source == "" {
		return nil, errors.New("discover: source directory is required")
	}
	source, err := filepath.Abs(opts.Source)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(source)
	if err != nil {
		return nil, errors.Wrap(err, "discover: source directory")
	}
	if !info.IsDir() {
		return nil, errors.Newf("discover: %s is not a directory", source)
	}

	match := func(string) bool { return true }
	root := source
	if opts.TSConfig != "" {
		cfg, err := LoadTSConfig(opts.TSConfig)
		if err != nil {
			return nil, err
		}
		match = cfg.matcher()
		root = cfg.Dir
		if !within(root, source) {
			// The source directory is outside the tsconfig project; only
			// explicitly listed files can match.
			root = source
		}
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (skippedDirs[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsModelFile(path) || !within(source, path) || !match(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "discover: walk")
	}
	slices.Sort(files)
	return files, nil
}

// IsModelFile reports whether path names a TypeScript module that may
// declare model structures: a .ts file that is neither a declaration file
// nor a test.
func IsModelFile(path string) bool {
	name := filepath.Base(path)
	if !strings.HasSuffix(name, ".ts") || strings.HasSuffix(name, ".d.ts") {
		return false
	}
	return !strings.HasSuffix(name, ".test.ts") && !strings.HasSuffix(name, ".spec.ts")
}

// matcher returns a predicate reporting whether an absolute path belongs
// to the project.
func (c *TSConfig) matcher() func(string) bool {
	listed := make(map[string]bool, len(c.Files))
	for _, f := range c.Files {
		listed[filepath.Join(c.Dir, filepath.FromSlash(f))] = true
	}
	include := c.Include
	if len(include) == 0 && len(c.Files) == 0 {
		include = []string{"**/*"}
	}
	exclude := c.Exclude
	if exclude == nil {
		exclude = slices.Clone(defaultExclude)
		if c.CompilerOptions.OutDir != "" {
			exclude = append(exclude, c.CompilerOptions.OutDir)
		}
	}
	include = patterns(include)
	exclude = patterns(exclude)

	return func(path string) bool {
		if listed[path] {
			return true
		}
		rel, err := filepath.Rel(c.Dir, path)
		if err != nil {
			return false
		}
		rel = filepath.ToSlash(rel)
		return matchAny(include, rel) && !matchAny(exclude, rel)
	}
}

// patterns normalizes tsconfig globs: a leading "./" is dropped and a
// pattern naming a directory matches everything below it.
func patterns(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		p = strings.TrimPrefix(filepath.ToSlash(p), "./")
		p = strings.TrimSuffix(p, "/")
		if p == "" {
			continue
		}
		last := p[strings.LastIndex(p, "/")+1:]
		if !strings.ContainsAny(last, "*?.") {
			p += "/**/*"
		}
		out = append(out, p)
	}
	return out
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// within reports whether path is root or lexically below it.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel))
}
