package typescript

import (
	"path/filepath"
	"strings"

	"github.com/kishek/ts-model-toolkit/modelgen/ir"
)

// ModuleSpecifier returns the specifier that imports target from the file
// at from: a "./" or "../" path without the .ts extension. A target that
// is not an absolute path is a package specifier and is returned as is.
func ModuleSpecifier(from, target string) string {
	if !filepath.IsAbs(target) {
		return target
	}
	rel, err := filepath.Rel(filepath.Dir(from), target)
	if err != nil {
		return filepath.ToSlash(target)
	}
	rel = filepath.ToSlash(strings.TrimSuffix(rel, ".ts"))
	if rel != ".." && !strings.HasPrefix(rel, "./") && !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel
}

// ResolveImport returns the absolute path (without extension) of a
// relative import declared in the file at from. Package imports and
// imports already made absolute are returned unchanged.
func ResolveImport(imp ir.Import, from string) string {
	if strings.HasPrefix(imp.Path, "./") || strings.HasPrefix(imp.Path, "../") || imp.Path == "." || imp.Path == ".." {
		return filepath.Join(filepath.Dir(from), imp.Path)
	}
	return imp.Path
}
