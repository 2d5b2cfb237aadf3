// Package testfixtures provides TypeScript model projects for tests.
//
// Each project is a txtar archive under testdata. Write materializes one
// into a temporary directory.
package testfixtures

import (
	"embed"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/tools/txtar"
)

//go:embed testdata/*.txtar
var archives embed.FS

const (
	// Basic is the invoicing example: a tsconfig.json plus a model under
	// src/model with a core/ directory of generic relationships.
	Basic = "basic"

	// Features has one file per modelling feature, rooted at the archive
	// root, plus files the strict parse rejects.
	Features = "features"
)

// Archive returns the parsed archive with the given name.
func Archive(name string) (*txtar.Archive, error) {
	data, err := archives.ReadFile("testdata/" + name + ".txtar")
	if err != nil {
		return nil, err
	}
	return txtar.Parse(data), nil
}

// Write extracts the named archive into a fresh temporary directory and
// returns the directory.
func Write(t testing.TB, name string) string {
	t.Helper()
	ar, err := Archive(name)
	if err != nil {
		t.Fatalf("load fixture %s: %v", name, err)
	}
	dir := t.TempDir()
	for _, f := range ar.Files {
		path := filepath.Join(dir, filepath.FromSlash(f.Name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			t.Fatalf("write %s: %v", f.Name, err)
		}
	}
	// Resolve symlinks (macOS /var -> /private/var) so paths compare equal
	// to what the loader produces.
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}
	return dir
}

// Files returns the names of the files in the named archive.
func Files(t testing.TB, name string) []string {
	t.Helper()
	ar, err := Archive(name)
	if err != nil {
		t.Fatalf("load fixture %s: %v", name, err)
	}
	names := make([]string, len(ar.Files))
	for i, f := range ar.Files {
		names[i] = f.Name
	}
	return names
}
