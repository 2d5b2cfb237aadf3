package typescript

import (
	"path/filepath"

	"github.com/kishek/ts-model-toolkit/modelgen/ir"
)

// Importer adds imports to a generated file for names the model file
// imports. Relative model imports are re-pointed so they resolve from
// the generated file.
type Importer struct {
	File *File

	// Imports are the imports visible to the structure, usually
	// ir.AllImports. Relative paths are relative to ModelPath.
	Imports []ir.Import

	// ModelPath is the model file the structure is declared in.
	ModelPath string

	// OutputPath is the generated file.
	OutputPath string
}

// Lookup returns the model import declaring name.
func (im *Importer) Lookup(name string) (ir.Import, bool) {
	return ir.FindImport(im.Imports, name)
}

// Type imports name from the module the model file imports it from. It
// reports whether an import was found.
func (im *Importer) Type(name string) bool {
	imp, ok := im.Lookup(name)
	if !ok {
		return false
	}
	im.File.Import(name, ModuleSpecifier(im.OutputPath, ResolveImport(imp, im.ModelPath)))
	return true
}

// Companion imports symbol from the generated companion module of the
// module declaring name, for example the guard module next to a model.
// pkg maps a package import; suffix is appended to a relative one, which
// is resolved from the model file as generated files mirror its layout.
func (im *Importer) Companion(name, symbol, suffix string, pkg func(string) string) bool {
	imp, ok := im.Lookup(name)
	if !ok {
		return false
	}
	target := ResolveImport(imp, im.ModelPath)
	var spec string
	switch {
	case imp.IsExternal():
		spec = pkg(imp.Path)
	case filepath.IsAbs(target):
		spec = ModuleSpecifier(im.ModelPath, target) + suffix
	default:
		spec = imp.Path + suffix
	}
	im.File.Import(symbol, spec)
	return true
}

// Model imports the structure itself from its model file.
func (im *Importer) Model(name string) {
	im.File.Import(name, ModuleSpecifier(im.OutputPath, im.ModelPath))
}
