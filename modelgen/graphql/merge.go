package graphql

import (
	"bytes"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
)

// ErrSchemaConflict is returned by Merge when two documents declare the
// same name incompatibly.
var ErrSchemaConflict = errors.New("conflicting schema definitions")

// Merge combines documents into one. Definitions with the same name are
// merged: fields, interfaces, union members, directives and enum values
// are unioned. Declaring a name with two kinds, or a field with two
// types, is a conflict. The result is sorted by name and shares no
// definitions with the inputs.
func Merge(docs ...*ast.SchemaDocument) (*ast.SchemaDocument, error) {
	out := &ast.SchemaDocument{}
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		for _, def := range doc.Definitions {
			if existing := out.Definitions.ForName(def.Name); existing != nil {
				if err := mergeDefinition(existing, def); err != nil {
					return nil, err
				}
				continue
			}
			out.Definitions = append(out.Definitions, cloneDefinition(def))
		}
		for _, dir := range doc.Directives {
			if out.Directives.ForName(dir.Name) == nil {
				out.Directives = append(out.Directives, dir)
			}
		}
	}
	slices.SortFunc(out.Definitions, func(a, b *ast.Definition) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

func cloneDefinition(def *ast.Definition) *ast.Definition {
	out := *def
	out.Interfaces = slices.Clone(def.Interfaces)
	out.Types = slices.Clone(def.Types)
	out.Directives = slices.Clone(def.Directives)
	out.EnumValues = slices.Clone(def.EnumValues)
	out.Fields = make(ast.FieldList, len(def.Fields))
	for i, f := range def.Fields {
		field := *f
		field.Directives = slices.Clone(f.Directives)
		out.Fields[i] = &field
	}
	return &out
}

// mergeDefinition merges src into dst.
func mergeDefinition(dst, src *ast.Definition) error {
	if dst.Kind != src.Kind {
		return errors.Wrapf(ErrSchemaConflict, "%s declared as %s and %s", dst.Name, dst.Kind, src.Kind)
	}
	if dst.Description == "" {
		dst.Description = src.Description
	}
	for _, name := range src.Interfaces {
		if !slices.Contains(dst.Interfaces, name) {
			dst.Interfaces = append(dst.Interfaces, name)
		}
	}
	for _, name := range src.Types {
		if !slices.Contains(dst.Types, name) {
			dst.Types = append(dst.Types, name)
		}
	}
	dst.Directives = mergeDirectives(dst.Directives, src.Directives)
	for _, v := range src.EnumValues {
		if dst.EnumValues.ForName(v.Name) == nil {
			dst.EnumValues = append(dst.EnumValues, v)
		}
	}

	for _, f := range src.Fields {
		existing := dst.Fields.ForName(f.Name)
		if existing == nil {
			field := *f
			field.Directives = slices.Clone(f.Directives)
			dst.Fields = append(dst.Fields, &field)
			continue
		}
		if existing.Type.String() != f.Type.String() {
			return errors.Wrapf(ErrSchemaConflict, "field %s.%s declared as %s and %s",
				dst.Name, f.Name, existing.Type, f.Type)
		}
		if existing.Description == "" {
			existing.Description = f.Description
		}
		existing.Directives = mergeDirectives(existing.Directives, f.Directives)
	}
	return nil
}

func mergeDirectives(dst, src ast.DirectiveList) ast.DirectiveList {
	for _, d := range src {
		if dst.ForName(d.Name) == nil {
			dst = append(dst, d)
		}
	}
	return dst
}

// Format renders a schema document as SDL.
func Format(doc *ast.SchemaDocument) string {
	var buf bytes.Buffer
	formatter.NewFormatter(&buf).FormatSchemaDocument(doc)
	return buf.String()
}
