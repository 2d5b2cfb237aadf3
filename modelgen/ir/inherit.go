package ir

import (
	"path/filepath"
)

// Substitute binds args to base's type parameters by position and returns a
// copy of base whose properties carry the bindings as Supplied types.
//
// A binding applies to a property whose type is the parameter itself, or to
// the direct elements of an aggregate (array, tuple, rest, union) property
// type. Deeper nesting is not substituted. Extra parameters stay unbound and
// extra arguments are ignored.
func Substitute(base *Structure, args []Type) *Structure {
	out := base.clone()
	for i, param := range base.TypeParameters {
		if i >= len(args) || args[i] == nil {
			break
		}
		arg := args[i]
		for j := range out.Properties {
			prop := &out.Properties[j]
			if rawOf(prop.Type) == param.Name {
				prop.Type = &Supplied{Declared: prop.Type, Value: arg}
				continue
			}
			prop.Type = bindElements(prop.Type, param.Name, arg)
		}
	}
	return out
}

// bindElements wraps the direct elements of an aggregate named name.
func bindElements(t Type, name string, arg Type) Type {
	bind := func(e Type) Type {
		if rawOf(e) == name {
			return &Supplied{Declared: e, Value: arg}
		}
		return e
	}
	switch t := t.(type) {
	case *Array:
		return &Array{Element: bind(t.Element)}
	case *Rest:
		return &Rest{Element: bind(t.Element)}
	case *Tuple:
		elems := make([]Type, len(t.Elements))
		for i, e := range t.Elements {
			elems[i] = bind(e)
		}
		return &Tuple{Elements: elems}
	case *Union:
		members := make([]Type, len(t.Members))
		for i, m := range t.Members {
			members[i] = bind(m)
		}
		return &Union{Members: members}
	}
	return t
}

// AllProperties returns the properties of s including inherited ones.
// Ancestor properties come first. A property redeclared by a descendant
// replaces the ancestor's version.
func AllProperties(s *Structure) []Property {
	return allProperties(s, nil)
}

func allProperties(s *Structure, overridden map[string]bool) []Property {
	own := make([]Property, 0, len(s.Properties))
	next := make(map[string]bool, len(overridden)+len(s.Properties))
	for name := range overridden {
		next[name] = true
	}
	for _, p := range s.Properties {
		if !overridden[p.Name] {
			own = append(own, p)
		}
		next[p.Name] = true
	}

	var out []Property
	for _, parent := range s.Parents() {
		out = append(out, allProperties(parent, next)...)
	}
	return append(out, own...)
}

// AllExtendingStructures returns every ancestor of s, resolved for the
// edge it is reached through. Deeper ancestors come first.
func AllExtendingStructures(s *Structure) []*Structure {
	parents := s.Parents()
	var out []*Structure
	for _, p := range parents {
		out = append(out, AllExtendingStructures(p)...)
	}
	return append(out, parents...)
}

// Extends reports whether name appears anywhere in the ancestor chain of s.
func Extends(s *Structure, name string) bool {
	for _, ext := range s.Extends {
		if ext.Base == nil {
			continue
		}
		if ext.Base.Name == name || Extends(ext.Base, name) {
			return true
		}
	}
	return false
}

// AllImports returns the imports of s and of its ancestors. Ancestor
// imports already declared by s are dropped; the remaining relative
// ancestor imports are rewritten to absolute paths so they stay valid from
// s's file. When the parent itself comes from another package, its
// relative imports are pointed at that package.
func AllImports(s *Structure) []Import {
	var out []Import
	for _, parent := range s.Parents() {
		parentImport, fromPackage := FindImport(s.Imports, parent.Name)
		fromPackage = fromPackage && parentImport.IsExternal()

		var rewritten []Import
		for _, imp := range parent.Imports {
			if _, dup := FindImport(s.Imports, imp.Name); dup {
				continue
			}
			switch {
			case imp.IsExternal():
				rewritten = append(rewritten, imp)
			case fromPackage:
				rewritten = append(rewritten, Import{Name: imp.Name, Path: parentImport.Path})
			default:
				rewritten = append(rewritten, Import{
					Name: imp.Name,
					Path: filepath.Join(filepath.Dir(parent.Path), imp.Path),
				})
			}
		}
		view := *parent
		view.Imports = rewritten
		out = append(out, AllImports(&view)...)
	}
	return append(out, s.Imports...)
}

// clone returns a copy of s that shares no mutable state with it.
func (s *Structure) clone() *Structure {
	out := *s
	out.Tags = append(Tags(nil), s.Tags...)
	out.Imports = append([]Import(nil), s.Imports...)
	out.Extends = append([]Extension(nil), s.Extends...)
	out.Properties = make([]Property, len(s.Properties))
	for i, p := range s.Properties {
		p.Type = CloneType(p.Type)
		p.Imports = append([]Import(nil), p.Imports...)
		p.Tags = append(Tags(nil), p.Tags...)
		out.Properties[i] = p
	}
	out.Aliases = cloneTypes(s.Aliases)
	out.TypeParameters = make([]*TypeParameter, len(s.TypeParameters))
	for i, tp := range s.TypeParameters {
		out.TypeParameters[i] = CloneType(tp).(*TypeParameter)
	}
	out.TypeArguments = make([]Heritage, len(s.TypeArguments))
	for i, h := range s.TypeArguments {
		out.TypeArguments[i] = Heritage{Name: h.Name, Arguments: cloneTypes(h.Arguments)}
	}
	return &out
}

// CloneType returns a deep copy of t.
func CloneType(t Type) Type {
	switch t := t.(type) {
	case nil:
		return nil
	case *Primitive:
		c := *t
		return &c
	case *Reference:
		c := *t
		c.Arguments = cloneTypes(t.Arguments)
		return &c
	case *TypeParameter:
		return &TypeParameter{Name: t.Name, Default: CloneType(t.Default), Constraint: CloneType(t.Constraint)}
	case *Array:
		return &Array{Element: CloneType(t.Element)}
	case *Tuple:
		return &Tuple{Elements: cloneTypes(t.Elements)}
	case *Rest:
		return &Rest{Element: CloneType(t.Element)}
	case *Union:
		return &Union{Members: cloneTypes(t.Members)}
	case *EnumMember:
		if t.Value == nil {
			return &EnumMember{}
		}
		v := *t.Value
		return &EnumMember{Value: &v}
	case *Unknown:
		c := *t
		return &c
	case *Supplied:
		return &Supplied{Declared: CloneType(t.Declared), Value: CloneType(t.Value)}
	}
	panic("ir: unhandled type " + t.Kind().String())
}

func cloneTypes(types []Type) []Type {
	if types == nil {
		return nil
	}
	out := make([]Type, len(types))
	for i, t := range types {
		out[i] = CloneType(t)
	}
	return out
}
