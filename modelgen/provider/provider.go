// Package provider is the TypeScript front end. It parses model files with
// tree-sitter and exposes the syntax-level declarations the parser needs:
// imports, exported declarations, documentation, members, type parameters,
// heritage clauses and type nodes.
package provider

import (
	"strings"

	"github.com/kishek/ts-model-toolkit/modelgen/ir"
)

// DeclKind is the kind of a top-level declaration.
type DeclKind int

const (
	DeclOther DeclKind = iota // any declaration the generators cannot model
	DeclEnum
	DeclInterface
	DeclTypeAlias
)

// String returns the string representation of the declaration kind.
func (k DeclKind) String() string {
	switch k {
	case DeclEnum:
		return "EnumDeclaration"
	case DeclInterface:
		return "InterfaceDeclaration"
	case DeclTypeAlias:
		return "TypeAliasDeclaration"
	default:
		return "Other"
	}
}

// File is a parsed TypeScript source file.
type File struct {
	// Path is the absolute path of the file.
	Path string

	// Imports are the named imports of the file, keyed by their local name.
	Imports []ir.Import

	// Declarations are all top-level declarations in source order.
	Declarations []*Declaration

	// Exports are the exported declarations in source order.
	Exports []*Declaration

	// SyntaxErrors is true when tree-sitter recovered from errors.
	SyntaxErrors bool
}

// Lookup returns the top-level declaration with the given name.
func (f *File) Lookup(name string) *Declaration {
	for _, d := range f.Declarations {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// Export returns the exported declaration with the given name.
func (f *File) Export(name string) *Declaration {
	for _, d := range f.Exports {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// Declaration is a top-level declaration.
type Declaration struct {
	Kind DeclKind

	// Syntax is the tree-sitter node type, used to name unsupported kinds.
	Syntax string

	Name     string
	Doc      *Doc
	Exported bool

	TypeParameters []TypeParam
	Extends        []Heritage

	// Members are the property signatures of an interface or the members
	// of an enum. Method and index signatures are not included.
	Members []Member

	// Value is the right-hand side of a type alias.
	Value *TypeNode

	Pos  ir.Source
	File *File
}

// TypeParam is a generic parameter declaration.
type TypeParam struct {
	Name       string
	Constraint *TypeNode
	Default    *TypeNode
}

// Heritage is one entry of an interface extends clause.
type Heritage struct {
	// Name is the parent name as written, qualified names included.
	Name      string
	Arguments []*TypeNode
	Text      string
}

// Member is a property signature or an enum member.
type Member struct {
	Name     string
	Optional bool

	// Type is nil for enum members and for untyped properties.
	Type *TypeNode

	// Initializer is the source text of an enum member's value.
	Initializer string

	// NumericInitializer is true when the initializer is a number literal.
	NumericInitializer bool

	Doc *Doc
	Pos ir.Source
}

// NodeKind classifies a TypeNode.
type NodeKind int

const (
	NodeOther      NodeKind = iota
	NodePredefined          // string, number, boolean, any, ...
	NodeNamed               // Invoice
	NodeQualified           // Outer.Member
	NodeGeneric             // Name<A, B>
	NodeArray               // T[]
	NodeTuple               // [A, B]
	NodeRest                // ...T
	NodeUnion               // A | B
	NodeIndexed             // T['key']
	NodeLiteral             // 'a', 1, true
)

var nodeKindNames = [...]string{
	NodeOther:      "Other",
	NodePredefined: "Predefined",
	NodeNamed:      "Named",
	NodeQualified:  "Qualified",
	NodeGeneric:    "Generic",
	NodeArray:      "Array",
	NodeTuple:      "Tuple",
	NodeRest:       "Rest",
	NodeUnion:      "Union",
	NodeIndexed:    "Indexed",
	NodeLiteral:    "Literal",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return "Other"
}

// TypeNode is a syntax-level type expression.
//
// Children holds the element of an array or rest node, the elements of a
// tuple, the members of a (flattened) union, the arguments of a generic
// reference and the object type of an indexed access.
type TypeNode struct {
	Kind NodeKind

	// Syntax is the tree-sitter node type.
	Syntax string

	// Text is the source text of the node.
	Text string

	// Name is the referenced name for named, qualified and generic nodes.
	// For generic nodes it is the text before the type arguments.
	Name string

	// Qualifier is the left side of a qualified name.
	Qualifier string

	// Index is the index expression of an indexed access, quotes included.
	Index string

	Children []*TypeNode
}

// Element returns the first child, or nil.
func (n *TypeNode) Element() *TypeNode {
	if n == nil || len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

// IndexKey returns the index of an indexed access with quotes removed.
func (n *TypeNode) IndexKey() string {
	return strings.Trim(n.Index, `'"`+"`")
}
