package ir

// StructureKind identifies the declaration a Structure was parsed from.
type StructureKind int

const (
	StructureEnum       StructureKind = iota // enum declaration
	StructureRecord                          // interface declaration
	StructureUnionAlias                      // type alias declared as a union
)

// String returns the string representation of the structure kind.
func (k StructureKind) String() string {
	switch k {
	case StructureEnum:
		return "enum"
	case StructureRecord:
		return "interface"
	case StructureUnionAlias:
		return "typeAlias"
	default:
		return "unknown"
	}
}

// Structure is a parsed top-level declaration.
type Structure struct {
	// Name is the declared name.
	Name string

	// Kind is the declaration kind.
	Kind StructureKind

	// Comment is the documentation of the declaration, flattened to one line.
	Comment string

	// Tags are the documentation block tags (@input, @returns, ...).
	Tags Tags

	// Properties are the declared properties (records) or members (enums).
	// Inherited properties are not included; see AllProperties.
	Properties []Property

	// Aliases are the members of a union alias.
	Aliases []Type

	// Imports are the named imports of the declaring file.
	Imports []Import

	// Extends are the parents of a record, each with the type arguments this
	// structure supplies to it.
	Extends []Extension

	// TypeParameters are the generic parameters declared by a record.
	TypeParameters []*TypeParameter

	// TypeArguments lists, per parent, the type arguments supplied in the
	// extends clause. Parents extended without arguments are omitted.
	TypeArguments []Heritage

	// Path is the absolute path of the declaring file.
	Path string

	// Pos is the location of the declaration.
	Pos Source

	// IsBase is true when another structure in the project extends this one.
	// It is set by the project walker after all files are parsed.
	IsBase bool
}

// Property is a property of a record or a member of an enum.
type Property struct {
	Name     string
	Comment  string
	Type     Type
	Required bool

	// Imports holds the file import the property's type refers to, if any.
	Imports []Import
	Tags    Tags
}

// Heritage records the type arguments a structure passes to a parent.
type Heritage struct {
	Name      string `json:"name"`
	Arguments []Type `json:"typeArguments"`
}

// Extension is an inheritance edge. Base is the parent as declared, shared
// between every structure that extends it; Arguments are the type
// arguments this edge supplies. Resolve materializes the substituted
// parent for this edge.
type Extension struct {
	Base      *Structure
	Arguments []Type
}

// Name returns the parent's name.
func (e Extension) Name() string {
	if e.Base == nil {
		return ""
	}
	return e.Base.Name
}

// Resolve returns the parent with this edge's type arguments substituted
// into its properties. The shared Base is never modified.
func (e Extension) Resolve() *Structure {
	if e.Base == nil {
		return nil
	}
	return Substitute(e.Base, e.Arguments)
}

// Parents returns the resolved direct parents of s.
func (s *Structure) Parents() []*Structure {
	parents := make([]*Structure, 0, len(s.Extends))
	for _, ext := range s.Extends {
		if p := ext.Resolve(); p != nil {
			parents = append(parents, p)
		}
	}
	return parents
}

// Property returns the declared property with the given name.
func (s *Structure) Property(name string) (Property, bool) {
	for _, p := range s.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// IsLeaf reports whether no other structure extends s.
func (s *Structure) IsLeaf() bool {
	return !s.IsBase
}

// Location returns a pointer to the declaration's position for warnings.
func (s *Structure) Location() *Source {
	if s.Pos.IsZero() {
		return nil
	}
	pos := s.Pos
	return &pos
}
