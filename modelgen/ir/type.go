package ir

import "strings"

// TypeKind identifies the variant of a Type.
type TypeKind int

const (
	KindPrimitive     TypeKind = iota // string, number or boolean keyword
	KindReference                     // named reference, optionally with type arguments or an enum member
	KindTypeParameter                 // generic parameter declared by a record
	KindArray                         // T[]
	KindTuple                         // [A, B] or [A, ...B[]]
	KindRest                          // ...T inside a tuple
	KindUnion                         // A | B
	KindEnumMember                    // member of an enum declaration
	KindUnknown                       // unrepresentable syntax
	KindSupplied                      // generic binding supplied by an extending structure
)

// String returns the string representation of the type kind.
func (k TypeKind) String() string {
	switch k {
	case KindPrimitive:
		return "Primitive"
	case KindReference:
		return "Reference"
	case KindTypeParameter:
		return "TypeParameter"
	case KindArray:
		return "Array"
	case KindTuple:
		return "Tuple"
	case KindRest:
		return "Rest"
	case KindUnion:
		return "Union"
	case KindEnumMember:
		return "EnumMember"
	case KindSupplied:
		return "Supplied"
	default:
		return "Unknown"
	}
}

// Type is a node of the IR type tree. The set of implementations is closed;
// projections switch over the concrete types after calling Resolve.
type Type interface {
	// Kind returns the variant tag.
	Kind() TypeKind

	// Raw returns the declared text used for naming and diagnostics.
	// For references it is the name without type arguments.
	Raw() string

	sealed()
}

// PrimitiveKind enumerates the supported keyword types.
type PrimitiveKind int

const (
	PrimitiveString PrimitiveKind = iota
	PrimitiveNumber
	PrimitiveBoolean
)

// String returns the TypeScript keyword.
func (k PrimitiveKind) String() string {
	switch k {
	case PrimitiveString:
		return "string"
	case PrimitiveNumber:
		return "number"
	case PrimitiveBoolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// ParsePrimitive maps a keyword to its PrimitiveKind.
func ParsePrimitive(keyword string) (PrimitiveKind, bool) {
	switch keyword {
	case "string":
		return PrimitiveString, true
	case "number":
		return PrimitiveNumber, true
	case "boolean":
		return PrimitiveBoolean, true
	}
	return 0, false
}

// Primitive is a keyword type.
type Primitive struct {
	Primitive PrimitiveKind
}

func (*Primitive) Kind() TypeKind { return KindPrimitive }
func (t *Primitive) Raw() string  { return t.Primitive.String() }
func (*Primitive) sealed()        {}

// String, Number and Boolean return primitive types.
func String() *Primitive  { return &Primitive{Primitive: PrimitiveString} }
func Number() *Primitive  { return &Primitive{Primitive: PrimitiveNumber} }
func Boolean() *Primitive { return &Primitive{Primitive: PrimitiveBoolean} }

// Reference is a reference to a named declaration.
//
// Member is set for a qualified enum member reference such as
// Status.ACTIVE, in which case Name is the enum and Member the member.
// Arguments holds the type arguments of a generic reference.
type Reference struct {
	Name      string
	Arguments []Type
	Member    string

	// Path is the resolved file (without extension) the referenced
	// declaration lives in, when known.
	Path string
}

func (*Reference) Kind() TypeKind { return KindReference }
func (t *Reference) Raw() string  { return t.Name }
func (*Reference) sealed()        {}

// Ref returns a reference to a named type.
func Ref(name string, args ...Type) *Reference {
	return &Reference{Name: name, Arguments: args}
}

// MemberRef returns a narrowed enum member reference.
func MemberRef(enum, member string) *Reference {
	return &Reference{Name: enum, Member: member}
}

// TypeParameter is a generic parameter declared on a record, with its
// optional default and constraint.
type TypeParameter struct {
	Name       string
	Default    Type
	Constraint Type
}

func (*TypeParameter) Kind() TypeKind { return KindTypeParameter }
func (t *TypeParameter) Raw() string  { return t.Name }
func (*TypeParameter) sealed()        {}

// Fallback returns the default if present, otherwise the constraint.
func (t *TypeParameter) Fallback() Type {
	if t.Default != nil {
		return t.Default
	}
	return t.Constraint
}

// Array is an array of Element.
type Array struct {
	Element Type
}

func (*Array) Kind() TypeKind { return KindArray }
func (t *Array) Raw() string  { return rawOf(t.Element) + "[]" }
func (*Array) sealed()        {}

// ArrayOf returns an array type.
func ArrayOf(element Type) *Array { return &Array{Element: element} }

// Tuple is a fixed sequence of element types. The last element may be a
// Rest.
type Tuple struct {
	Elements []Type
}

func (*Tuple) Kind() TypeKind { return KindTuple }
func (t *Tuple) Raw() string  { return "[" + joinRaw(t.Elements, ", ") + "]" }
func (*Tuple) sealed()        {}

// RestElement returns the required leading element and the rest payload
// when the tuple has the shape [A, ...B].
func (t *Tuple) RestElement() (required Type, rest *Rest, ok bool) {
	if len(t.Elements) < 2 {
		return nil, nil, false
	}
	rest, ok = t.Elements[1].(*Rest)
	if !ok || rest.Element == nil {
		return nil, nil, false
	}
	return t.Elements[0], rest, true
}

// Rest is a rest element (...T) inside a tuple.
type Rest struct {
	Element Type
}

func (*Rest) Kind() TypeKind { return KindRest }
func (t *Rest) Raw() string  { return "..." + rawOf(t.Element) }
func (*Rest) sealed()        {}

// Union is a union of member types, in source order.
type Union struct {
	Members []Type
}

func (*Union) Kind() TypeKind { return KindUnion }
func (t *Union) Raw() string  { return joinRaw(t.Members, " | ") }
func (*Union) sealed()        {}

// EnumValue is the literal initializer of an enum member.
type EnumValue struct {
	Raw     string `json:"raw"`
	Numeric bool   `json:"numeric"`
}

// EnumMember types the properties of an enum structure. Value is nil when
// the member has no initializer.
type EnumMember struct {
	Value *EnumValue
}

func (*EnumMember) Kind() TypeKind { return KindEnumMember }
func (*EnumMember) Raw() string    { return "enum-member" }
func (*EnumMember) sealed()        {}

// Unknown is a type expression the IR cannot represent. It is a valid
// terminal; projections degrade it to a sentinel and report a warning.
type Unknown struct {
	// Text is the source text of the expression.
	Text string

	// Syntax is the front end's node kind, used in diagnostics.
	Syntax string
}

func (*Unknown) Kind() TypeKind { return KindUnknown }
func (*Unknown) Raw() string    { return "unknown" }
func (*Unknown) sealed()        {}

// Supplied wraps a declared type with the concrete type an extending
// structure supplies for it. Projections must use Value instead of
// Declared; Resolve does that.
type Supplied struct {
	Declared Type
	Value    Type
}

func (*Supplied) Kind() TypeKind { return KindSupplied }
func (t *Supplied) Raw() string  { return rawOf(t.Declared) }
func (*Supplied) sealed()        {}

// Resolve follows supplied bindings to the effective type.
func Resolve(t Type) Type {
	for {
		s, ok := t.(*Supplied)
		if !ok || s.Value == nil {
			return t
		}
		t = s.Value
	}
}

func rawOf(t Type) string {
	if t == nil {
		return ""
	}
	return t.Raw()
}

func joinRaw(types []Type, sep string) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = rawOf(t)
	}
	return strings.Join(parts, sep)
}
