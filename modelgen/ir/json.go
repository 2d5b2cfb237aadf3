package ir

import "github.com/goccy/go-json"

// JSON serialization support for IR types.
// Every type node includes a "kind" field for discrimination.

// MarshalJSON implements json.Marshaler for Primitive.
func (t *Primitive) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind string `json:"kind"`
		Raw  string `json:"raw"`
	}{
		Kind: "primitive",
		Raw:  t.Raw(),
	})
}

// MarshalJSON implements json.Marshaler for Reference.
func (t *Reference) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind          string `json:"kind"`
		Raw           string `json:"raw"`
		TypeArguments []Type `json:"typeArguments,omitempty"`
		Member        string `json:"member,omitempty"`
		Path          string `json:"path,omitempty"`
	}{
		Kind:          "reference",
		Raw:           t.Name,
		TypeArguments: t.Arguments,
		Member:        t.Member,
		Path:          t.Path,
	})
}

// MarshalJSON implements json.Marshaler for TypeParameter.
func (t *TypeParameter) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind            string `json:"kind"`
		Raw             string `json:"raw"`
		DefaultValue    Type   `json:"defaultValue,omitempty"`
		ConstraintValue Type   `json:"constraintValue,omitempty"`
	}{
		Kind:            "typeParameter",
		Raw:             t.Name,
		DefaultValue:    t.Default,
		ConstraintValue: t.Constraint,
	})
}

// MarshalJSON implements json.Marshaler for Array.
func (t *Array) MarshalJSON() ([]byte, error) {
	return marshalElements("array", t.Raw(), []Type{t.Element})
}

// MarshalJSON implements json.Marshaler for Tuple.
func (t *Tuple) MarshalJSON() ([]byte, error) {
	return marshalElements("tuple", t.Raw(), t.Elements)
}

// MarshalJSON implements json.Marshaler for Rest.
func (t *Rest) MarshalJSON() ([]byte, error) {
	return marshalElements("rest", t.Raw(), []Type{t.Element})
}

// MarshalJSON implements json.Marshaler for Union.
func (t *Union) MarshalJSON() ([]byte, error) {
	return marshalElements("union", t.Raw(), t.Members)
}

func marshalElements(kind, raw string, elements []Type) ([]byte, error) {
	return json.Marshal(&struct {
		Kind     string `json:"kind"`
		Raw      string `json:"raw"`
		Elements []Type `json:"elements"`
	}{
		Kind:     kind,
		Raw:      raw,
		Elements: elements,
	})
}

// MarshalJSON implements json.Marshaler for EnumMember.
func (t *EnumMember) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind         string     `json:"kind"`
		Raw          string     `json:"raw"`
		DefaultValue *EnumValue `json:"defaultValue,omitempty"`
	}{
		Kind:         "enumMember",
		Raw:          t.Raw(),
		DefaultValue: t.Value,
	})
}

// MarshalJSON implements json.Marshaler for Unknown.
func (t *Unknown) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind   string `json:"kind"`
		Raw    string `json:"raw"`
		Text   string `json:"text,omitempty"`
		Syntax string `json:"syntax,omitempty"`
	}{
		Kind:   "unknown",
		Raw:    t.Raw(),
		Text:   t.Text,
		Syntax: t.Syntax,
	})
}

// MarshalJSON implements json.Marshaler for Supplied. The declared type is
// emitted with the binding under "suppliedValue".
func (t *Supplied) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind          string `json:"kind"`
		Raw           string `json:"raw"`
		Declared      Type   `json:"declared"`
		SuppliedValue Type   `json:"suppliedValue"`
	}{
		Kind:          "supplied",
		Raw:           t.Raw(),
		Declared:      t.Declared,
		SuppliedValue: t.Value,
	})
}

// MarshalJSON implements json.Marshaler for Property.
func (p Property) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Name       string   `json:"name"`
		Comment    string   `json:"comment"`
		Type       Type     `json:"type"`
		IsRequired bool     `json:"isRequired"`
		Imports    []Import `json:"imports"`
		Tags       Tags     `json:"tags,omitempty"`
	}{
		Name:       p.Name,
		Comment:    p.Comment,
		Type:       p.Type,
		IsRequired: p.Required,
		Imports:    nonNil(p.Imports),
		Tags:       p.Tags,
	})
}

// MarshalJSON implements json.Marshaler for Structure. Parents are emitted
// resolved for this structure, as nested structures.
func (s *Structure) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Name                string           `json:"name"`
		Kind                string           `json:"type"`
		Comment             string           `json:"comment"`
		Tags                Tags             `json:"tags,omitempty"`
		Properties          []Property       `json:"properties"`
		TypeAliases         []Type           `json:"typeAliases,omitempty"`
		Imports             []Import         `json:"imports"`
		ExtendingStructures []*Structure     `json:"extendingStructures"`
		TypeParameters      []*TypeParameter `json:"typeParameters,omitempty"`
		TypeArguments       []Heritage       `json:"typeArguments,omitempty"`
		Path                string           `json:"path"`
		IsBaseStructure     bool             `json:"isBaseStructure,omitempty"`
	}{
		Name:                s.Name,
		Kind:                s.Kind.String(),
		Comment:             s.Comment,
		Tags:                s.Tags,
		Properties:          nonNil(s.Properties),
		TypeAliases:         s.Aliases,
		Imports:             nonNil(s.Imports),
		ExtendingStructures: nonNil(s.Parents()),
		TypeParameters:      s.TypeParameters,
		TypeArguments:       s.TypeArguments,
		Path:                s.Path,
		IsBaseStructure:     s.IsBase,
	})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
