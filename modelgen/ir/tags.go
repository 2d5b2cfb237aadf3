package ir

import (
	"strings"

	"github.com/gorilla/schema"
)

// Tag is a documentation block tag such as "@returns Invoice".
type Tag struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// Tags is an ordered list of documentation tags.
type Tags []Tag

// Get returns the text of the first tag with the given name.
func (t Tags) Get(name string) (string, bool) {
	for _, tag := range t {
		if tag.Name == name {
			return tag.Text, true
		}
	}
	return "", false
}

// Has reports whether a tag with the given name is present.
func (t Tags) Has(name string) bool {
	_, ok := t.Get(name)
	return ok
}

// Annotations are the documentation tags the projections understand.
type Annotations struct {
	// Input marks a record as a GraphQL input type.
	Input bool `schema:"input"`

	// Returns names the result type of the resolver generated for an input.
	// A bracketed value ("[Invoice]") denotes a list.
	Returns string `schema:"returns"`

	// Float maps a number property to Float instead of Int.
	Float bool `schema:"float"`

	// Deprecated carries the deprecation message, if any.
	Deprecated string `schema:"deprecated"`
}

var annotationDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	d.ZeroEmpty(true)
	return d
}()

// Annotations decodes the known tags. Tags without text are treated as
// flags. Malformed values decode to their zero value.
func (t Tags) Annotations() Annotations {
	values := make(map[string][]string, len(t))
	for _, tag := range t {
		text := strings.TrimSpace(tag.Text)
		if text == "" {
			text = "true"
		}
		values[tag.Name] = append(values[tag.Name], text)
	}
	var a Annotations
	if err := annotationDecoder.Decode(&a, values); err != nil {
		// Keep whatever decoded cleanly; a bad flag value is not fatal.
		return a
	}
	return a
}
