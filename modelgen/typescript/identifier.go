package typescript

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Property names keep the spelling they have in the model and are quoted
// when they are not identifier names. Names that are declared (functions,
// classes, methods) are rewritten instead.

// reservedBindings cannot be declared as a function, class or variable.
// They remain valid property names: a field called "default" is written
// unquoted and read as v.default.
var reservedBindings = func() map[string]bool {
	words := strings.Fields(`
		break case catch class const continue debugger default delete do
		else enum export extends false finally for function if implements
		import in instanceof interface let new null package private
		protected public return static super switch this throw true try
		typeof var void while with yield`)
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}()

func identStart(r rune) bool { return r == '_' || r == '$' || unicode.IsLetter(r) }

func identPart(r rune) bool { return identStart(r) || unicode.IsDigit(r) }

func isIdentifierName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if !identPart(r) || (i == 0 && !identStart(r)) {
			return false
		}
	}
	return true
}

// PropertyKey returns name as written in a class body, an object literal
// or an interface.
func PropertyKey(name string) string {
	if isIdentifierName(name) {
		return name
	}
	return strconv.Quote(name)
}

// Access returns the expression reading property name of obj.
func Access(obj, name string) string {
	if isIdentifierName(name) {
		return obj + "." + name
	}
	return obj + "[" + strconv.Quote(name) + "]"
}

// bindingName rewrites name so it can be declared. Runes that cannot appear
// in an identifier become '_', a leading digit gets a '_' prefix and a
// reserved word gets a '_' suffix.
func bindingName(name string) string {
	b := strings.Map(func(r rune) rune {
		if identPart(r) {
			return r
		}
		return '_'
	}, name)
	if b == "" {
		return "_"
	}
	if r, _ := utf8.DecodeRuneInString(b); !identStart(r) {
		return "_" + b
	}
	if reservedBindings[b] {
		return b + "_"
	}
	return b
}
