package parser

import (
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	// ErrMultipleExports is returned by the strict parse when a file has
	// more than one export.
	ErrMultipleExports = errors.New("more than one export encountered")

	// ErrUnsupportedExport is returned by the strict parse when the sole
	// export is not an enum, interface or type alias, and by
	// ParseDeclaration for such declarations.
	ErrUnsupportedExport = errors.New("export declaration not supported")

	// ErrNoExport is returned by the strict parse when a file exports
	// nothing.
	ErrNoExport = errors.New("no export found")

	// ErrNoDocumentation is returned when a declaration, property or enum
	// member has no documentation comment.
	ErrNoDocumentation = errors.New("no documentation found for element")

	// ErrUnsupportedAlias is returned for type aliases that are not a flat
	// union of primitives and named references.
	ErrUnsupportedAlias = errors.New("only type aliases declared as unions are supported")

	// ErrUntypedProperty is returned for a property without a type
	// annotation.
	ErrUntypedProperty = errors.New("no type parseable for property")

	// ErrCycle is returned when a declaration's inheritance refers back to
	// itself.
	ErrCycle = errors.New("cyclic declaration")
)

func multipleExports(path string) error {
	return errors.Mark(errors.Newf("more than one export encountered in %s", path), ErrMultipleExports)
}

func unsupportedExport(syntax string) error {
	return errors.Mark(
		errors.Newf("export declaration with kind %s not supported", kindName(syntax)),
		ErrUnsupportedExport,
	)
}

func noDocumentation(what string) error {
	return errors.WithHint(
		errors.Wrapf(ErrNoDocumentation, "%s", what),
		"add a /** ... */ comment; documentation is carried into every generated artifact",
	)
}

// kindName turns a syntax node type such as "function_declaration" into
// "FunctionDeclaration".
func kindName(syntax string) string {
	var b strings.Builder
	for _, part := range strings.Split(syntax, "_") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}
