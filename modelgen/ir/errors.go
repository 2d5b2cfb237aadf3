package ir

import "github.com/cockroachdb/errors"

var (
	// ErrUnsupportedStructure is returned when a projection receives a
	// structure kind it cannot represent (for example a builder for an enum).
	ErrUnsupportedStructure = errors.New("unsupported structure kind")

	// ErrEmptyUnion is returned when a union alias has no members.
	ErrEmptyUnion = errors.New("only type aliases declared as unions are supported")
)

// Unsupported wraps ErrUnsupportedStructure with the structure and the
// operation that rejected it.
func Unsupported(s *Structure, op string) error {
	return errors.WithHint(
		errors.Wrapf(ErrUnsupportedStructure, "%s: %s %s", op, s.Kind, s.Name),
		"only interfaces (records) are supported here",
	)
}
