package typescript

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKebabCase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"simple", "simple"},
		{"Simple", "simple"},
		{"getInvoiceByIdQuery", "get-invoice-by-id-query"},
		{"CreateInvoiceCommand", "create-invoice-command"},
		{"HTTPResponse", "http-response"},
		{"my_field", "my-field"},
		{"already-kebab", "already-kebab"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, KebabCase(tt.input))
		})
	}
}

func TestCamelCase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"Invoice", "invoice"},
		{"invoice", "invoice"},
		{"GetInvoiceByIdQuery", "getInvoiceByIdQuery"},
		{"TestInterfaceWithParentGeneric", "testInterfaceWithParentGeneric"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, CamelCase(tt.input))
		})
	}
}

func TestPascalCase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"myStringProperty", "MyStringProperty"},
		{"MyStringProperty", "MyStringProperty"},
		{"x", "X"},
		{"due-date", "DueDate"},
		{"due_date", "DueDate"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, PascalCase(tt.input))
		})
	}
}
