package typescript

import "github.com/iancoleman/strcase"

// CamelCase converts a declaration name to a lower camel case binding:
// "GetInvoiceByIdQuery" becomes "getInvoiceByIdQuery".
func CamelCase(s string) string {
	return strcase.ToLowerCamel(s)
}

// PascalCase converts a property name to the upper camel case form used
// inside generated method and type names: "due-date" becomes "DueDate".
func PascalCase(s string) string {
	return strcase.ToCamel(s)
}

// KebabCase converts a declaration name to the file name form:
// "GetInvoiceByIdQuery" becomes "get-invoice-by-id-query" and
// "HTTPResponse" becomes "http-response".
func KebabCase(s string) string {
	return strcase.ToKebab(s)
}
