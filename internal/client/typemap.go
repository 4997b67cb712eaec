package client

import "strings"

// TypeMapper maps a schema type name (integer, string, array, ...) to the
// name of a target-language type.
type TypeMapper interface {
	MapType(schemaType string) string
}

// TypeMapperFunc adapts a function to TypeMapper.
type TypeMapperFunc func(schemaType string) string

func (f TypeMapperFunc) MapType(schemaType string) string { return f(schemaType) }

// IdentityTypes keeps schema type names as they are.
var IdentityTypes TypeMapper = TypeMapperFunc(strings.TrimSpace)

// primitiveItemTypes are the array item types a query parameter may carry
// and still be type-tested at runtime.
var primitiveItemTypes = map[string]bool{
	"string":  true,
	"integer": true,
	"boolean": true,
	"float":   true,
	"decimal": true,
}

func isPrimitiveItem(itemType string) bool {
	return primitiveItemTypes[strings.TrimSpace(itemType)]
}
