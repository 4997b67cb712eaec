package balemitter

import (
	"strings"

	"github.com/mark3labs/oas2client/internal/client"
)

// Types maps OpenAPI schema types to Ballerina type names.
var Types client.TypeMapper = client.TypeMapperFunc(ballerinaType)

func ballerinaType(schemaType string) string {
	switch strings.TrimSpace(schemaType) {
	case "integer":
		return "int"
	case "number", "decimal":
		return "decimal"
	case "float":
		return "float"
	case "string":
		return "string"
	case "boolean":
		return "boolean"
	case "object":
		return "record {}"
	case "array":
		return "anydata[]"
	default:
		return "anydata"
	}
}

// reservedWords are Ballerina keywords that need a quoted identifier.
var reservedWords = map[string]bool{
	"abort": true, "abstract": true, "annotation": true, "any": true, "anydata": true,
	"as": true, "ascending": true, "base16": true, "base64": true, "boolean": true,
	"break": true, "byte": true, "check": true, "checkpanic": true, "class": true,
	"client": true, "commit": true, "configurable": true, "const": true, "continue": true,
	"decimal": true, "default": true, "descending": true, "distinct": true, "do": true,
	"else": true, "enum": true, "equals": true, "error": true, "external": true,
	"fail": true, "false": true, "final": true, "float": true, "flush": true,
	"fork": true, "from": true, "function": true, "future": true, "handle": true,
	"if": true, "import": true, "in": true, "int": true, "is": true,
	"isolated": true, "join": true, "json": true, "let": true, "limit": true,
	"listener": true, "lock": true, "map": true, "match": true, "module": true,
	"never": true, "new": true, "null": true, "object": true, "on": true,
	"order": true, "outer": true, "panic": true, "private": true, "public": true,
	"readonly": true, "record": true, "remote": true, "resource": true, "retry": true,
	"return": true, "returns": true, "rollback": true, "select": true, "service": true,
	"source": true, "start": true, "stream": true, "string": true, "table": true,
	"transaction": true, "transactional": true, "trap": true, "true": true, "type": true,
	"typedesc": true, "typeof": true, "var": true, "wait": true, "where": true,
	"while": true, "worker": true, "xml": true, "xmlns": true,
}

// escapeIdentifier makes name usable as a Ballerina identifier. Characters
// outside [A-Za-z0-9_] are escaped with a backslash; keywords and names
// starting with a digit get the quoted-identifier prefix.
func escapeIdentifier(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return name
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		default:
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	out := b.String()
	if reservedWords[name] || (name[0] >= '0' && name[0] <= '9') {
		out = "'" + out
	}
	return out
}
