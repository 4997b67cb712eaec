package client

import (
	"strings"

	"github.com/mark3labs/oas2client/internal/spec"
)

// QueryParam is a classified query parameter. Guard is the runtime type test
// used before appending it to the path; it is nil when the value cannot be
// type-tested (object schemas, arrays of non-primitive items). ComplexItems
// marks arrays of non-primitive items, which never reach the path.
type QueryParam struct {
	Name         string
	Type         TypeRef
	Required     bool
	Guard        *TypeRef
	ComplexItems bool
}

// Classification buckets the parameters of one operation. Every bucket keeps
// declaration order. Signature interleaves path and query parameters the way
// they were declared.
type Classification struct {
	Path      []MethodParam
	Query     []QueryParam
	Dropped   []spec.Parameter // header and cookie parameters
	Signature []MethodParam
}

// Classify sorts params by location and maps their types with types. A nil
// TypeMapper keeps schema type names.
func Classify(params []spec.Parameter, types TypeMapper) Classification {
	if types == nil {
		types = IdentityTypes
	}
	var c Classification
	for _, p := range params {
		name := strings.TrimSpace(p.Name)
		switch strings.ToLower(strings.TrimSpace(p.In)) {
		case spec.InPath:
			mp := MethodParam{
				Name:     name,
				Location: spec.InPath,
				Type:     TypeRef{Name: types.MapType(p.SchemaType)},
				Required: true,
			}
			c.Path = append(c.Path, mp)
			c.Signature = append(c.Signature, mp)
		case spec.InQuery:
			qp := classifyQuery(name, p, types)
			c.Query = append(c.Query, qp)
			c.Signature = append(c.Signature, MethodParam{
				Name:     name,
				Location: spec.InQuery,
				Type:     qp.Type,
				Required: qp.Required,
			})
		default:
			c.Dropped = append(c.Dropped, p)
		}
	}
	return c
}

func classifyQuery(name string, p spec.Parameter, types TypeMapper) QueryParam {
	schemaType := strings.TrimSpace(p.SchemaType)
	base := TypeRef{Name: types.MapType(schemaType)}
	var guard *TypeRef
	complexItems := false
	switch {
	case schemaType == "array" && isPrimitiveItem(p.ItemType):
		base = TypeRef{Name: types.MapType(strings.TrimSpace(p.ItemType)), Array: true}
		g := base
		guard = &g
	case schemaType == "array":
		complexItems = true
	case schemaType == "object":
	default:
		g := base
		guard = &g
	}
	typ := base
	typ.Optional = !p.Required
	return QueryParam{Name: name, Type: typ, Required: p.Required, Guard: guard, ComplexItems: complexItems}
}

// Guardable reports whether the parameter has a runtime type test.
func (q QueryParam) Guardable() bool { return q.Guard != nil }

// Sendable reports whether the parameter can reach the request path. Required
// parameters are inlined without a type test, except arrays of non-primitive
// items; optional ones need a guard.
func (q QueryParam) Sendable() bool {
	if q.ComplexItems {
		return false
	}
	return q.Required || q.Guardable()
}
