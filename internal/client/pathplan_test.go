package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/oas2client/internal/spec"
)

func queryParams(params ...spec.Parameter) []QueryParam {
	for i := range params {
		params[i].In = spec.InQuery
	}
	return Classify(params, nil).Query
}

func TestBuildPath_PathParameters(t *testing.T) {
	t.Parallel()
	pathParams := []MethodParam{{Name: "petId"}, {Name: "toyId"}}
	plan := BuildPath("/pets/{petId}/toys/{toyId}", pathParams, nil)

	assert.Equal(t, PathExpression{
		Literal("/pets/"), ParamRef("petId"), Literal("/toys/"), ParamRef("toyId"),
	}, plan.Expression)
	assert.Equal(t, "/pets/{petId}/toys/{toyId}", plan.Expression.String())
	assert.Empty(t, plan.QueryPlan)
	assert.Empty(t, plan.Unbound)
}

func TestBuildPath_UnboundAndUnterminated(t *testing.T) {
	t.Parallel()
	plan := BuildPath("/a/{x}/b{", nil, nil)
	assert.Equal(t, PathExpression{Literal("/a/"), ParamRef("x"), Literal("/b{")}, plan.Expression)
	assert.Equal(t, []string{"x"}, plan.Unbound)
}

func TestBuildPath_RequiredQueryOrder(t *testing.T) {
	t.Parallel()
	q := queryParams(
		spec.Parameter{Name: "status", Required: true, SchemaType: "string"},
		spec.Parameter{Name: "limit", Required: true, SchemaType: "integer"},
	)
	plan := BuildPath("/pets", nil, q)

	assert.Equal(t, "/pets?status={status}&limit={limit}", plan.Expression.String())
	values := map[string]string{"status": "sold", "limit": "10"}
	assert.Equal(t, "/pets?status=sold&limit=10", plan.Expression.Render(func(n string) string { return values[n] }))

	require.Len(t, plan.QueryPlan, 2)
	for _, step := range plan.QueryPlan {
		assert.True(t, step.Required)
		assert.Nil(t, step.Guard)
	}
	assert.True(t, plan.QueryPlan[0].First)
	assert.False(t, plan.QueryPlan[1].First)
}

func TestBuildPath_OptionalQueryGuard(t *testing.T) {
	t.Parallel()
	q := queryParams(spec.Parameter{Name: "limit", SchemaType: "integer"})
	plan := BuildPath("/pets", nil, q)

	assert.Equal(t, "/pets", plan.Expression.String())
	require.Len(t, plan.QueryPlan, 1)
	step := plan.QueryPlan[0]
	assert.False(t, step.Required)
	assert.Equal(t, "?", step.Prefix())
	require.NotNil(t, step.Guard)
	assert.Equal(t, TypeRef{Name: "integer"}, *step.Guard)

	assert.Equal(t, "/pets?limit=5", step.Apply("/pets", "5", true))
	assert.Equal(t, "/pets", step.Apply("/pets", "", false))
}

func TestBuildPath_PositionalSeparators(t *testing.T) {
	t.Parallel()
	q := queryParams(
		spec.Parameter{Name: "page", SchemaType: "integer"},
		spec.Parameter{Name: "status", Required: true, SchemaType: "string"},
		spec.Parameter{Name: "sort", SchemaType: "string"},
	)
	plan := BuildPath("/pets", nil, q)

	// The required parameter keeps "&" even though it is inlined first.
	assert.Equal(t, "/pets&status={status}", plan.Expression.String())
	require.Len(t, plan.QueryPlan, 3)
	assert.Equal(t, []string{"?", "&", "&"}, []string{
		plan.QueryPlan[0].Prefix(), plan.QueryPlan[1].Prefix(), plan.QueryPlan[2].Prefix(),
	})

	path := plan.Expression.Render(func(string) string { return "x" })
	for _, step := range plan.QueryPlan {
		path = step.Apply(path, "v", step.ParameterName == "sort")
	}
	assert.Equal(t, "/pets&status=x&sort=v", path)
}

func TestBuildPath_UnsendableQueryContributesNothing(t *testing.T) {
	t.Parallel()
	q := queryParams(
		spec.Parameter{Name: "filters", SchemaType: "array", ItemType: "object"},
		spec.Parameter{Name: "sorts", Required: true, SchemaType: "array", ItemType: "object"},
		spec.Parameter{Name: "meta", SchemaType: "object"},
		spec.Parameter{Name: "limit", SchemaType: "integer"},
	)
	plan := BuildPath("/pets", nil, q)

	assert.Equal(t, "/pets", plan.Expression.String())
	require.Len(t, plan.QueryPlan, 1)
	assert.Equal(t, "limit", plan.QueryPlan[0].ParameterName)
	assert.Equal(t, "&", plan.QueryPlan[0].Prefix())
}

func TestBuildPath_RequiredObjectQueryIsInlined(t *testing.T) {
	t.Parallel()
	q := queryParams(
		spec.Parameter{Name: "where", Required: true, SchemaType: "object"},
		spec.Parameter{Name: "ids", Required: true, SchemaType: "array", ItemType: "object"},
	)
	plan := BuildPath("/pets", nil, q)

	assert.Equal(t, "/pets?where={where}", plan.Expression.String())
	require.Len(t, plan.QueryPlan, 1)
	assert.Equal(t, "where", plan.QueryPlan[0].ParameterName)
	assert.True(t, plan.QueryPlan[0].Required)
	assert.Nil(t, plan.QueryPlan[0].Guard)
}

func TestBuildPath_ArrayOfPrimitiveGuard(t *testing.T) {
	t.Parallel()
	q := queryParams(spec.Parameter{Name: "ids", SchemaType: "array", ItemType: "integer"})
	plan := BuildPath("/pets", nil, q)

	require.Len(t, plan.QueryPlan, 1)
	assert.Equal(t, &TypeRef{Name: "integer", Array: true}, plan.QueryPlan[0].Guard)
	assert.Equal(t, PathExpression{Literal("?ids="), ParamRef("ids")}, plan.QueryPlan[0].Suffix)
}
