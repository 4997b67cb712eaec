package client

import "strings"

// PathPlan is how a method builds its request path: the expression computed
// at call time plus the conditional appends that follow it.
type PathPlan struct {
	Expression PathExpression
	QueryPlan  []QueryAppendStep
	// Unbound lists placeholders with no matching path parameter. They are
	// still substituted.
	Unbound []string
}

// BuildPath turns rawPath into a path expression and appends the query
// parameters in declaration order. The "?" or "&" separator of each query
// parameter is fixed by its position among all query parameters of the
// operation, whether or not earlier optional ones are present at runtime.
// Parameters that cannot be sent contribute nothing to the path.
func BuildPath(rawPath string, pathParams []MethodParam, queryParams []QueryParam) PathPlan {
	declared := make(map[string]bool, len(pathParams))
	for _, p := range pathParams {
		declared[p.Name] = true
	}

	var plan PathPlan
	plan.Expression = parseTemplate(rawPath)
	for _, seg := range plan.Expression {
		if seg.Kind == SegmentParam && !declared[seg.Value] {
			plan.Unbound = append(plan.Unbound, seg.Value)
		}
	}

	for i, q := range queryParams {
		if !q.Sendable() {
			continue
		}
		step := QueryAppendStep{
			ParameterName: q.Name,
			Required:      q.Required,
			First:         i == 0,
		}
		step.Suffix = PathExpression{Literal(step.Prefix() + q.Name + "="), ParamRef(q.Name)}
		if q.Required {
			plan.Expression = append(plan.Expression, step.Suffix...)
		} else {
			g := q.Guard.Base()
			step.Guard = &g
		}
		plan.QueryPlan = append(plan.QueryPlan, step)
	}
	plan.Expression = mergeLiterals(plan.Expression)
	return plan
}

// parseTemplate splits "/pets/{petId}/toys" into literal and parameter
// segments. An unterminated "{" is kept as literal text.
func parseTemplate(raw string) PathExpression {
	var expr PathExpression
	rest := raw
	for rest != "" {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			break
		}
		if open > 0 {
			expr = append(expr, Literal(rest[:open]))
		}
		expr = append(expr, ParamRef(strings.TrimSpace(rest[open+1:open+end])))
		rest = rest[open+end+1:]
	}
	if rest != "" {
		expr = append(expr, Literal(rest))
	}
	return expr
}

func mergeLiterals(expr PathExpression) PathExpression {
	out := make(PathExpression, 0, len(expr))
	for _, seg := range expr {
		if n := len(out); n > 0 && seg.Kind == SegmentLiteral && out[n-1].Kind == SegmentLiteral {
			out[n-1].Value += seg.Value
			continue
		}
		out = append(out, seg)
	}
	return out
}
