// Package client synthesizes the intermediate model of an HTTP client from an
// API description: which operations become methods, how those methods are
// named, what they accept and how each one builds its request path.
//
// The model is target-language agnostic. Type names inside it come from the
// TypeMapper given to Assemble; a renderer turns the model into source text.
package client

import (
	"strings"

	"github.com/mark3labs/oas2client/internal/spec"
)

// FallbackServiceURL is used when the first server entry has no URL.
const FallbackServiceURL = "http://localhost:9090/v1"

// Names used by the generated client for its members.
const (
	ClientFieldName     = "clientEp"
	ServiceURLParamName = "serviceUrl"
	ConfigParamName     = "httpClientConfig"
)

// ClientModel is the complete description of one generated client.
type ClientModel struct {
	ServiceURLDefault string             `json:"serviceUrlDefault"`
	Fields            []FieldDescriptor  `json:"fields"`
	Init              InitDescriptor     `json:"init"`
	Methods           []MethodDescriptor `json:"methods"`
}

type FieldKind string

const (
	// FieldHTTPClient holds the underlying HTTP client endpoint.
	FieldHTTPClient FieldKind = "http-client"
)

type FieldDescriptor struct {
	Name string    `json:"name"`
	Kind FieldKind `json:"kind"`
}

// InitDescriptor describes the client constructor: a service URL defaulted to
// the resolved server URL, and an optional transport configuration.
type InitDescriptor struct {
	ServiceURLParam   string `json:"serviceUrlParam"`
	ServiceURLDefault string `json:"serviceUrlDefault"`
	ConfigParam       string `json:"configParam"`
	ConfigOptional    bool   `json:"configOptional"`
}

// MethodDescriptor describes one generated client method.
type MethodDescriptor struct {
	Name       string            `json:"name"`
	HTTPMethod spec.HttpMethod   `json:"httpMethod"`
	Path       string            `json:"path"` // raw path template from the document
	Tags       []string          `json:"tags,omitempty"`
	Summary    string            `json:"summary,omitempty"`
	Parameters []MethodParam     `json:"parameters,omitempty"`
	PathExpr   PathExpression    `json:"pathExpression"`
	QueryPlan  []QueryAppendStep `json:"queryAppendPlan,omitempty"`
}

// MethodParam is one entry of a method signature, in declaration order.
type MethodParam struct {
	Name     string  `json:"name"`
	Location string  `json:"in"` // path|query
	Type     TypeRef `json:"type"`
	Required bool    `json:"required"`
}

// TypeRef names a mapped target type. Array marks a list of Name, Optional
// marks a value that may be absent at runtime.
type TypeRef struct {
	Name     string `json:"name"`
	Array    bool   `json:"array,omitempty"`
	Optional bool   `json:"optional,omitempty"`
}

// Base returns the type without its optional wrapper; runtime type tests
// guard against it.
func (t TypeRef) Base() TypeRef {
	t.Optional = false
	return t
}

func (t TypeRef) String() string {
	s := t.Name
	if t.Array {
		s += "[]"
	}
	if t.Optional {
		s += "?"
	}
	return s
}

type SegmentKind int

const (
	SegmentLiteral SegmentKind = iota
	SegmentParam
)

func (k SegmentKind) String() string {
	if k == SegmentParam {
		return "param"
	}
	return "literal"
}

func (k SegmentKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// PathSegment is either literal text or a reference to a parameter whose
// value is substituted when the request is built.
type PathSegment struct {
	Kind  SegmentKind `json:"kind"`
	Value string      `json:"value"` // literal text or parameter name
}

func Literal(s string) PathSegment     { return PathSegment{Kind: SegmentLiteral, Value: s} }
func ParamRef(name string) PathSegment { return PathSegment{Kind: SegmentParam, Value: name} }

// PathExpression is the request path as interleaved literals and parameter
// references.
type PathExpression []PathSegment

// String renders parameter references as {name}.
func (e PathExpression) String() string {
	return e.Render(func(name string) string { return "{" + name + "}" })
}

// Render concatenates the expression, replacing each parameter reference
// with value(name).
func (e PathExpression) Render(value func(name string) string) string {
	var b strings.Builder
	for _, seg := range e {
		if seg.Kind == SegmentParam {
			b.WriteString(value(seg.Value))
			continue
		}
		b.WriteString(seg.Value)
	}
	return b.String()
}

// QueryAppendStep describes how one query parameter reaches the request path.
// Required steps are already inlined in the path expression. Optional steps
// append Suffix at runtime when the value passes the Guard type test.
type QueryAppendStep struct {
	ParameterName string         `json:"parameterName"`
	Required      bool           `json:"required"`
	First         bool           `json:"isFirstQueryParam"` // "?" rather than "&"
	Guard         *TypeRef       `json:"guardType,omitempty"`
	Suffix        PathExpression `json:"suffix"`
}

// Prefix returns the separator fixed for this step at build time.
func (s QueryAppendStep) Prefix() string {
	if s.First {
		return "?"
	}
	return "&"
}

// Apply mirrors what generated code does for this step. present reports
// whether the runtime value passed the guard; required steps never change
// the path here because they are already part of it.
func (s QueryAppendStep) Apply(path, value string, present bool) string {
	if s.Required || !present {
		return path
	}
	return path + s.Suffix.Render(func(string) string { return value })
}
