package client

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/mark3labs/oas2client/internal/spec"
)

// Settings configures Assemble.
type Settings struct {
	// Types maps schema types to target types. Defaults to IdentityTypes.
	Types  TypeMapper
	Logger *slog.Logger
	// ServerVariables overrides server variable defaults by name.
	ServerVariables map[string]string
}

// Option mutates Settings.
type Option func(*Settings)

func WithTypeMapper(t TypeMapper) Option { return func(s *Settings) { s.Types = t } }
func WithLogger(l *slog.Logger) Option   { return func(s *Settings) { s.Logger = l } }
func WithServerVariables(v map[string]string) Option {
	return func(s *Settings) { s.ServerVariables = v }
}

// GenerationContext is the run-scoped state shared by every step of one
// assembly. Document is the annotated copy with all operation ids filled.
type GenerationContext struct {
	Document     *spec.Document
	Filter       Filter
	ServiceURL   string
	OperationIDs OperationIDs
	Types        TypeMapper
	Logger       *slog.Logger
}

// Assemble builds the client model for doc. Operation ids are resolved before
// filtering so the filter sees inferred ids. Either a complete model is
// returned or an error; doc is never modified.
func Assemble(doc *spec.Document, filter Filter, opts ...Option) (*ClientModel, error) {
	settings := Settings{}
	for _, opt := range opts {
		opt(&settings)
	}
	if settings.Types == nil {
		settings.Types = IdentityTypes
	}
	if settings.Logger == nil {
		settings.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if doc == nil {
		return nil, errors.New("client: nil document")
	}

	serviceURL, err := ResolveServiceURL(doc.Servers, settings.ServerVariables)
	if err != nil {
		return nil, err
	}
	ids := ResolveOperationIDs(doc)
	gc := &GenerationContext{
		Document:     ApplyOperationIDs(doc, ids),
		Filter:       filter,
		ServiceURL:   serviceURL,
		OperationIDs: ids,
		Types:        settings.Types,
		Logger:       settings.Logger,
	}

	model := &ClientModel{
		ServiceURLDefault: serviceURL,
		Fields:            []FieldDescriptor{{Name: ClientFieldName, Kind: FieldHTTPClient}},
		Init: InitDescriptor{
			ServiceURLParam:   ServiceURLParamName,
			ServiceURLDefault: serviceURL,
			ConfigParam:       ConfigParamName,
			ConfigOptional:    true,
		},
	}
	model.Methods = buildMethods(gc)
	return model, nil
}

func buildMethods(gc *GenerationContext) []MethodDescriptor {
	var methods []MethodDescriptor
	seen := map[string]string{}
	for _, item := range gc.Document.Paths {
		for _, op := range item.Operations {
			if !gc.Filter.Include(op, op.OperationID) {
				gc.Logger.Debug("operation filtered out", "path", item.Path, "method", op.Method, "operationId", op.OperationID)
				continue
			}
			m := buildMethod(gc, item.Path, op)
			where := strings.ToUpper(string(op.Method)) + " " + item.Path
			if prev, ok := seen[m.Name]; ok {
				gc.Logger.Warn("duplicate method name", "name", m.Name, "first", prev, "second", where)
			} else {
				seen[m.Name] = where
			}
			methods = append(methods, m)
		}
	}
	return methods
}

func buildMethod(gc *GenerationContext, path string, op spec.Operation) MethodDescriptor {
	c := Classify(op.Parameters, gc.Types)
	for _, p := range c.Dropped {
		gc.Logger.Debug("parameter not represented", "path", path, "method", op.Method, "name", p.Name, "in", p.In)
	}
	for _, q := range c.Query {
		if !q.Sendable() {
			gc.Logger.Debug("query parameter cannot reach the path", "path", path, "method", op.Method, "name", q.Name, "type", q.Type.String())
		}
	}
	plan := BuildPath(path, c.Path, c.Query)
	for _, name := range plan.Unbound {
		gc.Logger.Warn("path placeholder has no path parameter", "path", path, "method", op.Method, "placeholder", name)
	}
	return MethodDescriptor{
		Name:       op.OperationID,
		HTTPMethod: op.Method,
		Path:       path,
		Tags:       slices.Clone(op.Tags),
		Summary:    op.Summary,
		Parameters: c.Signature,
		PathExpr:   plan.Expression,
		QueryPlan:  plan.QueryPlan,
	}
}

var serverVarRe = regexp.MustCompile(`\{([^}]*)\}`)

// ResolveServiceURL picks the default service URL from the first server
// entry. A server without a URL falls back to FallbackServiceURL. When the
// server declares variables, each {name} is replaced by the override in
// values or by the variable default, and the result must parse as an
// absolute URL. URLs without variables are used as written.
func ResolveServiceURL(servers []spec.Server, values map[string]string) (string, error) {
	if len(servers) == 0 {
		return "", ErrMissingServer
	}
	server := servers[0]
	raw := strings.TrimSpace(server.URL)
	if raw == "" {
		return FallbackServiceURL, nil
	}
	if len(server.Variables) == 0 {
		return raw, nil
	}

	var subErr error
	resolved := serverVarRe.ReplaceAllStringFunc(raw, func(m string) string {
		name := strings.TrimSpace(m[1 : len(m)-1])
		v, ok := server.Variables[name]
		if !ok {
			return m
		}
		value := v.Default
		if override, ok := values[name]; ok {
			if len(v.Enum) > 0 && !slices.Contains(v.Enum, override) {
				if subErr == nil {
					subErr = fmt.Errorf("server variable %q: %q is not one of %v", name, override, v.Enum)
				}
			} else {
				value = override
			}
		}
		return value
	})
	if subErr != nil {
		return "", &ResolutionError{URL: raw, Cause: subErr}
	}

	u, err := url.Parse(resolved)
	if err != nil {
		return "", &ResolutionError{URL: resolved, Cause: err}
	}
	if u.Scheme == "" || u.Host == "" {
		return "", &ResolutionError{URL: resolved, Cause: errors.New("missing scheme or host")}
	}
	return resolved, nil
}
