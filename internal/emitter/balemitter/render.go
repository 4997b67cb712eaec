package balemitter

import (
	"bytes"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/mark3labs/oas2client/internal/client"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("").ParseFS(templateFS, "templates/*.tmpl"))

type clientView struct {
	FieldName       string
	ServiceURLParam string
	ServiceURL      string // quoted Ballerina string literal
	ConfigParam     string // empty when the constructor takes no configuration
	Methods         []methodView
}

type methodView struct {
	Summary string
	Name    string
	Params  string
	Path    string
	Appends []appendView
	Verb    string
}

type appendView struct {
	Var    string
	Type   string
	Suffix string
}

// Render returns the Ballerina source of the client described by model.
func Render(model *client.ClientModel) ([]byte, error) {
	if model == nil {
		return nil, fmt.Errorf("balemitter: nil ClientModel")
	}
	view := clientView{
		FieldName:       escapeIdentifier(fieldName(model)),
		ServiceURLParam: escapeIdentifier(model.Init.ServiceURLParam),
		ServiceURL:      strconv.Quote(model.Init.ServiceURLDefault),
	}
	if view.ServiceURLParam == "" {
		view.ServiceURLParam = client.ServiceURLParamName
	}
	if model.Init.ConfigOptional {
		view.ConfigParam = escapeIdentifier(model.Init.ConfigParam)
	}
	for _, m := range model.Methods {
		view.Methods = append(view.Methods, newMethodView(m))
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "client.bal.tmpl", view); err != nil {
		return nil, fmt.Errorf("balemitter: render client: %w", err)
	}
	return buf.Bytes(), nil
}

func fieldName(model *client.ClientModel) string {
	for _, f := range model.Fields {
		if f.Kind == client.FieldHTTPClient {
			return f.Name
		}
	}
	return client.ClientFieldName
}

func newMethodView(m client.MethodDescriptor) methodView {
	params := make([]string, 0, len(m.Parameters))
	for _, p := range m.Parameters {
		params = append(params, p.Type.String()+" "+escapeIdentifier(p.Name))
	}
	mv := methodView{
		Summary: strings.Join(strings.Fields(m.Summary), " "),
		Name:    escapeIdentifier(m.Name),
		Params:  strings.Join(params, ", "),
		Path:    templateText(m.PathExpr),
		Verb:    strings.ToLower(string(m.HTTPMethod)),
	}
	for _, step := range m.QueryPlan {
		if step.Required || step.Guard == nil {
			continue
		}
		mv.Appends = append(mv.Appends, appendView{
			Var:    escapeIdentifier(step.ParameterName),
			Type:   step.Guard.String(),
			Suffix: templateText(step.Suffix),
		})
	}
	return mv
}

// templateText renders expr as the body of a Ballerina string template.
func templateText(expr client.PathExpression) string {
	return expr.Render(func(name string) string {
		return "${" + escapeIdentifier(name) + "}"
	})
}
