package spec

// Input model consumed by the client synthesis engine. It is a read-only view
// of a parsed OpenAPI document; path order follows the source file.

type HttpMethod string

const (
	GET     HttpMethod = "get"
	PUT     HttpMethod = "put"
	POST    HttpMethod = "post"
	DELETE  HttpMethod = "delete"
	OPTIONS HttpMethod = "options"
	HEAD    HttpMethod = "head"
	PATCH   HttpMethod = "patch"
	TRACE   HttpMethod = "trace"
)

// Methods lists every supported HTTP method in canonical order. Operations of
// a PathItem are always held in this order.
var Methods = []HttpMethod{GET, PUT, POST, DELETE, OPTIONS, HEAD, PATCH, TRACE}

// Parameter locations.
const (
	InPath   = "path"
	InQuery  = "query"
	InHeader = "header"
	InCookie = "cookie"
)

type Document struct {
	Title   string
	Version string
	Servers []Server
	Paths   []PathItem
}

type Server struct {
	URL       string // empty when the document omits it
	Variables map[string]ServerVariable
}

type ServerVariable struct {
	Default string
	Enum    []string
}

type PathItem struct {
	Path       string
	Operations []Operation
}

type Operation struct {
	Method      HttpMethod
	OperationID string // empty when the document omits it
	Tags        []string
	Summary     string
	Parameters  []Parameter
}

type Parameter struct {
	Name       string
	In         string // path|query|header|cookie
	Required   bool
	SchemaType string
	ItemType   string // item schema type when SchemaType is "array"
}

// Operation returns the operation registered for method, if any.
func (p PathItem) Operation(method HttpMethod) (Operation, bool) {
	for _, op := range p.Operations {
		if op.Method == method {
			return op, true
		}
	}
	return Operation{}, false
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{Title: d.Title, Version: d.Version}
	if d.Servers != nil {
		out.Servers = make([]Server, len(d.Servers))
		for i, s := range d.Servers {
			out.Servers[i] = Server{URL: s.URL}
			if s.Variables != nil {
				out.Servers[i].Variables = make(map[string]ServerVariable, len(s.Variables))
				for k, v := range s.Variables {
					out.Servers[i].Variables[k] = ServerVariable{
						Default: v.Default,
						Enum:    cloneSlice(v.Enum),
					}
				}
			}
		}
	}
	if d.Paths != nil {
		out.Paths = make([]PathItem, len(d.Paths))
		for i, item := range d.Paths {
			ops := cloneSlice(item.Operations)
			for j := range ops {
				ops[j].Tags = cloneSlice(ops[j].Tags)
				ops[j].Parameters = cloneSlice(ops[j].Parameters)
			}
			out.Paths[i] = PathItem{Path: item.Path, Operations: ops}
		}
	}
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
