package spec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// FromOpenAPI converts a kin-openapi document into the input Document.
// raw is the source the document was loaded from; it is only used to recover
// path declaration order and may be nil, in which case paths are sorted.
func FromOpenAPI(doc *openapi3.T, raw []byte) (*Document, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}

	out := &Document{}
	if doc.Info != nil {
		out.Title = safeStr(doc.Info.Title)
		out.Version = safeStr(doc.Info.Version)
	}

	for _, s := range doc.Servers {
		if s == nil {
			continue
		}
		srv := Server{URL: safeStr(s.URL)}
		if len(s.Variables) > 0 {
			srv.Variables = make(map[string]ServerVariable, len(s.Variables))
			for name, v := range s.Variables {
				if v == nil {
					continue
				}
				srv.Variables[name] = ServerVariable{
					Default: v.Default,
					Enum:    append([]string(nil), v.Enum...),
				}
			}
		}
		out.Servers = append(out.Servers, srv)
	}

	for _, p := range orderedPaths(doc.Paths, raw) {
		item := doc.Paths[p]
		if item == nil {
			continue
		}
		out.Paths = append(out.Paths, PathItem{Path: p, Operations: toOperations(item)})
	}

	return out, nil
}

func toOperations(item *openapi3.PathItem) []Operation {
	ops := []struct {
		m HttpMethod
		o *openapi3.Operation
	}{
		{GET, item.Get},
		{PUT, item.Put},
		{POST, item.Post},
		{DELETE, item.Delete},
		{OPTIONS, item.Options},
		{HEAD, item.Head},
		{PATCH, item.Patch},
		{TRACE, item.Trace},
	}

	var out []Operation
	for _, pair := range ops {
		if pair.o == nil {
			continue
		}
		var tags []string
		for _, t := range pair.o.Tags {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
		out = append(out, Operation{
			Method:      pair.m,
			OperationID: safeStr(pair.o.OperationID),
			Tags:        tags,
			Summary:     safeStr(pair.o.Summary),
			Parameters:  mergeParameters(item.Parameters, pair.o.Parameters),
		})
	}
	return out
}

// mergeParameters lists path-level parameters first. An operation-level
// parameter with the same location and name replaces the path-level one in
// place; the others are appended in declaration order.
func mergeParameters(base, own openapi3.Parameters) []Parameter {
	var out []Parameter
	index := make(map[string]int)
	for _, refs := range []openapi3.Parameters{base, own} {
		for _, pref := range refs {
			pm, ok := toParameter(pref)
			if !ok {
				continue
			}
			key := paramKey(pm.In, pm.Name)
			if i, seen := index[key]; seen {
				out[i] = pm
				continue
			}
			index[key] = len(out)
			out = append(out, pm)
		}
	}
	return out
}

func toParameter(pref *openapi3.ParameterRef) (Parameter, bool) {
	if pref == nil || pref.Value == nil {
		return Parameter{}, false
	}
	p := pref.Value
	pm := Parameter{
		Name:     safeStr(p.Name),
		In:       strings.ToLower(safeStr(p.In)),
		Required: p.Required,
	}
	if p.Schema != nil && p.Schema.Value != nil {
		pm.SchemaType = safeStr(p.Schema.Value.Type)
		if items := p.Schema.Value.Items; items != nil && items.Value != nil {
			pm.ItemType = safeStr(items.Value.Type)
		}
	}
	return pm, true
}

// orderedPaths returns the path keys in the order they are declared in raw.
// Keys missing from raw (for example paths pulled in through external refs)
// follow in sorted order.
func orderedPaths(paths openapi3.Paths, raw []byte) []string {
	declared := declaredPathOrder(raw)
	out := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, p := range declared {
		if _, ok := paths[p]; !ok {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	var rest []string
	for p := range paths {
		if _, ok := seen[p]; !ok {
			rest = append(rest, p)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func declaredPathOrder(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(top.Content); i += 2 {
		if top.Content[i].Value != "paths" {
			continue
		}
		pathsNode := top.Content[i+1]
		if pathsNode.Kind != yaml.MappingNode {
			return nil
		}
		keys := make([]string, 0, len(pathsNode.Content)/2)
		for j := 0; j+1 < len(pathsNode.Content); j += 2 {
			keys = append(keys, pathsNode.Content[j].Value)
		}
		return keys
	}
	return nil
}

func paramKey(in, name string) string { return in + ":" + name }

func safeStr(s string) string { return strings.TrimSpace(s) }
