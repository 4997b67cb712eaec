package client

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mark3labs/oas2client/internal/spec"
)

// OperationKey identifies one operation of a document.
type OperationKey struct {
	Path   string
	Method spec.HttpMethod
}

// OperationIDs maps every operation of a document to its resolved id.
type OperationIDs map[OperationKey]string

// Lookup returns the resolved id for the operation at path and method.
func (ids OperationIDs) Lookup(path string, method spec.HttpMethod) string {
	return ids[OperationKey{Path: path, Method: method}]
}

var paramSegment = regexp.MustCompile(`^\{([^}]*)\}$`)

// title upper-cases the first letter of each word and keeps the rest.
func title(s string) string {
	return cases.Title(language.English, cases.NoLower).String(s)
}

// ResolveOperationIDs returns the id of every operation in doc. Declared ids
// are kept verbatim; missing ones are inferred from the path shape. When more
// than one operation on a path lacks an id, the lowercase method name is
// prepended so the inferred ids stay distinct.
func ResolveOperationIDs(doc *spec.Document) OperationIDs {
	ids := OperationIDs{}
	if doc == nil {
		return ids
	}
	for _, item := range doc.Paths {
		missing := 0
		for _, op := range item.Operations {
			if op.OperationID == "" {
				missing++
			}
		}
		for _, op := range item.Operations {
			key := OperationKey{Path: item.Path, Method: op.Method}
			if op.OperationID != "" {
				ids[key] = op.OperationID
				continue
			}
			prefix := ""
			if missing > 1 {
				prefix = string(op.Method)
			}
			ids[key] = inferOperationID(item.Path, prefix)
		}
	}
	return ids
}

// ApplyOperationIDs returns a copy of doc with every missing operation id
// filled from ids. doc itself is not modified.
func ApplyOperationIDs(doc *spec.Document, ids OperationIDs) *spec.Document {
	out := doc.Clone()
	if out == nil {
		return nil
	}
	for i := range out.Paths {
		item := &out.Paths[i]
		for j := range item.Operations {
			op := &item.Operations[j]
			if op.OperationID != "" {
				continue
			}
			op.OperationID = ids.Lookup(item.Path, op.Method)
		}
	}
	return out
}

// inferOperationID builds prefix + SecondToLast + "By" + Param when the last
// segment is a {param} placeholder, prefix + Last otherwise. A path with no
// segments, such as "/", yields prefix + "Root".
func inferOperationID(path, prefix string) string {
	segments := splitPath(path)
	last := segmentAt(segments, 1)
	if m := paramSegment.FindStringSubmatch(last); m != nil {
		return prefix + title(segmentAt(segments, 2)) + "By" + title(m[1])
	}
	if strings.TrimSpace(last) == "" {
		return prefix + "Root"
	}
	return prefix + title(last)
}

// splitPath splits on "/" and drops trailing empty segments, so "/pets/"
// ends in "pets".
func splitPath(path string) []string {
	segments := strings.Split(strings.TrimSpace(path), "/")
	for len(segments) > 0 && segments[len(segments)-1] == "" {
		segments = segments[:len(segments)-1]
	}
	return segments
}

// segmentAt returns the n-th segment from the end, or "".
func segmentAt(segments []string, n int) string {
	if n > len(segments) {
		return ""
	}
	return segments[len(segments)-n]
}
