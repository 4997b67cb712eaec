package client

import (
	"slices"
	"strings"

	"github.com/mark3labs/oas2client/internal/spec"
)

// Filter selects the operations that become client methods. The zero value
// includes everything.
type Filter struct {
	tags map[string]bool
	ids  map[string]bool
}

// NewFilter builds a filter from tag names and operation ids. Entries are
// trimmed; blank ones are ignored.
func NewFilter(tags, operationIDs []string) Filter {
	return Filter{tags: toSet(tags), ids: toSet(operationIDs)}
}

// Empty reports whether the filter has no criteria.
func (f Filter) Empty() bool { return len(f.tags) == 0 && len(f.ids) == 0 }

// Include reports whether op, whose resolved id is id, passes the filter.
// An operation matches when one of its tags is selected or its id is; only
// operations with tags, or with an id while ids are selected, are considered.
func (f Filter) Include(op spec.Operation, id string) bool {
	if f.Empty() {
		return true
	}
	id = strings.TrimSpace(id)
	if len(op.Tags) == 0 && (len(f.ids) == 0 || id == "") {
		return false
	}
	for _, tag := range op.Tags {
		if f.tags[strings.TrimSpace(tag)] {
			return true
		}
	}
	return id != "" && f.ids[id]
}

// Tags returns the selected tags, sorted.
func (f Filter) Tags() []string { return sortedKeys(f.tags) }

// OperationIDs returns the selected operation ids, sorted.
func (f Filter) OperationIDs() []string { return sortedKeys(f.ids) }

func toSet(values []string) map[string]bool {
	var set map[string]bool
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if set == nil {
			set = map[string]bool{}
		}
		set[v] = true
	}
	return set
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
