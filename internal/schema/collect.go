package schema

import (
	"sort"

	"github.com/mark3labs/swagger2rtk/internal/naming"
	"github.com/mark3labs/swagger2rtk/internal/spec"
)

// NameSet is a set of referenced type names.
type NameSet map[string]struct{}

// Sorted returns the names in lexical order.
func (n NameSet) Sorted() []string {
	out := make([]string, 0, len(n))
	for name := range n {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// CollectReferences adds to into the name of every reference reachable from
// s through array items, object properties, composite members and
// additionalProperties. References themselves are not followed. Names are
// the same ones Translate renders.
func CollectReferences(s *spec.Schema, into NameSet) {
	if s == nil {
		return
	}
	if s.Kind == spec.KindReference {
		into[naming.RefName(s.Ref)] = struct{}{}
		return
	}
	CollectReferences(s.Items, into)
	for _, p := range s.Properties {
		CollectReferences(p.Schema, into)
	}
	for _, m := range s.Members {
		CollectReferences(m, into)
	}
	CollectReferences(s.AdditionalProperties, into)
}
