package schema

import (
	"strings"

	"github.com/mark3labs/swagger2rtk/internal/naming"
	"github.com/mark3labs/swagger2rtk/internal/spec"
)

// Declaration renders the top-level export for a named schema:
//   - enums become a literal union type alias;
//   - objects with properties become an interface;
//   - property-less objects without additionalProperties become an empty
//     interface;
//   - everything else becomes a type alias of its translation.
//
// Nullable objects are rendered as aliases so the null member survives.
func Declaration(name string, s *spec.Schema) string {
	name = naming.TypeName(name)
	if s != nil && s.Kind == spec.KindObject && !s.Nullable {
		switch {
		case len(s.Properties) > 0:
			return "export interface " + name + " {\n" + strings.Join(members(s, ""), "\n") + "\n}"
		case s.AdditionalProperties == nil:
			return "export interface " + name + " {}"
		}
	}
	return "export type " + name + " = " + Translate(s, "") + ";"
}
