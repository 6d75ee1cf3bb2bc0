// Package schema renders decoded schemas as TypeScript type text and collects
// the named types they reference.
package schema

import (
	"strings"

	"github.com/mark3labs/swagger2rtk/internal/naming"
	"github.com/mark3labs/swagger2rtk/internal/spec"
)

// Unknown is the type marker for schemas with no usable type information.
const Unknown = "unknown"

// emptyPropertyType is what a property with an empty schema renders as.
// Several server frameworks emit {} for nullable scalar fields.
const emptyPropertyType = "string | null"

// Translate renders s as a TypeScript type expression. indent is the
// whitespace already in front of the line the expression starts on; object
// members are written two spaces further in. The result is never empty.
// References render as the target's name only, so cyclic graphs terminate.
func Translate(s *spec.Schema, indent string) string {
	t := translate(s, indent)
	if s != nil && s.Nullable && t != Unknown && !enumHasNull(s) {
		t += " | null"
	}
	return t
}

func translate(s *spec.Schema, indent string) string {
	if s == nil {
		return Unknown
	}
	switch s.Kind {
	case spec.KindReference:
		return naming.RefName(s.Ref)
	case spec.KindComposite:
		return composite(s, indent)
	case spec.KindEnum:
		return enumUnion(s.Enum)
	case spec.KindArray:
		if s.Items == nil {
			return Unknown + "[]"
		}
		item := Translate(s.Items, indent)
		if isUnion(s.Items) || isIntersection(s.Items) {
			return "(" + item + ")[]"
		}
		return item + "[]"
	case spec.KindObject:
		return objectLiteral(s, indent)
	case spec.KindPrimitive:
		switch s.Type {
		case "string":
			if s.Format == "binary" {
				return "Blob"
			}
			return "string"
		case "number", "integer":
			return "number"
		case "boolean":
			return "boolean"
		}
	}
	return Unknown
}

func composite(s *spec.Schema, indent string) string {
	if len(s.Members) == 0 {
		return Unknown
	}
	sep := " | "
	if s.Composite == spec.AllOf {
		sep = " & "
	}
	parts := make([]string, 0, len(s.Members))
	for _, m := range s.Members {
		part := Translate(m, indent)
		if s.Composite == spec.AllOf && isUnion(m) {
			part = "(" + part + ")"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, sep)
}

// isUnion reports whether m translates to a top-level union, which needs
// parentheses inside an intersection.
func isUnion(m *spec.Schema) bool {
	if m == nil {
		return false
	}
	if m.Nullable && translate(m, "") != Unknown {
		return true
	}
	switch m.Kind {
	case spec.KindEnum:
		return len(m.Enum) > 1
	case spec.KindComposite:
		return m.Composite != spec.AllOf && len(m.Members) > 1
	}
	return false
}

func isIntersection(m *spec.Schema) bool {
	return m != nil && m.Kind == spec.KindComposite && m.Composite == spec.AllOf && len(m.Members) > 1
}

func enumUnion(values []spec.EnumValue) string {
	if len(values) == 0 {
		return Unknown
	}
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v.Textual {
			parts = append(parts, naming.StringLiteral(v.Literal))
			continue
		}
		parts = append(parts, v.Literal)
	}
	return strings.Join(parts, " | ")
}

func enumHasNull(s *spec.Schema) bool {
	if s.Kind != spec.KindEnum {
		return false
	}
	for _, v := range s.Enum {
		if !v.Textual && v.Literal == "null" {
			return true
		}
	}
	return false
}

func objectLiteral(s *spec.Schema, indent string) string {
	if len(s.Properties) == 0 {
		if s.AdditionalProperties != nil {
			return "Record<string, " + Translate(s.AdditionalProperties, indent) + ">"
		}
		return Unknown
	}
	lines := members(s, indent)
	return "{\n" + indent + strings.Join(lines, "\n"+indent) + "\n" + indent + "}"
}

// members renders one line (plus an optional doc line) per property in
// declaration order. Lines carry a two-space lead; continuation lines of a
// description are already prefixed with indent.
func members(s *spec.Schema, indent string) []string {
	lines := make([]string, 0, len(s.Properties))
	for _, p := range s.Properties {
		lines = append(lines, Field(p.Name, p.Schema, s.IsRequired(p.Name), indent))
	}
	return lines
}

// Field renders the member line for an object property. Empty property
// schemas render as "string | null".
func Field(name string, s *spec.Schema, required bool, indent string) string {
	typ := emptyPropertyType
	if !s.IsEmpty() {
		typ = Translate(s, indent+"  ")
	}
	var desc string
	if s != nil {
		desc = s.Description
	}
	return Member(name, typ, desc, required, indent)
}

// Member renders `  key?: type;`, preceded by a doc comment line when
// description is non-empty.
func Member(name, typ, description string, required bool, indent string) string {
	var b strings.Builder
	if d := naming.DocText(description); d != "" {
		b.WriteString("  /** " + d + " */\n" + indent)
	}
	b.WriteString("  ")
	b.WriteString(naming.PropertyKey(name))
	if !required {
		b.WriteByte('?')
	}
	b.WriteString(": ")
	b.WriteString(typ)
	b.WriteByte(';')
	return b.String()
}
