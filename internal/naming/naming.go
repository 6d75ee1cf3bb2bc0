// Package naming derives file stems and TypeScript identifiers from names
// found in an API description.
package naming

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultTag is the group used for operations that declare no tags.
const DefaultTag = "default"

// TagToFile maps a tag to a file stem: lower-cased, every run of characters
// outside [a-z0-9] replaced by one hyphen, leading and trailing hyphens
// trimmed. Distinct tags that differ only in punctuation share a stem. A tag
// with no usable characters maps to DefaultTag.
func TagToFile(tag string) string {
	lower := cases.Lower(language.Und).String(tag)
	var b strings.Builder
	pendingDash := false
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	if b.Len() == 0 {
		return DefaultTag
	}
	return b.String()
}

// Camel joins the alphanumeric runs of s, upper-casing the first character
// after each separator run and lower-casing a leading capital. Other letters
// keep their case: "get-user_byID" becomes "getUserByID".
func Camel(s string) string {
	var b strings.Builder
	upperNext := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isAlnum(c) {
			upperNext = b.Len() > 0 || upperNext
			continue
		}
		if upperNext && c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upperNext = false
		b.WriteByte(c)
	}
	out := b.String()
	if out != "" && out[0] >= 'A' && out[0] <= 'Z' {
		out = string(out[0]+('a'-'A')) + out[1:]
	}
	return guardLeadingDigit(out)
}

// Pascal is Camel with the first letter upper-cased.
func Pascal(s string) string {
	out := Camel(s)
	if out != "" && out[0] >= 'a' && out[0] <= 'z' {
		out = string(out[0]-('a'-'A')) + out[1:]
	}
	return out
}

// RefName returns the type name a $ref points at: its last path segment,
// JSON-pointer unescaped and made a valid identifier.
func RefName(ref string) string {
	seg := ref
	if idx := strings.LastIndex(ref, "/"); idx >= 0 {
		seg = ref[idx+1:]
	}
	seg = strings.NewReplacer("~1", "/", "~0", "~").Replace(seg)
	return TypeName(seg)
}

// TypeName turns a schema name into a declarable identifier. Valid names are
// returned unchanged; otherwise each illegal character becomes '_'.
func TypeName(name string) string {
	if name == "" {
		return "Unknown"
	}
	if IsIdentifier(name) {
		return name
	}
	b := []byte(name)
	for i, c := range b {
		if !isAlnum(c) && c != '_' && c != '$' {
			b[i] = '_'
		}
	}
	return guardLeadingDigit(string(b))
}

// PropertyKey renders an object member name, quoting it when it is not a
// plain identifier.
func PropertyKey(name string) string {
	if IsIdentifier(name) {
		return name
	}
	return StringLiteral(name)
}

// Accessor renders a member access on obj, using bracket notation for names
// that are not identifiers.
func Accessor(obj, name string) string {
	if IsIdentifier(name) {
		return obj + "." + name
	}
	return obj + "[" + StringLiteral(name) + "]"
}

// StringLiteral renders s as a single-quoted TypeScript string.
func StringLiteral(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)
	return "'" + r.Replace(s) + "'"
}

// TemplateText escapes s for use as literal text inside a backtick template
// literal.
func TemplateText(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "`", "\\`", "${", `\${`)
	return r.Replace(s)
}

// DocText flattens a description for use inside a /** */ comment. Empty
// input yields "".
func DocText(desc string) string {
	flat := strings.Join(strings.Fields(desc), " ")
	return strings.ReplaceAll(flat, "*/", `*\/`)
}

// IsIdentifier reports whether s is an ASCII JavaScript identifier.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_' || c == '$':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		case isAlnum(c):
		default:
			return false
		}
	}
	return true
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func guardLeadingDigit(s string) string {
	if s == "" || (s[0] >= '0' && s[0] <= '9') {
		return "_" + s
	}
	return s
}
