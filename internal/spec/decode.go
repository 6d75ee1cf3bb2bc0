package spec

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// decoder turns a parsed yaml.Node tree into a Document. Every lookup
// tolerates missing or mistyped fields; nothing here returns an error.
type decoder struct {
	parameters    *yaml.Node // components.parameters
	requestBodies *yaml.Node // components.requestBodies
	responses     *yaml.Node // components.responses
}

var httpMethods = map[string]HttpMethod{
	"get":     GET,
	"put":     PUT,
	"post":    POST,
	"delete":  DELETE,
	"options": OPTIONS,
	"head":    HEAD,
	"patch":   PATCH,
	"trace":   TRACE,
}

func decodeDocument(root *yaml.Node) *Document {
	root = deref(root)
	doc := &Document{}
	if root == nil || root.Kind != yaml.MappingNode {
		return doc
	}
	doc.OpenAPI = scalar(lookup(root, "openapi"))
	if doc.OpenAPI == "" {
		doc.OpenAPI = scalar(lookup(root, "swagger"))
	}
	if info := lookup(root, "info"); info != nil {
		doc.Title = strings.TrimSpace(scalar(lookup(info, "title")))
		doc.Version = strings.TrimSpace(scalar(lookup(info, "version")))
	}

	components := lookup(root, "components")
	d := &decoder{
		parameters:    lookup(components, "parameters"),
		requestBodies: lookup(components, "requestBodies"),
		responses:     lookup(components, "responses"),
	}

	forEachPair(lookup(components, "schemas"), func(name string, value *yaml.Node) {
		doc.Schemas = append(doc.Schemas, NamedSchema{Name: name, Schema: decodeSchema(value)})
	})

	forEachPair(lookup(root, "paths"), func(template string, value *yaml.Node) {
		doc.Paths = append(doc.Paths, d.pathItem(template, value))
	})
	return doc
}

func (d *decoder) pathItem(template string, n *yaml.Node) PathItem {
	item := PathItem{Template: template}
	forEachPair(n, func(key string, value *yaml.Node) {
		if key == "parameters" {
			item.Parameters = d.parameterList(value)
			return
		}
		method, ok := httpMethods[strings.ToLower(key)]
		if !ok {
			return
		}
		item.Operations = append(item.Operations, d.operation(method, value))
	})
	return item
}

func (d *decoder) operation(method HttpMethod, n *yaml.Node) Operation {
	op := Operation{
		Method:      method,
		OperationID: strings.TrimSpace(scalar(lookup(n, "operationId"))),
		Summary:     strings.TrimSpace(scalar(lookup(n, "summary"))),
		Description: strings.TrimSpace(scalar(lookup(n, "description"))),
		Parameters:  d.parameterList(lookup(n, "parameters")),
	}
	seen := map[string]struct{}{}
	for _, t := range sequence(lookup(n, "tags")) {
		tag := strings.TrimSpace(scalar(t))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		op.Tags = append(op.Tags, tag)
	}
	if rb := d.component(lookup(n, "requestBody"), d.requestBodies); rb != nil {
		op.RequestBody = &RequestBody{
			Required: boolean(lookup(rb, "required")),
			Content:  mediaList(lookup(rb, "content")),
		}
	}
	forEachPair(lookup(n, "responses"), func(status string, value *yaml.Node) {
		r := d.component(value, d.responses)
		if r == nil {
			return
		}
		op.Responses = append(op.Responses, Response{
			Status:      status,
			Description: strings.TrimSpace(scalar(lookup(r, "description"))),
			Content:     mediaList(lookup(r, "content")),
		})
	})
	return op
}

func (d *decoder) parameterList(n *yaml.Node) []Parameter {
	var out []Parameter
	for _, item := range sequence(n) {
		p := d.component(item, d.parameters)
		if p == nil {
			continue
		}
		param := Parameter{
			Name:        strings.TrimSpace(scalar(lookup(p, "name"))),
			In:          strings.TrimSpace(scalar(lookup(p, "in"))),
			Required:    boolean(lookup(p, "required")),
			Description: strings.TrimSpace(scalar(lookup(p, "description"))),
		}
		if param.Name == "" {
			continue
		}
		if sn := lookup(p, "schema"); sn != nil {
			param.Schema = decodeSchema(sn)
		}
		out = append(out, param)
	}
	return out
}

// component follows a single local $ref into the given components section.
// Inline objects are returned as-is; unresolvable refs yield nil.
func (d *decoder) component(n, section *yaml.Node) *yaml.Node {
	n = deref(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	ref := scalar(lookup(n, "$ref"))
	if ref == "" {
		return n
	}
	idx := strings.LastIndex(ref, "/")
	target := deref(lookup(section, unescapePointer(ref[idx+1:])))
	if target == nil || target.Kind != yaml.MappingNode {
		return nil
	}
	return target
}

func mediaList(n *yaml.Node) []Media {
	var out []Media
	forEachPair(n, func(mime string, value *yaml.Node) {
		m := Media{Mime: strings.TrimSpace(mime)}
		if sn := lookup(value, "schema"); sn != nil {
			m.Schema = decodeSchema(sn)
		}
		out = append(out, m)
	})
	return out
}

func decodeSchema(n *yaml.Node) *Schema {
	n = deref(n)
	if n == nil {
		return &Schema{Kind: KindUnknown}
	}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!bool" && n.Value == "true" {
		return &Schema{Kind: KindEmpty}
	}
	if n.Kind != yaml.MappingNode {
		return &Schema{Kind: KindUnknown}
	}

	s := &Schema{
		Description: strings.TrimSpace(scalar(lookup(n, "description"))),
		Nullable:    boolean(lookup(n, "nullable")),
		Format:      strings.TrimSpace(scalar(lookup(n, "format"))),
	}
	typ, nullable := schemaType(lookup(n, "type"))
	if nullable {
		s.Nullable = true
	}

	if ref := strings.TrimSpace(scalar(lookup(n, "$ref"))); ref != "" {
		s.Kind = KindReference
		s.Ref = ref
		return s
	}

	for _, kind := range []CompositeKind{AllOf, OneOf, AnyOf} {
		members := sequence(lookup(n, string(kind)))
		if len(members) == 0 {
			continue
		}
		s.Kind = KindComposite
		s.Composite = kind
		for _, m := range members {
			s.Members = append(s.Members, decodeSchema(m))
		}
		return s
	}

	for _, v := range sequence(lookup(n, "enum")) {
		if ev, ok := enumValue(v); ok {
			s.Enum = append(s.Enum, ev)
		}
	}
	if len(s.Enum) > 0 {
		s.Kind = KindEnum
		return s
	}

	props := deref(lookup(n, "properties"))
	switch {
	case typ == "array":
		s.Kind = KindArray
		if items := lookup(n, "items"); items != nil {
			s.Items = decodeSchema(items)
		}
	case typ == "object" || (props != nil && props.Kind == yaml.MappingNode):
		s.Kind = KindObject
		forEachPair(props, func(name string, value *yaml.Node) {
			s.Properties = append(s.Properties, Property{Name: name, Schema: decodeSchema(value)})
		})
		for _, r := range sequence(lookup(n, "required")) {
			if name := scalar(r); name != "" {
				s.Required = append(s.Required, name)
			}
		}
		if ap := deref(lookup(n, "additionalProperties")); ap != nil && ap.Kind == yaml.MappingNode {
			s.AdditionalProperties = decodeSchema(ap)
		}
	case typ == "string" || typ == "number" || typ == "integer" || typ == "boolean":
		s.Kind = KindPrimitive
		s.Type = typ
	case typ == "":
		s.Kind = KindEmpty
	default:
		s.Kind = KindUnknown
		s.Type = typ
	}
	return s
}

// schemaType reads "type" as either a string or an OpenAPI 3.1 list. A "null"
// member marks the schema nullable; the first other member wins.
func schemaType(n *yaml.Node) (string, bool) {
	n = deref(n)
	if n == nil {
		return "", false
	}
	if n.Kind == yaml.ScalarNode {
		t := strings.TrimSpace(n.Value)
		if t == "null" {
			return "", true
		}
		return t, false
	}
	var typ string
	nullable := false
	for _, item := range sequence(n) {
		t := strings.TrimSpace(scalar(item))
		switch {
		case t == "null":
			nullable = true
		case typ == "":
			typ = t
		}
	}
	return typ, nullable
}

func enumValue(n *yaml.Node) (EnumValue, bool) {
	n = deref(n)
	if n == nil || n.Kind != yaml.ScalarNode {
		return EnumValue{}, false
	}
	switch n.Tag {
	case "!!int", "!!float":
		return EnumValue{Literal: n.Value}, true
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return EnumValue{Literal: n.Value, Textual: true}, true
		}
		if b {
			return EnumValue{Literal: "true"}, true
		}
		return EnumValue{Literal: "false"}, true
	case "!!null":
		return EnumValue{Literal: "null"}, true
	}
	return EnumValue{Literal: n.Value, Textual: true}, true
}

func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n != nil && n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return nil
		}
		return deref(n.Content[0])
	}
	return n
}

func lookup(n *yaml.Node, key string) *yaml.Node {
	n = deref(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return deref(n.Content[i+1])
		}
	}
	return nil
}

// forEachPair visits mapping entries in document order.
func forEachPair(n *yaml.Node, fn func(key string, value *yaml.Node)) {
	n = deref(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		fn(n.Content[i].Value, deref(n.Content[i+1]))
	}
}

func sequence(n *yaml.Node) []*yaml.Node {
	n = deref(n)
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil
	}
	return n.Content
}

func scalar(n *yaml.Node) string {
	n = deref(n)
	if n == nil || n.Kind != yaml.ScalarNode {
		return ""
	}
	return n.Value
}

func boolean(n *yaml.Node) bool {
	n = deref(n)
	if n == nil || n.Kind != yaml.ScalarNode {
		return false
	}
	var b bool
	if err := n.Decode(&b); err != nil {
		return false
	}
	return b
}

func unescapePointer(s string) string {
	return strings.NewReplacer("~1", "/", "~0", "~").Replace(s)
}
