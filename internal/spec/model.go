package spec

// Document model produced by the decoding pass and consumed by the extractor,
// the translator and the emitter. Slices keep source document order.

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

// Document is the decoded API description. It is read-only once returned by
// the loader.
type Document struct {
	OpenAPI string // "3.x" or, for converted Swagger documents, "2.0"
	Title   string
	Version string
	Paths   []PathItem
	Schemas []NamedSchema
}

// NamedSchema is one entry of components.schemas.
type NamedSchema struct {
	Name   string
	Schema *Schema
}

type PathItem struct {
	Template   string
	Parameters []Parameter // path-item level, merged into each operation by the extractor
	Operations []Operation
}

type Operation struct {
	Method      HttpMethod
	OperationID string
	Summary     string
	Description string
	Tags        []string
	Parameters  []Parameter
	RequestBody *RequestBody
	Responses   []Response
}

type Parameter struct {
	Name        string
	In          string // path|query|header|cookie
	Required    bool
	Description string
	Schema      *Schema
}

type RequestBody struct {
	Required bool
	Content  []Media
}

type Response struct {
	Status      string // 200, 4xx, default
	Description string
	Content     []Media
}

type Media struct {
	Mime   string
	Schema *Schema
}

// SchemaKind discriminates the Schema variants.
type SchemaKind string

const (
	KindEmpty     SchemaKind = "empty"
	KindReference SchemaKind = "reference"
	KindArray     SchemaKind = "array"
	KindObject    SchemaKind = "object"
	KindEnum      SchemaKind = "enum"
	KindComposite SchemaKind = "composite"
	KindPrimitive SchemaKind = "primitive"
	KindUnknown   SchemaKind = "unknown"
)

type CompositeKind string

const (
	AllOf CompositeKind = "allOf"
	OneOf CompositeKind = "oneOf"
	AnyOf CompositeKind = "anyOf"
)

// Schema is a tagged structural description of a type. Only the fields that
// belong to Kind are populated; Description, Nullable and Format may appear on
// any variant.
type Schema struct {
	Kind        SchemaKind
	Description string
	Nullable    bool

	// KindReference
	Ref string

	// KindArray; nil when the array declares no items
	Items *Schema

	// KindObject
	Properties           []Property
	Required             []string
	AdditionalProperties *Schema

	// KindEnum
	Enum []EnumValue

	// KindComposite
	Composite CompositeKind
	Members   []*Schema

	// KindPrimitive holds string|number|integer|boolean; KindUnknown keeps
	// whatever unsupported type name the source declared.
	Type   string
	Format string
}

// Property is one named member of an object schema.
type Property struct {
	Name   string
	Schema *Schema
}

// EnumValue is a literal from an enum list. Textual literals are quoted when
// rendered; everything else is emitted verbatim.
type EnumValue struct {
	Literal string
	Textual bool
}

// IsRequired reports whether name appears in the object's required list.
func (s *Schema) IsRequired(name string) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the schema declares nothing: no type, enum,
// composition, properties or reference. Objects without properties or a
// typed additionalProperties count as empty too. A schema with an
// unsupported declared type is not empty.
func (s *Schema) IsEmpty() bool {
	if s == nil {
		return true
	}
	switch s.Kind {
	case KindEmpty:
		return true
	case KindObject:
		return len(s.Properties) == 0 && s.AdditionalProperties == nil
	}
	return false
}
