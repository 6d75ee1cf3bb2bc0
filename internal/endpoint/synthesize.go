package endpoint

import (
	"strings"

	"github.com/mark3labs/swagger2rtk/internal/naming"
	"github.com/mark3labs/swagger2rtk/internal/schema"
	"github.com/mark3labs/swagger2rtk/internal/spec"
)

// argVar is the parameter name of generated query functions.
const argVar = "queryArg"

// TypeDef is a named local type declaration.
type TypeDef struct {
	Name string
	Def  string
}

// ParamBinding maps one query-string key to its argument expression.
type ParamBinding struct {
	Key  string
	Expr string
}

// Invocation describes the request a generated query function builds.
type Invocation struct {
	URL string
	// Method is the upper-case HTTP method; empty for GET.
	Method string
	// Body is the argument expression sent as the request body, if any.
	Body     string
	Params   []ParamBinding
	TakesArg bool
}

// Binding is everything the emitter needs to render one endpoint.
type Binding struct {
	Descriptor Descriptor
	// Name is the endpoint key inside injectEndpoints.
	Name string
	// Query is true for GET operations (build.query); the rest are mutations.
	Query        bool
	ArgType      TypeDef
	ResponseType TypeDef
	Invocation   Invocation
	// CacheTag is provided by queries and invalidated by mutations.
	CacheTag string
	Hook     string
}

// Synthesize derives the bindings for d inside the module for tag.
func Synthesize(d Descriptor, tag string) Binding {
	base := naming.Pascal(d.OperationID)
	b := Binding{
		Descriptor:   d,
		Name:         naming.Camel(d.OperationID),
		Query:        d.Method == spec.GET,
		ArgType:      argType(d, base+"ApiArg"),
		ResponseType: responseType(d, base+"Response"),
		Invocation:   invocation(d),
		CacheTag:     tag,
	}
	if b.Query {
		b.Hook = "use" + base + "Query"
	} else {
		b.Hook = "use" + base + "Mutation"
	}
	return b
}

// References adds every named type the binding's declarations use.
func (b Binding) References(into schema.NameSet) {
	d := b.Descriptor
	if d.HasBody() {
		schema.CollectReferences(d.Body, into)
	}
	schema.CollectReferences(d.Response, into)
	for _, p := range d.PathParams {
		schema.CollectReferences(p.Schema, into)
	}
	for _, p := range d.QueryParams {
		schema.CollectReferences(p.Schema, into)
	}
}

func argType(d Descriptor, name string) TypeDef {
	var fields []string
	for _, list := range [][]spec.Parameter{d.PathParams, d.QueryParams} {
		for _, p := range list {
			fields = append(fields, schema.Member(p.Name, schema.Translate(p.Schema, "  "), p.Description, p.Required, ""))
		}
	}
	if d.HasBody() {
		field, typ := bodyField(d.Body)
		fields = append(fields, schema.Member(field, typ, "", true, ""))
	}
	if len(fields) == 0 {
		return TypeDef{Name: name, Def: "export type " + name + " = void;"}
	}
	return TypeDef{Name: name, Def: "export type " + name + " = {\n" + strings.Join(fields, "\n") + "\n};"}
}

// bodyField names the argument field carrying the request body: a bare
// reference is named after its type, anything else is "body".
func bodyField(body *spec.Schema) (string, string) {
	if body.Kind == spec.KindReference && !body.Nullable {
		ref := naming.RefName(body.Ref)
		return naming.Camel(ref), ref
	}
	return "body", schema.Translate(body, "  ")
}

func responseType(d Descriptor, name string) TypeDef {
	if d.Response == nil {
		return TypeDef{Name: name, Def: "export type " + name + " = " + schema.Unknown + ";"}
	}
	var doc string
	if text := naming.DocText(d.ResponseDescription); text != "" {
		doc = " /** " + text + " */"
	}
	return TypeDef{Name: name, Def: "export type " + name + " =" + doc + " " + schema.Translate(d.Response, "") + ";"}
}

func invocation(d Descriptor) Invocation {
	// Literal path text is escaped first; placeholders are matched in their
	// escaped form.
	inv := Invocation{URL: naming.TemplateText(d.Path)}
	for _, p := range d.PathParams {
		inv.URL = strings.ReplaceAll(inv.URL, naming.TemplateText("{"+p.Name+"}"), "${"+naming.Accessor(argVar, p.Name)+"}")
	}
	if d.Method != spec.GET {
		inv.Method = strings.ToUpper(string(d.Method))
	}
	if d.HasBody() {
		field, _ := bodyField(d.Body)
		inv.Body = naming.Accessor(argVar, field)
	}
	for _, p := range d.QueryParams {
		inv.Params = append(inv.Params, ParamBinding{Key: naming.PropertyKey(p.Name), Expr: naming.Accessor(argVar, p.Name)})
	}
	inv.TakesArg = len(d.PathParams) > 0 || len(d.QueryParams) > 0 || d.HasBody()
	return inv
}
