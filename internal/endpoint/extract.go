// Package endpoint groups a document's operations by tag and derives the
// argument, response and invocation bindings for each of them.
package endpoint

import (
	"strings"

	"github.com/mark3labs/swagger2rtk/internal/naming"
	"github.com/mark3labs/swagger2rtk/internal/spec"
)

// BodyKind names the content family a request body was taken from.
type BodyKind string

const (
	BodyJSON      BodyKind = "json"
	BodyMultipart BodyKind = "multipart"
	BodyForm      BodyKind = "form"
)

// Descriptor is one operation as seen by the generator.
type Descriptor struct {
	Method      spec.HttpMethod
	Path        string
	OperationID string
	Tags        []string
	Summary     string
	Description string
	PathParams  []spec.Parameter
	QueryParams []spec.Parameter

	// Body is nil when the operation declares no usable request body.
	Body     *spec.Schema
	BodyKind BodyKind

	// Response is nil when no success status carries a JSON schema.
	Response            *spec.Schema
	ResponseStatus      string
	ResponseDescription string
}

// HasBody reports whether the argument type gets a body field.
func (d Descriptor) HasBody() bool { return d.Body != nil && !d.Body.IsEmpty() }

// TagGroup is the ordered list of endpoints that share a tag.
type TagGroup struct {
	Tag       string
	Endpoints []Descriptor
}

// Option configures Extract.
type Option func(*extractConfig)

type extractConfig struct {
	includeTags map[string]struct{}
	excludeTags map[string]struct{}
}

// WithIncludeTags keeps only the groups whose tag is listed.
func WithIncludeTags(tags []string) Option {
	return func(c *extractConfig) {
		c.includeTags = addTags(c.includeTags, tags)
	}
}

// WithExcludeTags drops the groups whose tag is listed.
func WithExcludeTags(tags []string) Option {
	return func(c *extractConfig) {
		c.excludeTags = addTags(c.excludeTags, tags)
	}
}

func addTags(set map[string]struct{}, tags []string) map[string]struct{} {
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if set == nil {
			set = make(map[string]struct{}, len(tags))
		}
		set[t] = struct{}{}
	}
	return set
}

func (c *extractConfig) allow(tag string) bool {
	if len(c.includeTags) > 0 {
		if _, ok := c.includeTags[tag]; !ok {
			return false
		}
	}
	_, blocked := c.excludeTags[tag]
	return !blocked
}

// Extract walks paths then methods in document order and returns one group
// per tag, ordered by first appearance. Operations without an operationId are
// skipped; untagged operations land in the "default" group; an operation with
// several tags is listed in each of them.
func Extract(doc *spec.Document, opts ...Option) []TagGroup {
	cfg := &extractConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if doc == nil {
		return nil
	}

	var groups []TagGroup
	index := map[string]int{}
	for _, item := range doc.Paths {
		for _, op := range item.Operations {
			if op.OperationID == "" {
				continue
			}
			d := describe(item, op)
			for _, tag := range d.Tags {
				if !cfg.allow(tag) {
					continue
				}
				i, ok := index[tag]
				if !ok {
					i = len(groups)
					index[tag] = i
					groups = append(groups, TagGroup{Tag: tag})
				}
				groups[i].Endpoints = append(groups[i].Endpoints, d)
			}
		}
	}
	return groups
}

func describe(item spec.PathItem, op spec.Operation) Descriptor {
	d := Descriptor{
		Method:      op.Method,
		Path:        item.Template,
		OperationID: op.OperationID,
		Tags:        op.Tags,
		Summary:     op.Summary,
		Description: op.Description,
	}
	if len(d.Tags) == 0 {
		d.Tags = []string{naming.DefaultTag}
	}
	for _, p := range mergeParameters(item.Parameters, op.Parameters) {
		switch p.In {
		case "path":
			d.PathParams = append(d.PathParams, p)
		case "query":
			d.QueryParams = append(d.QueryParams, p)
		}
	}
	if op.RequestBody != nil {
		d.Body, d.BodyKind = requestBody(op.RequestBody.Content)
	}
	d.Response, d.ResponseStatus, d.ResponseDescription = successResponse(op.Responses)
	return d
}

// mergeParameters keeps path-level parameters first; an operation parameter
// with the same location and name replaces its path-level counterpart in
// place.
func mergeParameters(shared, own []spec.Parameter) []spec.Parameter {
	out := make([]spec.Parameter, 0, len(shared)+len(own))
	pos := map[string]int{}
	for _, list := range [][]spec.Parameter{shared, own} {
		for _, p := range list {
			key := paramKey(p.In, p.Name)
			if i, ok := pos[key]; ok {
				out[i] = p
				continue
			}
			pos[key] = len(out)
			out = append(out, p)
		}
	}
	return out
}

func paramKey(in, name string) string { return in + ":" + name }

// requestBody picks the body schema by content priority: JSON, then
// multipart form, then url-encoded form.
func requestBody(content []spec.Media) (*spec.Schema, BodyKind) {
	if m := jsonMedia(content); m != nil {
		return m.Schema, BodyJSON
	}
	if m := mediaOfType(content, "multipart/form-data"); m != nil {
		return m.Schema, BodyMultipart
	}
	if m := mediaOfType(content, "application/x-www-form-urlencoded"); m != nil {
		return m.Schema, BodyForm
	}
	return nil, ""
}

// successResponse takes the first present status among 200, 201 and then any
// other 2xx in document order. Only a JSON media entry supplies the schema.
func successResponse(responses []spec.Response) (*spec.Schema, string, string) {
	var chosen *spec.Response
	for _, want := range []string{"200", "201"} {
		for i := range responses {
			if responses[i].Status == want {
				chosen = &responses[i]
				break
			}
		}
		if chosen != nil {
			break
		}
	}
	if chosen == nil {
		for i := range responses {
			s := strings.ToUpper(responses[i].Status)
			if len(s) == 3 && s[0] == '2' {
				chosen = &responses[i]
				break
			}
		}
	}
	if chosen == nil {
		return nil, "", ""
	}
	m := jsonMedia(chosen.Content)
	if m == nil || m.Schema == nil {
		return nil, chosen.Status, chosen.Description
	}
	return m.Schema, chosen.Status, chosen.Description
}

// jsonMedia prefers an exact application/json entry, then any
// application/json variant with parameters or a +json suffix.
func jsonMedia(content []spec.Media) *spec.Media {
	if m := mediaOfType(content, "application/json"); m != nil {
		return m
	}
	for i := range content {
		mt := mediaType(content[i].Mime)
		if strings.HasSuffix(mt, "+json") {
			return &content[i]
		}
	}
	return nil
}

func mediaOfType(content []spec.Media, want string) *spec.Media {
	for i := range content {
		if strings.EqualFold(content[i].Mime, want) {
			return &content[i]
		}
	}
	for i := range content {
		if mediaType(content[i].Mime) == want {
			return &content[i]
		}
	}
	return nil
}

func mediaType(mime string) string {
	if idx := strings.IndexByte(mime, ';'); idx >= 0 {
		mime = mime[:idx]
	}
	return strings.ToLower(strings.TrimSpace(mime))
}
