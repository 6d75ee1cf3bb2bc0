package spec

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"gopkg.in/yaml.v3"
)

// convertV2 turns Swagger 2.0 bytes (JSON or YAML) into OpenAPI 3 JSON. Key
// order of the result is whatever kin-openapi's marshaller produces.
func convertV2(raw []byte) ([]byte, error) {
	if fixed, changed, err := preprocessV2ForCompatibility(raw); err == nil && changed {
		raw = fixed
	}
	var tree any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}
	asJSON, err := json.Marshal(jsonCompatible(tree))
	if err != nil {
		return nil, err
	}
	var v2 openapi2.T
	if err := json.Unmarshal(asJSON, &v2); err != nil {
		return nil, err
	}
	v3, err := openapi2conv.ToV3(&v2)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v3)
}

// jsonCompatible rewrites map[any]any (produced for non-string YAML keys such
// as unquoted status codes) into map[string]any.
func jsonCompatible(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			val[k] = jsonCompatible(item)
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = jsonCompatible(item)
		}
		return out
	case []any:
		for i, item := range val {
			val[i] = jsonCompatible(item)
		}
		return val
	default:
		return v
	}
}

// preprocessV2ForCompatibility rewrites Swagger 2.0 operations that
// openapi2conv rejects:
//   - several body parameters are merged into one object body;
//   - body parameters mixed with formData become formData fields and the
//     operation consumes multipart/form-data.
//
// On error the original bytes are returned with changed=false.
func preprocessV2ForCompatibility(data []byte) ([]byte, bool, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return data, false, err
	}
	paths, ok := doc["paths"].(map[string]any)
	if !ok || len(paths) == 0 {
		return data, false, nil
	}

	changed := false
	for _, item := range paths {
		ops, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for method, raw := range ops {
			if _, known := httpMethods[strings.ToLower(method)]; !known {
				continue
			}
			op, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if rewriteBodyParams(op) {
				changed = true
			}
		}
	}
	if !changed {
		return data, false, nil
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return data, false, err
	}
	return out, true, nil
}

func rewriteBodyParams(op map[string]any) bool {
	params, ok := op["parameters"].([]any)
	if !ok || len(params) == 0 {
		return false
	}
	bodies, hasForm := 0, false
	for _, p := range params {
		switch strings.ToLower(paramIn(p)) {
		case "body":
			bodies++
		case "formdata":
			hasForm = true
		}
	}
	switch {
	case bodies == 0:
		return false
	case hasForm:
		op["parameters"] = bodyParamsToFormData(params)
		consumes, _ := op["consumes"].([]any)
		if !containsString(consumes, "multipart/form-data") {
			op["consumes"] = append(consumes, "multipart/form-data")
		}
		return true
	case bodies > 1:
		op["parameters"] = mergeBodyParams(params)
		return true
	}
	return false
}

func mergeBodyParams(params []any) []any {
	props := map[string]any{}
	var required []any
	rest := make([]any, 0, len(params))
	for _, p := range params {
		pm, _ := p.(map[string]any)
		if pm == nil {
			continue
		}
		if !strings.EqualFold(paramIn(pm), "body") {
			rest = append(rest, pm)
			continue
		}
		name := asString(pm["name"])
		if name == "" {
			name = "field"
		}
		schema := extractSchemaFromParam(pm)
		if schema == nil {
			schema = map[string]any{"type": "string"}
		}
		props[name] = schema
		if req, _ := pm["required"].(bool); req {
			required = append(required, name)
		}
	}
	body := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		body["required"] = required
	}
	merged := map[string]any{"in": "body", "name": "body", "schema": body}
	return append([]any{merged}, rest...)
}

func bodyParamsToFormData(params []any) []any {
	out := make([]any, 0, len(params))
	for _, p := range params {
		pm, _ := p.(map[string]any)
		if pm == nil {
			continue
		}
		if strings.EqualFold(paramIn(pm), "body") {
			out = append(out, formDataFromBodyParam(pm))
			continue
		}
		out = append(out, pm)
	}
	return out
}

func paramIn(p any) string {
	pm, _ := p.(map[string]any)
	if pm == nil {
		return ""
	}
	return asString(pm["in"])
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func containsString(list []any, want string) bool {
	for _, v := range list {
		if s, ok := v.(string); ok && s == want {
			return true
		}
	}
	return false
}

func extractSchemaFromParam(pm map[string]any) map[string]any {
	if sch, ok := pm["schema"].(map[string]any); ok {
		return sch
	}
	t, _ := pm["type"].(string)
	if t == "" {
		return nil
	}
	m := map[string]any{"type": t}
	if it, ok := pm["items"].(map[string]any); ok {
		m["items"] = it
	}
	if f, ok := pm["format"].(string); ok && f != "" {
		m["format"] = f
	}
	return m
}

// formDataFromBodyParam degrades a body parameter to a formData field; a
// referenced object cannot be expressed there and becomes a string.
func formDataFromBodyParam(pm map[string]any) map[string]any {
	name := asString(pm["name"])
	if name == "" {
		name = "field"
	}
	out := map[string]any{"in": "formData", "name": name}
	if desc := asString(pm["description"]); desc != "" {
		out["description"] = desc
	}
	if req, ok := pm["required"].(bool); ok {
		out["required"] = req
	}
	src := pm
	if sch, ok := pm["schema"].(map[string]any); ok {
		src = sch
	}
	typ := asString(src["type"])
	if typ == "" {
		typ = "string"
	}
	out["type"] = typ
	if items, ok := src["items"].(map[string]any); ok {
		out["items"] = items
	}
	if f := asString(src["format"]); f != "" {
		out["format"] = f
	}
	return out
}
