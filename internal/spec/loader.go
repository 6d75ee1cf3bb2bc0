package spec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// ErrorCode categorizes loader errors for clearer handling and messaging.
type ErrorCode string

const (
	InputError      ErrorCode = "InputError"
	FetchError      ErrorCode = "FetchError"
	ParseError      ErrorCode = "ParseError"
	ConversionError ErrorCode = "ConversionError"
	ValidationError ErrorCode = "ValidationError"
)

// payloadPreview bounds how much of an unparseable payload is echoed back.
const payloadPreview = 200

// SpecError is a structured error with optional location and JSON Pointer.
type SpecError struct {
	Code        ErrorCode
	Message     string
	Location    string // file path or URL
	JSONPointer string // e.g. "#/paths/~1pets/get"
	Cause       error
}

func (e *SpecError) Error() string { return e.Message }
func (e *SpecError) Unwrap() error { return e.Cause }

// BasicAuth holds credentials sent with the document request.
type BasicAuth struct {
	Username string
	Password string
}

// Settings configures loader behavior.
type Settings struct {
	// HTTPTimeout bounds the single document request.
	HTTPTimeout time.Duration
	// BasicAuth is attached to http(s) requests when set.
	BasicAuth *BasicAuth
	// Client overrides the HTTP client, mainly for tests.
	Client *http.Client
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{HTTPTimeout: 30 * time.Second}
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option { return func(s *Settings) { s.HTTPTimeout = d } }
func WithHTTPClient(c *http.Client) Option   { return func(s *Settings) { s.Client = c } }

// WithBasicAuth sets credentials; it is a no-op unless both parts are present.
func WithBasicAuth(username, password string) Option {
	return func(s *Settings) {
		if username == "" || password == "" {
			return
		}
		s.BasicAuth = &BasicAuth{Username: username, Password: password}
	}
}

// Load fetches and decodes the API description at input, which may be an
// http(s) URL or a local file path. Swagger 2.0 documents are converted to
// OpenAPI 3 first. There is exactly one fetch attempt.
func Load(ctx context.Context, input string, opts ...Option) (*Document, error) {
	raw, location, err := Fetch(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return Parse(raw, location)
}

// Fetch reads the raw document bytes and returns them with the resolved
// location used in error messages.
func Fetch(ctx context.Context, input string, opts ...Option) ([]byte, string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, "", &SpecError{Code: InputError, Message: "spec: input is empty"}
	}

	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}

	u, uerr := url.Parse(input)
	isURL := uerr == nil && u.Scheme != "" && u.Host != ""
	if isURL {
		scheme := strings.ToLower(u.Scheme)
		if scheme == "file" {
			return nil, input, &SpecError{Code: InputError, Message: "spec: file:// URLs are not supported, pass a plain path", Location: input}
		}
		if scheme != "http" && scheme != "https" {
			return nil, input, &SpecError{Code: InputError, Message: fmt.Sprintf("spec: unsupported URL scheme %q (only http/https allowed)", scheme), Location: input}
		}
		raw, err := fetchURL(ctx, input, settings)
		if err != nil {
			return nil, input, &SpecError{Code: FetchError, Message: fmt.Sprintf("fetch %s: %v", input, err), Location: input, Cause: err}
		}
		return raw, input, nil
	}

	abs, err := filepath.Abs(input)
	if err != nil {
		return nil, input, &SpecError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: input, Cause: err}
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, abs, &SpecError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", abs, err), Location: abs, Cause: err}
	}
	return raw, abs, nil
}

// Parse decodes raw JSON or YAML into a Document.
func Parse(raw []byte, location string) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, parseError(raw, location, err)
	}
	top := deref(&root)
	if top == nil || top.Kind != yaml.MappingNode {
		return nil, parseError(raw, location, errors.New("document root is not an object"))
	}

	if isSwagger2(top) {
		converted, err := convertV2(raw)
		if err != nil {
			return nil, &SpecError{Code: ConversionError, Message: fmt.Sprintf("convert v2→v3: %v", err), Location: location, Cause: err}
		}
		var v3root yaml.Node
		if err := yaml.Unmarshal(converted, &v3root); err != nil {
			return nil, &SpecError{Code: ConversionError, Message: fmt.Sprintf("re-read converted document: %v", err), Location: location, Cause: err}
		}
		doc := decodeDocument(&v3root)
		doc.OpenAPI = scalar(lookup(top, "swagger"))
		return doc, nil
	}
	return decodeDocument(&root), nil
}

// Validate runs full OpenAPI validation on the document at input. It is not
// part of generation; the generator tolerates documents that fail it.
func Validate(ctx context.Context, input string, opts ...Option) error {
	raw, location, err := Fetch(ctx, input, opts...)
	if err != nil {
		return err
	}
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return parseError(raw, location, err)
	}
	if top := deref(&root); top != nil && isSwagger2(top) {
		if raw, err = convertV2(raw); err != nil {
			return &SpecError{Code: ConversionError, Message: fmt.Sprintf("convert v2→v3: %v", err), Location: location, Cause: err}
		}
	}
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return mapValidateOrParseErr(err, location)
	}
	if err := doc.Validate(ctx); err != nil {
		return mapValidateOrParseErr(err, location)
	}
	return nil
}

func isSwagger2(top *yaml.Node) bool {
	return strings.HasPrefix(strings.TrimSpace(scalar(lookup(top, "swagger"))), "2.")
}

func parseError(raw []byte, location string, cause error) error {
	preview := raw
	if len(preview) > payloadPreview {
		preview = preview[:payloadPreview]
	}
	return &SpecError{
		Code:     ParseError,
		Message:  fmt.Sprintf("failed to parse document: %v: %s", cause, preview),
		Location: location,
		Cause:    cause,
	}
}

func fetchURL(ctx context.Context, rawURL string, settings Settings) ([]byte, error) {
	client := settings.Client
	if client == nil {
		client = &http.Client{Timeout: settings.HTTPTimeout}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if settings.BasicAuth != nil {
		req.SetBasicAuth(settings.BasicAuth.Username, settings.BasicAuth.Password)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return io.ReadAll(resp.Body)
}

func mapValidateOrParseErr(err error, location string) error {
	pointer := extractJSONPointer(err)
	code := ValidationError
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "unmarshal") || strings.Contains(lower, "invalid character") {
		code = ParseError
	}
	return &SpecError{Code: code, Message: err.Error(), Location: location, JSONPointer: pointer, Cause: err}
}

var jsonPtrRe = regexp.MustCompile(`#/[^\s'"]+`)

func extractJSONPointer(err error) string {
	if err == nil {
		return ""
	}
	var me openapi3.MultiError
	if errors.As(err, &me) && len(me) > 0 {
		return extractJSONPointer(me[0])
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		if parts := se.JSONPointer(); len(parts) > 0 {
			return "#/" + strings.Join(parts, "/")
		}
		if se.SchemaField != "" {
			return se.SchemaField
		}
	}
	if m := jsonPtrRe.FindString(err.Error()); m != "" {
		return m
	}
	return ""
}
