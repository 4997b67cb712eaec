package spec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	openapi2 "github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	invopopyaml "github.com/invopop/yaml"
	"gopkg.in/yaml.v3"
)

// ErrorCode categorizes loader errors for clearer handling and messaging.
type ErrorCode string

const (
	InputError      ErrorCode = "InputError"
	NetworkError    ErrorCode = "NetworkError"
	ParseError      ErrorCode = "ParseError"
	ValidationError ErrorCode = "ValidationError"
	ConversionError ErrorCode = "ConversionError"
)

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

// Settings configures loader behavior.
type Settings struct {
	// HTTPTimeout bounds each HTTP request.
	HTTPTimeout time.Duration
	// MaxRetries for transient HTTP failures (>=500, 429, or network errors).
	MaxRetries int
	// BackoffBase is the base delay for exponential backoff.
	BackoffBase time.Duration
	// AllowFileRefs permits file-based external refs when the root is a URL.
	// Local roots always allow them so multi-file specs keep working.
	AllowFileRefs bool
	Logger        *slog.Logger
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{
		HTTPTimeout: 10 * time.Second,
		MaxRetries:  3,
		BackoffBase: 200 * time.Millisecond,
	}
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option  { return func(s *Settings) { s.HTTPTimeout = d } }
func WithMaxRetries(n int) Option            { return func(s *Settings) { s.MaxRetries = n } }
func WithBackoffBase(d time.Duration) Option { return func(s *Settings) { s.BackoffBase = d } }
func WithAllowFileRefs(allow bool) Option    { return func(s *Settings) { s.AllowFileRefs = allow } }
func WithLogger(l *slog.Logger) Option       { return func(s *Settings) { s.Logger = l } }

// source is a located, fetched spec ready for parsing.
type source struct {
	location string
	raw      []byte
	uri      *url.URL // nil for local files
}

// Load reads an OpenAPI v3 or Swagger v2 document from a filesystem path or an
// http/https URL and converts it to a Document. Swagger v2 input is converted
// to v3 with openapi2conv first. Validation is permissive: documents whose only
// problems are unresolved refs are still returned.
func Load(ctx context.Context, input string, opts ...Option) (*Document, error) {
	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}
	if settings.Logger == nil {
		settings.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	src, err := locate(ctx, input, settings)
	if err != nil {
		return nil, err
	}

	version, err := detectSpecVersion(src.raw)
	if err != nil {
		return nil, &SpecError{Code: ParseError, Message: err.Error(), Location: src.location, Cause: err}
	}

	var doc *openapi3.T
	switch version {
	case 3:
		loader := newLoader(settings, src.uri == nil)
		if src.uri != nil {
			doc, err = loader.LoadFromURI(src.uri)
		} else {
			doc, err = loader.LoadFromFile(src.location)
		}
		if err != nil {
			return nil, mapValidateOrParseErr(err, src.location)
		}
	case 2:
		doc, err = convertV2ToV3(src.raw)
		if err != nil {
			return nil, &SpecError{Code: ConversionError, Message: fmt.Sprintf("convert v2→v3: %v", err), Location: src.location, Cause: err}
		}
		if err := newLoader(settings, src.uri == nil).ResolveRefsIn(doc, nil); err != nil {
			settings.Logger.Warn("resolve refs after v2 conversion", "location", src.location, "error", err)
		}
	default:
		return nil, &SpecError{Code: ParseError, Message: "spec: unknown or unsupported OpenAPI/Swagger version", Location: src.location}
	}

	if err := doc.Validate(ctx); err != nil {
		if !canProceedDespiteValidation(err) {
			return nil, mapValidateOrParseErr(err, src.location)
		}
		settings.Logger.Warn("proceeding despite validation errors", "location", src.location, "error", err)
	}

	out, err := FromOpenAPI(doc, src.raw)
	if err != nil {
		return nil, &SpecError{Code: ParseError, Message: err.Error(), Location: src.location, Cause: err}
	}
	settings.Logger.Debug("loaded spec", "location", src.location, "version", version, "paths", len(out.Paths))
	return out, nil
}

// locate classifies input as URL or file path and reads its bytes.
func locate(ctx context.Context, input string, settings Settings) (*source, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &SpecError{Code: InputError, Message: "spec: input is empty"}
	}

	u, uerr := url.Parse(input)
	if uerr == nil && u.Scheme != "" && u.Host != "" {
		scheme := strings.ToLower(u.Scheme)
		if scheme == "file" {
			return nil, &SpecError{Code: InputError, Message: "spec: file:// URLs are blocked by default", Location: input}
		}
		if scheme != "http" && scheme != "https" {
			return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("spec: unsupported URL scheme %q (only http/https allowed)", scheme), Location: input}
		}
		raw, err := fetchWithRetry(ctx, input, settings)
		if err != nil {
			return nil, &SpecError{Code: NetworkError, Message: fmt.Sprintf("fetch %s: %v", input, err), Location: input, Cause: err}
		}
		return &source{location: input, raw: raw, uri: u}, nil
	}

	abs, err := filepath.Abs(input)
	if err != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: input, Cause: err}
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", abs, err), Location: abs, Cause: err}
	}
	return &source{location: abs, raw: raw}, nil
}

func newLoader(settings Settings, rootIsFile bool) *openapi3.Loader {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true
	client := &http.Client{Timeout: settings.HTTPTimeout}
	allowFile := settings.AllowFileRefs || rootIsFile
	loader.ReadFromURIFunc = func(l *openapi3.Loader, uri *url.URL) ([]byte, error) {
		switch strings.ToLower(uri.Scheme) {
		case "", "file":
			if !allowFile {
				return nil, fmt.Errorf("blocked file ref: %s", uri.String())
			}
			path := uri.Path
			if path == "" {
				path = uri.Opaque
			}
			return os.ReadFile(path)
		case "http", "https":
			resp, err := client.Get(uri.String())
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 400 {
				return nil, fmt.Errorf("http %d: %s", resp.StatusCode, uri.String())
			}
			return io.ReadAll(resp.Body)
		default:
			return nil, fmt.Errorf("unsupported ref scheme: %s", uri.Scheme)
		}
	}
	return loader
}

// detectSpecVersion returns 3 for OpenAPI v3, 2 for Swagger v2, else error.
func detectSpecVersion(data []byte) (int, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return 0, fmt.Errorf("parse spec: %w", err)
	}
	if s, _ := root["openapi"].(string); strings.HasPrefix(strings.TrimSpace(s), "3.") {
		return 3, nil
	}
	if s, _ := root["swagger"].(string); strings.HasPrefix(strings.TrimSpace(s), "2.") {
		return 2, nil
	}
	return 0, fmt.Errorf("spec: missing or unknown version (expected 'openapi: 3.x' or 'swagger: 2.0')")
}

// convertV2ToV3 decodes through JSON so that the json tags of openapi2.T
// (basePath, operationId, ...) are honoured for YAML input too.
func convertV2ToV3(data []byte) (*openapi3.T, error) {
	asJSON, err := invopopyaml.YAMLToJSON(data)
	if err != nil {
		return nil, err
	}
	var v2 openapi2.T
	if err := json.Unmarshal(asJSON, &v2); err != nil {
		return nil, err
	}
	return openapi2conv.ToV3(&v2)
}

func fetchWithRetry(ctx context.Context, rawURL string, settings Settings) ([]byte, error) {
	client := &http.Client{Timeout: settings.HTTPTimeout}
	backoff := settings.BackoffBase
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	attempts := settings.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		body, retry, err := fetchOnce(ctx, client, rawURL)
		if err == nil {
			return body, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
		settings.Logger.Debug("retrying spec fetch", "url", rawURL, "attempt", i+1, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if lastErr == nil {
		lastErr = errors.New("fetch failed")
	}
	return nil, lastErr
}

// fetchOnce performs a single GET. retry reports whether the failure is transient.
func fetchOnce(ctx context.Context, client *http.Client, rawURL string) (body []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 300 {
		body, err = io.ReadAll(resp.Body)
		return body, false, err
	}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, fmt.Errorf("transient http error %d", resp.StatusCode)
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return nil, false, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
}

func mapValidateOrParseErr(err error, location string) error {
	code := ValidationError
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "parse") || strings.Contains(lower, "invalid character") {
		code = ParseError
	}
	return &SpecError{Code: code, Message: err.Error(), Location: location, JSONPointer: extractJSONPointer(err), Cause: err}
}

var jsonPtrRe = regexp.MustCompile(`#/[^\s'\"]+`)

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
	return jsonPtrRe.FindString(err.Error())
}

// canProceedDespiteValidation reports whether a best-effort build can continue,
// which is the case for unresolved $ref entries.
func canProceedDespiteValidation(err error) bool {
	if err == nil {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "unresolved ref")
}
