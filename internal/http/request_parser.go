// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data:
// the multipart upload form, login bodies and redirect targets.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"bizai/internal/core"
)

// ErrNoFile is returned when an upload form carries no usable file.
var ErrNoFile = errors.New("no file in upload")

// multipartMemory is kept in memory before parts spill to temp files.
const multipartMemory = 1 << 20

// UploadRequest is a parsed module upload. Close releases the file and any
// temp files the multipart reader created.
type UploadRequest struct {
	File   core.File
	Source core.UploadSource

	file multipart.File
	form *multipart.Form
}

// Close releases the upload's resources.
func (u *UploadRequest) Close() error {
	var errs []error
	if u.file != nil {
		errs = append(errs, u.file.Close())
	}
	if u.form != nil {
		errs = append(errs, u.form.RemoveAll())
	}
	return errors.Join(errs...)
}

// ParseUpload reads the "file" and "source" fields of a multipart upload.
// A missing file, or one without a name, yields ErrNoFile.
func ParseUpload(r *http.Request) (*UploadRequest, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, ErrNoFile
		}
		return nil, fmt.Errorf("parse multipart form: %w", err)
	}

	u := &UploadRequest{
		Source: core.ParseUploadSource(r.FormValue("source")),
		form:   r.MultipartForm,
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		_ = u.Close()
		if errors.Is(err, http.ErrMissingFile) {
			return nil, ErrNoFile
		}
		return nil, fmt.Errorf("read upload file: %w", err)
	}
	u.file = f

	name := sanitizeInput(header.Filename)
	if name == "" {
		_ = u.Close()
		return nil, ErrNoFile
	}
	u.File = core.File{Name: name, Size: header.Size, Content: f}
	return u, nil
}

// SafeNext returns next when it is a local path, and fallback otherwise, so
// that login redirects can never leave the site.
func SafeNext(next, fallback string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return fallback
	}
	if u, err := url.Parse(next); err != nil || u.Host != "" || u.Scheme != "" {
		return fallback
	}
	return next
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}

	p.body, p.err = io.ReadAll(r.Body)
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	// JSON when declared, or when the body looks like it
	mediaType, _, _ := mime.ParseMediaType(p.contentType)
	if mediaType == "application/json" || p.body[0] == '{' || p.body[0] == '[' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(sanitizeInput(stringValue(val)))
		}
	}
	if p.formData != nil {
		return strings.TrimSpace(sanitizeInput(p.formData.Get(key)))
	}
	return ""
}

// stringValue converts an interface{} to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}
