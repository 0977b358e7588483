package security

import (
	"fmt"
	"net/http"
	"strings"
)

// HeadersConfig holds security headers configuration
type HeadersConfig struct {
	// CSPDirectives are joined in order into Content-Security-Policy.
	CSPDirectives []string

	HSTSMaxAge            int
	HSTSIncludeSubdomains bool

	XFrameOptions       string
	XContentTypeOptions string
	ReferrerPolicy      string
	PermissionsPolicy   string
	CrossOriginOpener   string
	CrossOriginResource string
}

// DefaultHeadersConfig allows htmx from unpkg, inline SVG charts and the
// inline accent styles of the module pages.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		CSPDirectives: []string{
			"default-src 'self'",
			"script-src 'self' https://unpkg.com",
			"style-src 'self' 'unsafe-inline'",
			"img-src 'self' data:",
			"connect-src 'self'",
			"font-src 'self'",
			"object-src 'none'",
			"frame-ancestors 'none'",
			"base-uri 'self'",
			"form-action 'self'",
		},
		HSTSMaxAge:            31536000, // 1 year
		HSTSIncludeSubdomains: true,

		XFrameOptions:       "DENY",
		XContentTypeOptions: "nosniff",
		ReferrerPolicy:      "strict-origin-when-cross-origin",
		PermissionsPolicy:   "geolocation=(), microphone=(), camera=(), payment=()",
		CrossOriginOpener:   "same-origin",
		CrossOriginResource: "same-origin",
	}
}

// CSP returns the Content-Security-Policy value.
func (c HeadersConfig) CSP() string {
	return strings.Join(c.CSPDirectives, "; ")
}

// HeadersMiddleware applies security headers to responses
type HeadersMiddleware struct {
	static map[string]string
	hsts   string
}

// NewHeadersMiddleware precomputes the header set for config.
func NewHeadersMiddleware(config HeadersConfig) *HeadersMiddleware {
	static := map[string]string{
		"X-Content-Type-Options":       config.XContentTypeOptions,
		"X-Frame-Options":              config.XFrameOptions,
		"Referrer-Policy":              config.ReferrerPolicy,
		"Permissions-Policy":           config.PermissionsPolicy,
		"Cross-Origin-Opener-Policy":   config.CrossOriginOpener,
		"Cross-Origin-Resource-Policy": config.CrossOriginResource,
	}
	if csp := config.CSP(); csp != "" {
		static["Content-Security-Policy"] = csp
	}
	for k, v := range static {
		if v == "" {
			delete(static, k)
		}
	}

	h := &HeadersMiddleware{static: static}
	if config.HSTSMaxAge > 0 {
		h.hsts = fmt.Sprintf("max-age=%d", config.HSTSMaxAge)
		if config.HSTSIncludeSubdomains {
			h.hsts += "; includeSubDomains"
		}
	}
	return h
}

// Middleware returns the HTTP middleware function
func (h *HeadersMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := w.Header()
		for k, v := range h.static {
			headers.Set(k, v)
		}
		// HSTS only makes sense over TLS
		if h.hsts != "" && (r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https") {
			headers.Set("Strict-Transport-Security", h.hsts)
		}
		next.ServeHTTP(w, r)
	})
}

// StaticAssetMiddleware adds caching headers for static assets
func StaticAssetMiddleware(maxAge int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxAge > 0 {
				w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))
			}
			next.ServeHTTP(w, r)
		})
	}
}
