package security

import (
	"crypto/tls"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bizai/internal/log"
)

func TestDetectSuspiciousRequest(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		ua     string
		want   bool
	}{
		{"module page", http.MethodGet, "/modules/fraud", "Mozilla/5.0", false},
		{"upload", http.MethodPost, "/modules/expense/upload", "Mozilla/5.0", false},
		{"dotenv probe", http.MethodGet, "/.env", "Mozilla/5.0", true},
		{"traversal in query", http.MethodGet, "/static/app.css?f=../../etc/passwd", "", true},
		{"scanner agent", http.MethodGet, "/", "sqlmap/1.7", true},
		{"trace method", "TRACE", "/", "", true},
		{"long url", http.MethodGet, "/?q=" + strings.Repeat("a", 2100), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector()
			req := httptest.NewRequest(tt.method, tt.target, nil)
			req.Header.Set("User-Agent", tt.ua)
			if got := d.DetectSuspiciousRequest(req); got != tt.want {
				t.Errorf("DetectSuspiciousRequest() = %v, want %v", got, tt.want)
			}
			if tt.want && d.GetMetrics().SuspiciousRequests != 1 {
				t.Errorf("metrics = %+v", d.GetMetrics())
			}
		})
	}
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		xff    string
		xri    string
		want   string
	}{
		{"direct", "203.0.113.9:5000", "", "", "203.0.113.9"},
		{"untrusted forwarder ignored", "203.0.113.9:5000", "198.51.100.1", "", "203.0.113.9"},
		{"trusted proxy xff", "10.1.2.3:80", "198.51.100.1, 10.1.2.3", "", "198.51.100.1"},
		{"trusted proxy x-real-ip", "127.0.0.1:80", "", "198.51.100.7", "198.51.100.7"},
		{"bad xff falls back", "192.168.1.1:80", "not-an-ip", "", "192.168.1.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := d.ExtractClientIP(req); got != tt.want {
				t.Errorf("ExtractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAddTrustedProxy(t *testing.T) {
	d := NewDetector()
	if err := d.AddTrustedProxy("203.0.113.9"); err != nil {
		t.Fatal(err)
	}
	if err := d.AddTrustedProxy("nope"); err == nil {
		t.Error("expected error for invalid proxy")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:443"
	req.Header.Set("X-Forwarded-For", "198.51.100.1")
	if got := d.ExtractClientIP(req); got != "198.51.100.1" {
		t.Errorf("ExtractClientIP() = %q", got)
	}
}

func TestDetectorMiddleware_PassesThrough(t *testing.T) {
	cfg := log.DefaultConfig()
	cfg.Output = io.Discard
	d := NewDetector()
	called := false
	h := d.Middleware(log.New(cfg))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/wp-admin", nil))
	if !called || d.GetMetrics().SuspiciousRequests != 1 {
		t.Errorf("called = %v, metrics = %+v", called, d.GetMetrics())
	}
}

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Frame-Options") != "DENY" || rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("headers = %v", rec.Header())
	}
	if csp := rec.Header().Get("Content-Security-Policy"); !strings.Contains(csp, "script-src 'self' https://unpkg.com") {
		t.Errorf("CSP = %q", csp)
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be sent over plain HTTP")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.TLS = &tls.ConnectionState{}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Strict-Transport-Security"); got != "max-age=31536000; includeSubDomains" {
		t.Errorf("HSTS = %q", got)
	}
}
