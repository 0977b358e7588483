package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bizai/internal/core"
	"bizai/internal/middleware/trace"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", WithTimeout(5*time.Second))
}

func csvFile(name, body string) core.File {
	return core.File{Name: name, Size: int64(len(body)), Content: strings.NewReader(body)}
}

func TestUploadExpenses_SendsMultipartFile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/expense/upload-csv" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("X-Request-ID"); got != "req_abc" {
			t.Errorf("X-Request-ID = %q", got)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer f.Close()
		body, _ := io.ReadAll(f)
		if hdr.Filename != "march.csv" || string(body) != "date,category,amount\n" {
			t.Errorf("file = %s %q", hdr.Filename, body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"labels":["Food","Rent"],"values":[120.5,800],"total":920.5}`)
	})

	ctx := context.WithValue(context.Background(), trace.RequestIDKey, "req_abc")
	out, err := c.WithToken("tok-1").UploadExpenses(ctx, csvFile("march.csv", "date,category,amount\n"))
	if err != nil {
		t.Fatalf("UploadExpenses() error = %v", err)
	}
	if len(out.Labels) != 2 || out.Total.String() != "920.5" || out.Values[0].String() != "120.5" {
		t.Errorf("decoded = %+v", out)
	}
}

func TestWithToken_DoesNotMutateParent(t *testing.T) {
	c := NewClient("http://backend")
	_ = c.WithToken("secret")
	if c.token != "" {
		t.Error("parent client picked up token")
	}
}

func TestWithTimeout_CopiesSharedClient(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}
	c := NewClient("http://backend", WithHTTPClient(shared), WithTimeout(5*time.Second))
	if shared.Timeout != time.Minute {
		t.Errorf("shared client timeout = %v, want %v", shared.Timeout, time.Minute)
	}
	if c.http == shared || c.http.Timeout != 5*time.Second {
		t.Errorf("client timeout = %v, want a private copy with 5s", c.http.Timeout)
	}

	c = NewClient("http://backend", WithHTTPClient(shared), WithTimeout(0))
	if c.http != shared {
		t.Error("zero timeout should keep the given client")
	}
}

func TestStatusErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantUnauth  bool
	}{
		{"detail string", http.StatusBadRequest, `{"detail":"Missing column: amount"}`, "Missing column: amount", false},
		{"message field", http.StatusInternalServerError, `{"message":"boom"}`, "boom", false},
		{"validation detail list", http.StatusUnprocessableEntity, `{"detail":[{"loc":["file"]}]}`, "", false},
		{"plain text", http.StatusBadGateway, "  upstream down \n", "upstream down", false},
		{"empty body", http.StatusServiceUnavailable, "", "", false},
		{"unauthorized", http.StatusUnauthorized, `{"detail":"Not authenticated"}`, "Not authenticated", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := c.UploadTransactions(context.Background(), csvFile("tx.csv", "a"))
			var se *StatusError
			if !errors.As(err, &se) {
				t.Fatalf("error = %v, want *StatusError", err)
			}
			if se.StatusCode != tt.status || se.UserMessage() != tt.wantMessage {
				t.Errorf("StatusError = %+v", se)
			}
			if errors.Is(err, ErrUnauthorized) != tt.wantUnauth {
				t.Errorf("errors.Is(ErrUnauthorized) = %v", !tt.wantUnauth)
			}
			if got := core.ErrorMessage(err); tt.wantMessage == "" && got != core.FallbackErrorMessage {
				t.Errorf("ErrorMessage() = %q, want fallback", got)
			}
		})
	}
}

func TestUploadInventory_SuccessFalse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":false,"records_added":0,"errors":["row 2: bad stock"]}`)
	})
	out, err := c.UploadInventory(context.Background(), csvFile("stock.csv", "x"))
	if !errors.Is(err, core.ErrUploadFailed) {
		t.Fatalf("error = %v, want ErrUploadFailed", err)
	}
	if len(out.Errors) != 1 {
		t.Errorf("errors not decoded: %+v", out)
	}
	if core.ErrorMessage(err) != "Upload failed" {
		t.Errorf("ErrorMessage() = %q", core.ErrorMessage(err))
	}
}

func TestMalformedFieldsDecodeToZero(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"labels":["00:00"],"unexpected":true}`)
	})
	out, err := c.UploadGridUsage(context.Background(), csvFile("grid.csv", "x"))
	if err != nil {
		t.Fatalf("UploadGridUsage() error = %v", err)
	}
	if out.Average.Valid || len(out.Values) != 0 {
		t.Errorf("missing fields should be zero, got %+v", out)
	}
}

func TestReadEndpoints(t *testing.T) {
	responses := map[string]string{
		"/expense/summary":   `{"by_category":[{"name":"Food","value":10}],"total":10,"trend":"up","trend_percent":5}`,
		"/fraud/insights":    `{"anomalies_detected":3,"total_transactions":100,"risk_level":"Low","alerts":[]}`,
		"/inventory/summary": `{"items":[{"name":"Widget","stock":2,"reorder_at":5}],"low_stock_count":1}`,
		"/green-grid/data":   `{"current_usage_kwh":42.5,"recommendations":["shift laundry"]}`,
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s", r.Method)
		}
		body, ok := responses[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, body)
	})
	ctx := context.Background()

	sum, err := c.ExpenseSummary(ctx)
	if err != nil || len(sum.ByCategory) != 1 || sum.Trend != "up" {
		t.Errorf("ExpenseSummary() = %+v, %v", sum, err)
	}
	ins, err := c.FraudInsights(ctx)
	if err != nil || ins.AnomaliesDetected.IntPart() != 3 {
		t.Errorf("FraudInsights() = %+v, %v", ins, err)
	}
	inv, err := c.InventorySummary(ctx)
	if err != nil || !inv.Items[0].BelowReorder() {
		t.Errorf("InventorySummary() = %+v, %v", inv, err)
	}
	gg, err := c.GreenGridData(ctx)
	if err != nil || gg.CurrentUsageKWh.String() != "42.5" {
		t.Errorf("GreenGridData() = %+v, %v", gg, err)
	}
	if _, err := c.InventoryForecast(ctx); err == nil {
		t.Error("expected 404 error for unregistered path")
	}
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected request %s %s", r.URL.Path, r.Header.Get("Content-Type"))
		}
		var in map[string]string
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode: %v", err)
		}
		if in["email"] != "ana@example.com" || in["password"] != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"Invalid credentials"}`)
			return
		}
		_, _ = io.WriteString(w, `{"access_token":"jwt","user":{"email":"ana@example.com","name":"Ana"}}`)
	})

	res, err := c.Login(context.Background(), "ana@example.com", "pw")
	if err != nil || res.AccessToken != "jwt" || res.User.Name != "Ana" {
		t.Fatalf("Login() = %+v, %v", res, err)
	}
	if _, err := c.Login(context.Background(), "ana@example.com", "wrong"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Login(wrong) error = %v", err)
	}
}

func TestPing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v, any response should count", err)
	}

	dead := NewClient("http://127.0.0.1:1", WithTimeout(time.Second))
	if err := dead.Ping(context.Background()); err == nil {
		t.Error("expected error for unreachable backend")
	}
}
