package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shandysiswandi/gotp/internal/pkg/config"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/validator"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

type payload struct {
	Value string `json:"value"`
}

type customResponse struct {
	Value string `json:"value"`
}

func (customResponse) Message() string { return "custom message" }
func (customResponse) StatusCode() int { return http.StatusBadRequest }

func newTestRouter(t *testing.T, yaml string) *Router {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	if err != nil {
		t.Fatalf("config error = %v", err)
	}
	return New(Config{Config: cfg, UUID: fixedID("cid-generated"), Instrument: instrument.NewNoop()})
}

func serve(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestRouter_SuccessEnvelope(t *testing.T) {
	// Arrange
	r := newTestRouter(t, "app: {}")
	r.POST("/echo", func(req *Request) (any, error) {
		var p payload
		if err := req.DecodeBody(&p); err != nil {
			return nil, err
		}
		return p, nil
	})

	// Act
	rec := serve(r, http.MethodPost, "/echo", `{"value":"hi"}`, nil)

	// Assert
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["data"].(map[string]any)["value"] != "hi" {
		t.Fatalf("unexpected body: %v", body)
	}
	if rec.Header().Get(HeaderCorrelationID) != "cid-generated" {
		t.Fatalf("missing generated correlation id")
	}
}

func TestRouter_ResponseHooks(t *testing.T) {
	r := newTestRouter(t, "app: {}")
	r.GET("/custom", func(*Request) (any, error) { return customResponse{Value: "x"}, nil })

	rec := serve(r, http.MethodGet, "/custom", "", map[string]string{HeaderRequestID: "req-7"})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if decode(t, rec)["message"] != "custom message" {
		t.Fatalf("message hook ignored: %s", rec.Body.String())
	}
	if rec.Header().Get(HeaderCorrelationID) != "req-7" {
		t.Fatalf("correlation id = %q", rec.Header().Get(HeaderCorrelationID))
	}
}

func TestRouter_DecodeRejectsUnknownFields(t *testing.T) {
	r := newTestRouter(t, "app: {}")
	r.POST("/echo", func(req *Request) (any, error) {
		var p payload
		return p, req.DecodeBody(&p)
	})

	rec := serve(r, http.MethodPost, "/echo", `{"value":"hi","extra":1}`, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRouter_ErrorCodec(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKey  string
	}{
		{name: "validation", err: goerror.NewInvalidInput(validator.V10ValidationError{"email": "email is required"}), wantCode: http.StatusUnprocessableEntity, wantKey: "email"},
		{name: "server", err: goerror.NewServer(errors.New("db")), wantCode: http.StatusInternalServerError},
		{name: "plain", err: errors.New("plain"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, "app: {}")
			r.GET("/fail", func(*Request) (any, error) { return nil, tt.err })

			rec := serve(r, http.MethodGet, "/fail", "", nil)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			body := decode(t, rec)
			if tt.wantKey != "" {
				if _, ok := body["error"].(map[string]any)[tt.wantKey]; !ok {
					t.Fatalf("missing field error %q: %v", tt.wantKey, body)
				}
			}
			if strings.Contains(rec.Body.String(), "db") && tt.name == "server" {
				t.Fatalf("server cause leaked: %s", rec.Body.String())
			}
		})
	}
}

func TestRouter_RecoversPanic(t *testing.T) {
	r := newTestRouter(t, "app: {}")
	r.GET("/panic", func(*Request) (any, error) { panic("boom") })

	rec := serve(r, http.MethodGet, "/panic", "", nil)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestRouter_Maintenance(t *testing.T) {
	r := newTestRouter(t, "app:\n  maintenance:\n    endpoints: /blocked\n")
	r.GET("/blocked", func(*Request) (any, error) { return payload{}, nil })
	r.GET("/open", func(*Request) (any, error) { return payload{}, nil })

	if rec := serve(r, http.MethodGet, "/blocked", "", nil); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("blocked status = %d", rec.Code)
	}
	if rec := serve(r, http.MethodGet, "/open", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("open status = %d", rec.Code)
	}
}

func TestRouter_NotFoundAndMethod(t *testing.T) {
	r := newTestRouter(t, "app: {}")
	r.POST("/only-post", func(*Request) (any, error) { return payload{}, nil })

	if rec := serve(r, http.MethodGet, "/missing", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("missing status = %d", rec.Code)
	}
	if rec := serve(r, http.MethodGet, "/only-post", "", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("method status = %d", rec.Code)
	}
}

func TestRealIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	if got := realIP(req); got != "203.0.113.9" {
		t.Fatalf("realIP() = %q", got)
	}

	req.Header.Del("X-Forwarded-For")
	if got := realIP(req); got != "10.0.0.1" {
		t.Fatalf("realIP() fallback = %q", got)
	}
}
