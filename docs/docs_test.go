package docs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandler_ServesValidDocument(t *testing.T) {
	rec := httptest.NewRecorder()

	Handler(rec, httptest.NewRequest(http.MethodGet, "/docs/openapi.json", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]any `json:"paths"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("document is not JSON: %v", err)
	}
	if doc.Info.Title != "gotp API" {
		t.Fatalf("title = %q", doc.Info.Title)
	}
	if _, ok := doc.Paths["/api/v1/otp/verify"]; !ok {
		t.Fatalf("verify path missing")
	}
}
