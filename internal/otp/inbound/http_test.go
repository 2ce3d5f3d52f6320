package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shandysiswandi/gotp/internal/otp/entity"
	"github.com/shandysiswandi/gotp/internal/otp/usecase"
	"github.com/shandysiswandi/gotp/internal/pkg/config"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/router"
)

type fakeUC struct {
	generate    entity.GenerateResult
	verify      entity.VerifyResult
	err         error
	gotGenerate usecase.GenerateInput
	gotVerify   usecase.VerifyInput
	gotDispatch []usecase.DispatchInput
	dispatchErr error
}

func (f *fakeUC) Generate(_ context.Context, in usecase.GenerateInput) (entity.GenerateResult, error) {
	f.gotGenerate = in
	return f.generate, f.err
}

func (f *fakeUC) Verify(_ context.Context, in usecase.VerifyInput) (entity.VerifyResult, error) {
	f.gotVerify = in
	return f.verify, f.err
}

func (f *fakeUC) Dispatch(_ context.Context, in usecase.DispatchInput) error {
	f.gotDispatch = append(f.gotDispatch, in)
	return f.dispatchErr
}

type fixedID string

func (f fixedID) Generate() string { return string(f) }

type envelope struct {
	Message string         `json:"message"`
	Data    ResultResponse `json:"data"`
}

func (e *envelope) UnmarshalJSON(b []byte) error {
	var raw struct {
		Message string `json:"message"`
		Data    struct {
			Success bool   `json:"success"`
			Status  string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	e.Message = raw.Message
	e.Data = ResultResponse{Success: raw.Data.Success, Status: raw.Data.Status}
	return nil
}

func newTestServer(t *testing.T, f *fakeUC) http.Handler {
	t.Helper()
	cfg, err := config.NewViperFromBytes("yaml", []byte("app:\n  tz: UTC\n"))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	r := router.New(router.Config{Config: cfg, UUID: fixedID("cid"), Instrument: instrument.NewNoop()})
	RegisterHTTPEndpoint(r, f)
	return r
}

func post(h http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHTTPEndpoint_Generate(t *testing.T) {
	tests := []struct {
		name    string
		result  entity.GenerateResult
		code    int
		success bool
		status  string
		message string
	}{
		{name: "delivered", result: entity.GenerateDelivered, code: http.StatusOK, success: true, status: "email_ok", message: "Email containing OTP has been sent successfully."},
		{name: "delivery failed", result: entity.GenerateDeliveryFailed, code: http.StatusBadRequest, status: "email_fail", message: "Email address does not exist or sending to the email has failed."},
		{name: "invalid", result: entity.GenerateInvalidAddress, code: http.StatusBadRequest, status: "email_invalid", message: "Email address is invalid."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := &fakeUC{generate: tt.result}
			h := newTestServer(t, f)

			// Act
			rec := post(h, "/api/v1/otp/generate", `{"email":"a@corp.example"}`)

			// Assert
			if rec.Code != tt.code {
				t.Fatalf("status = %d, want %d; body %s", rec.Code, tt.code, rec.Body)
			}
			var env envelope
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if env.Message != tt.message || env.Data.Success != tt.success || env.Data.Status != tt.status {
				t.Fatalf("envelope = %+v", env)
			}
			if f.gotGenerate.Email != "a@corp.example" {
				t.Fatalf("usecase got %+v", f.gotGenerate)
			}
		})
	}
}

func TestHTTPEndpoint_Verify(t *testing.T) {
	// Arrange
	f := &fakeUC{verify: entity.VerifyResult{Kind: entity.VerifyRetry, Remaining: 4}}
	h := newTestServer(t, f)

	// Act
	rec := post(h, "/api/v1/otp/verify", `{"email":"a@corp.example","otp":"123456"}`)

	// Assert
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body)
	}
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.Status != "Invalid OTP. Remaining attempts: 4" || env.Data.Success {
		t.Fatalf("envelope = %+v", env)
	}
	if f.gotVerify != (usecase.VerifyInput{Email: "a@corp.example", Code: "123456"}) {
		t.Fatalf("usecase got %+v", f.gotVerify)
	}
}

func TestHTTPEndpoint_VerifyOK(t *testing.T) {
	f := &fakeUC{verify: entity.VerifyResult{Kind: entity.VerifyVerified}}
	h := newTestServer(t, f)

	rec := post(h, "/api/v1/otp/verify", `{"email":"a@corp.example","otp":"123456"}`)

	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "OTP is valid and checked.") {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body)
	}
}

func TestHTTPEndpoint_MalformedBody(t *testing.T) {
	f := &fakeUC{}
	h := newTestServer(t, f)

	rec := post(h, "/api/v1/otp/generate", `{"email":`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if f.gotGenerate.Email != "" {
		t.Fatalf("usecase called with %+v", f.gotGenerate)
	}
}

func TestHTTPEndpoint_UsecaseError(t *testing.T) {
	f := &fakeUC{err: goerror.NewServer(errors.New("redis down"))}
	h := newTestServer(t, f)

	rec := post(h, "/api/v1/otp/verify", `{"email":"a@corp.example","otp":"1"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "redis down") {
		t.Fatalf("cause leaked: %s", rec.Body)
	}
}
