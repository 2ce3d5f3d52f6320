package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &out); err != nil {
		t.Fatalf("invalid log line %q: %v", buf.String(), err)
	}
	return out
}

func TestLogging_MasksSensitiveKeys(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	log := slog.New(newHandler(&buf, "gotp", nil, []string{"OTP", "code"}))

	// Act
	log.Info("verify", "otp", "123456", "email", "a@example.com",
		"body", `{"email":"a@example.com","otp":"654321"}`)

	// Assert
	line := decodeLine(t, &buf)
	if line["otp"] != masked {
		t.Fatalf("otp = %v, want masked", line["otp"])
	}
	if line["email"] != "a@example.com" {
		t.Fatalf("email = %v", line["email"])
	}
	if strings.Contains(line["body"].(string), "654321") {
		t.Fatalf("body leaked otp: %v", line["body"])
	}
	if line["severity"] != "INFO" || line["service"] != "gotp" {
		t.Fatalf("unexpected envelope: %v", line)
	}
}

func TestLogging_AddsCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(newHandler(&buf, "gotp", nil, nil))
	ctx := SetCorrelationID(context.Background(), "cid-1")

	log.InfoContext(ctx, "hello")

	if got := decodeLine(t, &buf)["_cID"]; got != "cid-1" {
		t.Fatalf("_cID = %v, want cid-1", got)
	}
}

func TestCorrelationID_Absent(t *testing.T) {
	if got := GetCorrelationID(context.Background()); got != "" {
		t.Fatalf("GetCorrelationID() = %q, want empty", got)
	}
}

func TestNew_DisabledIsNoop(t *testing.T) {
	ins, err := New(context.Background(), &Config{ServiceName: "gotp"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, span := ins.Tracer("t").Start(context.Background(), "op")
	span.End()
	if err := ins.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}
