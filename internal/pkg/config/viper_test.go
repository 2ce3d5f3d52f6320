package config

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

const sample = `
modules:
  otp:
    length: 6
    valid_minutes: 1
    max_attempts: 10
    allowed_domains: "example.com, corp.example.org ,"
    consumer_names:
      - otp_delivery_mailer
    labels: "team:auth,tier:edge"
mail:
  retry:
    base_millis: 250
`

func TestViper_Getters(t *testing.T) {
	// Arrange
	cfg, err := NewViperFromBytes("yaml", []byte(sample))
	if err != nil {
		t.Fatalf("NewViperFromBytes() error = %v", err)
	}

	// Act & Assert
	if got := cfg.GetInt("modules.otp.length"); got != 6 {
		t.Fatalf("GetInt() = %d", got)
	}
	if got := cfg.GetMinute("modules.otp.valid_minutes"); got != time.Minute {
		t.Fatalf("GetMinute() = %s", got)
	}
	if got := cfg.GetMillisecond("mail.retry.base_millis"); got != 250*time.Millisecond {
		t.Fatalf("GetMillisecond() = %s", got)
	}
	if got := cfg.GetArray("modules.otp.allowed_domains"); !reflect.DeepEqual(got, []string{"example.com", "corp.example.org"}) {
		t.Fatalf("GetArray(string) = %v", got)
	}
	if got := cfg.GetArray("modules.otp.consumer_names"); !reflect.DeepEqual(got, []string{"otp_delivery_mailer"}) {
		t.Fatalf("GetArray(list) = %v", got)
	}
	if got := cfg.GetArray("modules.otp.missing"); len(got) != 0 {
		t.Fatalf("GetArray(missing) = %v", got)
	}
	if got := cfg.GetMap("modules.otp.labels"); got["team"] != "auth" || got["tier"] != "edge" {
		t.Fatalf("GetMap() = %v", got)
	}
}

func TestViper_EnvOverride(t *testing.T) {
	// Arrange
	t.Setenv("GOTP_MODULES_OTP_MAX_ATTEMPTS", "3")
	cfg, err := NewViperFromBytes("yaml", []byte(sample))
	if err != nil {
		t.Fatalf("NewViperFromBytes() error = %v", err)
	}

	// Act
	got := cfg.GetInt("modules.otp.max_attempts")

	// Assert
	if got != 3 {
		t.Fatalf("GetInt() = %d, want env override 3", got)
	}
}

func TestNewViperFromBytes_RequiresType(t *testing.T) {
	_, err := NewViperFromBytes(" ", nil)
	if !errors.Is(err, ErrConfigType) {
		t.Fatalf("error = %v, want ErrConfigType", err)
	}
}
