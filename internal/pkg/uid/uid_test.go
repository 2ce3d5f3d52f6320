package uid

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUID_Generate(t *testing.T) {
	id := NewUUID().Generate()

	parsed, err := uuid.Parse(id)
	if err != nil {
		t.Fatalf("uuid.Parse(%q) error = %v", id, err)
	}
	if parsed.Version() != 7 {
		t.Fatalf("version = %d, want 7", parsed.Version())
	}
}

func TestSnowflake_Increasing(t *testing.T) {
	// Arrange
	sf, err := NewSnowflake(1)
	if err != nil {
		t.Fatalf("NewSnowflake() error = %v", err)
	}

	// Act
	a := sf.Generate()
	b := sf.Generate()

	// Assert
	if b <= a {
		t.Fatalf("ids not increasing: %d then %d", a, b)
	}
}

func TestNewSnowflake_RejectsNode(t *testing.T) {
	if _, err := NewSnowflake(4096); err == nil {
		t.Fatalf("NewSnowflake(4096) expected error")
	}
}
