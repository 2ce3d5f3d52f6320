// Package uid generates identifiers: UUIDv7 strings for correlation and
// snowflake integers for events that need ordering.
package uid

import (
	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

// StringID produces opaque string identifiers.
type StringID interface {
	Generate() string
}

// NumberID produces time-ordered integer identifiers.
type NumberID interface {
	Generate() int64
}

// UUID implements StringID.
type UUID struct{}

func NewUUID() *UUID {
	return &UUID{}
}

// Generate returns a UUIDv7, or a v4 when the v7 clock source fails.
func (*UUID) Generate() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// Snowflake implements NumberID.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake builds a generator for node, which must be in 0..1023.
func NewSnowflake(node int64) (*Snowflake, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, err
	}
	return &Snowflake{node: n}, nil
}

func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}
