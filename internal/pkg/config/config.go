// Package config reads layered service configuration: a YAML file, then
// environment variables prefixed with GOTP_.
package config

import (
	"io"
	"time"
)

// Config is the read-only view of the configuration tree. Keys use dotted
// paths such as "modules.otp.max_attempts".
type Config interface {
	io.Closer

	GetBool(key string) bool
	GetInt(key string) int
	GetInt64(key string) int64
	GetFloat64(key string) float64
	GetString(key string) string

	// GetMillisecond, GetSecond and GetMinute read an integer and scale it.
	GetMillisecond(key string) time.Duration
	GetSecond(key string) time.Duration
	GetMinute(key string) time.Duration

	// GetArray reads either a YAML list or a comma separated string. Blank
	// elements are dropped and the rest are trimmed.
	GetArray(key string) []string

	// GetMap reads "k:v,k:v" pairs.
	GetMap(key string) map[string]string
}
