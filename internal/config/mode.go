package config

import (
	"os"
	"strings"
)

// Mode is the process-wide build mode. It is resolved once at startup and
// passed into every component constructor; nothing re-reads the environment
// after that.
type Mode int

const (
	ModeDebug Mode = iota
	ModeProduction
)

func (m Mode) String() string {
	if m == ModeProduction {
		return "production"
	}
	return "debug"
}

// IsProduction reports whether minification is on and source maps are off.
func (m Mode) IsProduction() bool { return m == ModeProduction }

// ParseMode normalizes s (trim, lowercase) and returns ModeProduction only
// for the literal "production". Anything else, including the empty string,
// is debug.
func ParseMode(s string) Mode {
	if strings.ToLower(strings.TrimSpace(s)) == "production" {
		return ModeProduction
	}
	return ModeDebug
}

// ModeFromEnv resolves the build mode from NODE_ENV, the variable front-end
// toolchains conventionally use.
func ModeFromEnv() Mode {
	return ParseMode(os.Getenv("NODE_ENV"))
}
