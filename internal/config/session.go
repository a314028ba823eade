package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/verte-zerg/typinglab/internal/model"
)

// SessionEnv names the environment variable holding a JSON start
// configuration.
const SessionEnv = "TYPINGLAB_SESSION"

// DefaultSessionConfig is used when no start configuration is provided.
func DefaultSessionConfig() model.SessionConfig {
	return model.SessionConfig{DurationSeconds: 60, LiveWPM: 1}
}

// ParseSessionConfig decodes a JSON start configuration over the defaults,
// so missing fields keep their default values. Empty input yields the
// defaults; malformed input yields the defaults and an error for logging.
func ParseSessionConfig(raw string) (model.SessionConfig, error) {
	cfg := DefaultSessionConfig()
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return cfg, nil
	}
	parsed := cfg
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return cfg, fmt.Errorf("failed to parse session config: %w", err)
	}
	if parsed.DurationSeconds <= 0 {
		parsed.DurationSeconds = cfg.DurationSeconds
	}
	return parsed, nil
}

// SessionConfigFromEnv reads the start configuration from SessionEnv.
func SessionConfigFromEnv() (model.SessionConfig, error) {
	return ParseSessionConfig(os.Getenv(SessionEnv))
}
