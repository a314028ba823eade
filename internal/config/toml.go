// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Backend  BackendConfig  `toml:"backend"`
	Server   ServerConfig   `toml:"server"`
}

// PracticeConfig maps typing screen settings. Nil fields are unset.
type PracticeConfig struct {
	Duration *int     `toml:"duration"`
	LiveWPM  *bool    `toml:"live-wpm"`
	Words    *int     `toml:"words"`
	Source   *string  `toml:"source"`
	Lang     *string  `toml:"lang"`
	CapsPct  *float64 `toml:"caps"`
	PunctPct *float64 `toml:"punct"`
	PunctSet *string  `toml:"punct-set"`
	Wordlist *string  `toml:"wordlist"`
}

// BackendConfig points the client at a remote typing API.
type BackendConfig struct {
	URL    *string `toml:"url"`
	Token  *string `toml:"token"`
	UserID *int64  `toml:"user-id"`
}

// ServerConfig configures the bundled API server.
type ServerConfig struct {
	Addr *string `toml:"addr"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, &UnknownKeysError{Keys: keyStrings(undecoded)}
	}
	return cfg, nil
}

// UnknownKeysError reports keys present in the file but not understood.
// The accompanying config is still usable.
type UnknownKeysError struct {
	Keys []string
}

func (e *UnknownKeysError) Error() string {
	return fmt.Sprintf("unknown config keys: %v", e.Keys)
}

func keyStrings(keys []toml.Key) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}
