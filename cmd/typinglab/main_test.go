package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/verte-zerg/typinglab/internal/config"
)

func TestConfigTemplateDecodes(t *testing.T) {
	var cfg config.FileConfig
	meta, err := toml.Decode(defaultConfigTemplate(), &cfg)
	require.NoError(t, err)
	require.Empty(t, meta.Undecoded())
	require.Nil(t, cfg.Practice.Duration)
}

func TestFlagsOverrideConfig(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--words", "40"}))

	words, duration := 120, 90
	source := "5000"
	applyPracticeConfig(cmd, config.FileConfig{Practice: config.PracticeConfig{
		Words:    &words,
		Duration: &duration,
		Source:   &source,
	}})
	require.Equal(t, 40, practiceWords)
	require.Equal(t, 90, practiceDuration)
	require.Equal(t, "5000", practiceSource)
	require.Error(t, validatePromptOptions(practiceOptions()))

	practiceDuration = 30
	require.NoError(t, validatePromptOptions(practiceOptions()))
}

func TestInstalledLangs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"en.txt", "de.txt", "LICENSE.txt", "notes.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("word\n"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "fr.txt"), 0o755))

	langs, err := installedLangs(dir)
	require.NoError(t, err)
	require.Equal(t, []string{"de", "en"}, langs)

	langs, err = installedLangs(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	require.Empty(t, langs)
}

func TestStartConfigDurationPrecedence(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		env       string
		stored    int
		wantDur   int
		wantLive  int
		wantText  string
		wantExact bool
	}{
		{
			name:     "flags without payload",
			args:     []string{"--live-wpm=false"},
			wantDur:  60,
			wantLive: 0,
		},
		{
			name:     "payload beats flags",
			args:     []string{"--live-wpm=false", "--session-json", `{"promptText":"the cat sat","durationSeconds":30}`},
			wantDur:  30,
			wantLive: 1,
			wantText: "the cat sat",
		},
		{
			name:     "environment payload",
			env:      `{"promptText":"from env","durationSeconds":15}`,
			wantDur:  15,
			wantLive: 1,
			wantText: "from env",
		},
		{
			name:     "stored preference beats payload",
			args:     []string{"--session-json", `{"promptText":"the cat sat","durationSeconds":30}`},
			stored:   120,
			wantDur:  120,
			wantLive: 1,
			wantText: "the cat sat",
		},
		{
			name:     "stored preference beats flag default",
			stored:   15,
			wantDur:  15,
			wantLive: 1,
		},
		{
			name:      "explicit duration beats preference",
			args:      []string{"--duration", "30", "--session-json", `{"promptText":"the cat sat","durationSeconds":15}`},
			stored:    120,
			wantDur:   30,
			wantLive:  1,
			wantText:  "the cat sat",
			wantExact: true,
		},
		{
			name:     "invalid stored preference ignored",
			stored:   45,
			wantDur:  60,
			wantLive: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(config.SessionEnv, tt.env)
			cmd := newRootCmd()
			require.NoError(t, cmd.ParseFlags(tt.args))

			cfg, explicit := startConfig(cmd, zap.NewNop())
			require.Equal(t, tt.wantExact, explicit)
			if tt.stored != 0 {
				cfg = preferDuration(cfg, tt.stored, explicit)
			}
			require.Equal(t, tt.wantDur, cfg.DurationSeconds)
			require.Equal(t, tt.wantLive, cfg.LiveWPM)
			require.Equal(t, tt.wantText, cfg.PromptText)
		})
	}
}
