package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("USER", "ana")
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "ana", cfg.Actor.Name)
	assert.Equal(t, "en-US", cfg.Language)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv(t *testing.T) {
	t.Setenv("SPEAKSET_DB", "/tmp/s.db")
	t.Setenv("SPEAKSET_LOG_FILE", "/tmp/s.log")
	t.Setenv("SPEAKSET_LOG_LEVEL", "DEBUG")
	t.Setenv("SPEAKSET_LOG_FORMAT", "json")
	t.Setenv("SPEAKSET_ACTOR_NAME", "Ana")
	t.Setenv("SPEAKSET_ACTOR_MBOX", "mailto:ana@example.org")
	t.Setenv("SPEAKSET_ACTIVITY_BASE", "https://lms.example.org/sets/")
	t.Setenv("SPEAKSET_LANGUAGE", "es-ES")

	cfg := FromEnv()

	assert.Equal(t, "/tmp/s.db", cfg.DBPath)
	assert.Equal(t, "/tmp/s.log", cfg.Log.File)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "Ana", cfg.Actor.Name)
	assert.Equal(t, "ana@example.org", cfg.Actor.Mbox)
	assert.Equal(t, "es-ES", cfg.Language)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://lms.example.org/sets/greetings", cfg.ActivityID("greetings"))
	actor := cfg.XAPIActor()
	assert.Equal(t, "mailto:ana@example.org", actor.Mbox)
	assert.Nil(t, actor.Account)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad level", func(c *Config) { c.Log.Level = "verbose" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
		{"no actor", func(c *Config) { c.Actor.Name = "" }},
		{"bad mbox", func(c *Config) { c.Actor.Mbox = "not-an-address" }},
		{"bad language", func(c *Config) { c.Language = "not a tag" }},
		{"no activity base", func(c *Config) { c.ActivityBase = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Actor.Name = "ana"
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestActivityIDURN(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "urn:speakset:set:greetings", cfg.ActivityID("greetings"))
}

func TestXAPIActorAccount(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Actor.Name = "ana"

	actor := cfg.XAPIActor()

	require.NotNil(t, actor.Account)
	assert.Equal(t, "ana", actor.Account.Name)
	assert.Empty(t, actor.Mbox)
}

func TestBuilder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Language = "es-ES"

	b := cfg.Builder("greetings")

	assert.Equal(t, "urn:speakset:set:greetings", b.ActivityID())
	assert.Equal(t, "hola", b.Text("hola")["es-ES"])
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SPEAKSET_ACTOR_NAME=FromFile\n"), 0o644))
	t.Setenv("SPEAKSET_ACTOR_NAME", "")
	os.Unsetenv("SPEAKSET_ACTOR_NAME")

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "FromFile", FromEnv().Actor.Name)

	assert.NoError(t, LoadEnvFile(filepath.Join(dir, "missing.env")))
}
