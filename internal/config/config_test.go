package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dinghy6/sabnzbd-scripts/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps the user's real config out of the test
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/mnt/media/Sport", cfg.Destination)
	assert.Equal(t, "UFC", cfg.Promotion)
	assert.Empty(t, cfg.Path())
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)

	tmpl, err := cfg.Template()
	require.NoError(t, err)
	assert.Equal(t, []types.Field{types.FieldEventNumber, types.FieldFighterNames, types.FieldEdition, types.FieldResolution}, tmpl.Order)
	assert.Equal(t, types.BracketCurly, tmpl.BracketFor(types.FieldEdition))
	assert.Equal(t, types.BracketNone, tmpl.BracketFor(types.FieldFighterNames))
	assert.True(t, tmpl.Folder.Has(types.FieldFighterNames))
	assert.True(t, tmpl.SubfolderFile.Has(types.FieldFighterNames))
}

func TestLoad_File(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yml")

	content := `destination: /srv/sport
subfolder: Extras
replace_same_resolution: true
format:
  brackets:
    resolution: round
permissions:
  file_mode: "0664"
watch:
  debounce: 500ms
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, "/srv/sport", cfg.Destination)
	assert.Equal(t, "Extras", cfg.Subfolder)
	assert.True(t, cfg.ReplaceSameResolution)
	assert.Equal(t, os.FileMode(0o664), cfg.FileMode())
	assert.Equal(t, os.FileMode(0), cfg.DirMode())
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)

	tmpl, err := cfg.Template()
	require.NoError(t, err)
	assert.Equal(t, types.BracketRound, tmpl.BracketFor(types.FieldResolution))
	assert.Equal(t, types.BracketCurly, tmpl.BracketFor(types.FieldEdition))
}

func TestLoad_UserConfig(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "ufcsort", "config.yml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("promotion: PFL\n"), 0644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, "PFL", cfg.Promotion)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("destination: /srv/sport\nstrict_matching: false\n"), 0644))

	t.Setenv("UFCSORT_DESTINATION", "/data/ufc")
	t.Setenv("UFCSORT_STRICT_MATCHING", "true")
	t.Setenv("UFCSORT_LOGGING_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/ufc", cfg.Destination)
	assert.True(t, cfg.StrictMatching)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_Errors(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "missing.yml"))
	var cfgErr types.ErrConfigInvalid
	assert.True(t, errors.As(err, &cfgErr))

	broken := filepath.Join(dir, "broken.yml")
	require.NoError(t, os.WriteFile(broken, []byte("destination: [unterminated\n"), 0644))
	_, err = Load(broken)
	assert.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, broken, cfgErr.Path)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty destination", func(c *Config) { c.Destination = "" }},
		{"empty promotion", func(c *Config) { c.Promotion = " " }},
		{"unsafe promotion", func(c *Config) { c.Promotion = "UFC:" }},
		{"no formats", func(c *Config) { c.Formats = nil }},
		{"unsafe subfolder", func(c *Config) { c.Subfolder = "Extras/Prelims" }},
		{"unknown field", func(c *Config) { c.Format.Order = []string{"event_number", "title"} }},
		{"missing event number", func(c *Config) { c.Format.Order = []string{"fighter_names", "edition"} }},
		{"duplicate field", func(c *Config) { c.Format.Order = []string{"event_number", "edition", "edition"} }},
		{"single field", func(c *Config) { c.Format.Order = []string{"event_number"} }},
		{"unknown bracket", func(c *Config) { c.Format.Brackets["edition"] = "angle" }},
		{"unknown folder field", func(c *Config) { c.Format.Folder = []string{"season"} }},
		{"bad mode", func(c *Config) { c.Permissions.FileMode = "rw-r--r--" }},
		{"mode out of range", func(c *Config) { c.Permissions.DirMode = "7777" }},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
		{"negative debounce", func(c *Config) { c.Watch.Debounce = -time.Second }},
	}

	require.NoError(t, Default().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			var cfgErr types.ErrConfigInvalid
			assert.True(t, errors.As(err, &cfgErr), "expected ErrConfigInvalid, got %v", err)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "nested", "config.yml")

	cfg := Default()
	cfg.Destination = "/srv/sport"
	cfg.Subfolder = "Other"
	cfg.Permissions.FileMode = "0644"
	cfg.Watch.Settle = 45 * time.Second
	require.NoError(t, cfg.Save(path, false))
	assert.Equal(t, path, cfg.Path())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Destination, loaded.Destination)
	assert.Equal(t, cfg.Subfolder, loaded.Subfolder)
	assert.Equal(t, cfg.Formats, loaded.Formats)
	assert.Equal(t, cfg.Format.Order, loaded.Format.Order)
	assert.Equal(t, os.FileMode(0o644), loaded.FileMode())
	assert.Equal(t, 45*time.Second, loaded.Watch.Settle)

	assert.Error(t, cfg.Save(path, false))
	assert.NoError(t, cfg.Save(path, true))
}

func TestIsStrictCategory(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.IsStrictCategory("ufc"))
	assert.True(t, cfg.IsStrictCategory("UFC"))
	assert.False(t, cfg.IsStrictCategory("movies"))
	assert.False(t, cfg.IsStrictCategory(""))
}

func TestJournalDir(t *testing.T) {
	cfg := Default()
	cfg.Journal.Dir = "/var/lib/ufcsort"
	assert.Equal(t, "/var/lib/ufcsort", cfg.JournalDir())

	cfg.Journal.Dir = ""
	assert.NotEmpty(t, cfg.JournalDir())
}
