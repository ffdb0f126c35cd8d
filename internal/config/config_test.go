package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points XDG_CONFIG_HOME and the working directory at a fresh temp dir
// and clears every ALERTR_ variable.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))
	for _, key := range envKeys {
		t.Setenv("ALERTR_"+strings.ToUpper(key), "")
		_ = os.Unsetenv("ALERTR_" + strings.ToUpper(key))
	}
	return tmpDir
}

func TestGlobalPath(t *testing.T) {
	t.Run("with XDG_CONFIG_HOME set", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		assert.Equal(t, "/custom/config/alertr/alertr.yml", GlobalPath())
	})

	t.Run("without XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		got := GlobalPath()
		assert.True(t, filepath.IsAbs(got), "GlobalPath() should be absolute, got %v", got)
		assert.Equal(t, "alertr.yml", filepath.Base(got))
	})
}

func TestProjectPath(t *testing.T) {
	assert.Equal(t, "alertr.yml", ProjectPath())
}

func TestExists(t *testing.T) {
	isolate(t)

	assert.False(t, Exists(), "no config files yet")

	require.NoError(t, os.WriteFile(ProjectPath(), []byte("catalog: x.yml\n"), 0644))
	assert.True(t, Exists())
	require.NoError(t, os.Remove(ProjectPath()))

	require.NoError(t, WriteGlobal(&Config{DataDir: ".g"}))
	assert.True(t, Exists())
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ".alertr", cfg.DataDir)
	assert.Equal(t, "catalog.yml", cfg.Catalog)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, GroupOrderFirstSeen, cfg.GroupOrder)
	assert.False(t, cfg.PruneHidden)
	assert.Equal(t, 30, cfg.RetentionDays)
	assert.Equal(t, 30*24*time.Hour, cfg.Retention())

	d, err := cfg.SubmitTimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, d)
}

func TestLoad_Precedence(t *testing.T) {
	isolate(t)

	require.NoError(t, WriteGlobal(&Config{
		DataDir:       ".global",
		Catalog:       "global.yml",
		LogLevel:      "warn",
		GroupOrder:    GroupOrderParent,
		RetentionDays: 7,
		SubmitTimeout: "5s",
	}))
	require.NoError(t, os.WriteFile(ProjectPath(), []byte("catalog: project.yml\n"), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ".global", cfg.DataDir, "global value survives when project does not set it")
	assert.Equal(t, "project.yml", cfg.Catalog, "project overrides global")
	assert.Equal(t, GroupOrderParent, cfg.GroupOrder)
	assert.Equal(t, 7, cfg.RetentionDays)

	t.Setenv("ALERTR_CATALOG", "env.yml")
	t.Setenv("ALERTR_PRUNE_HIDDEN", "true")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "env.yml", cfg.Catalog, "env overrides files")
	assert.True(t, cfg.PruneHidden)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("catalog", "", "")
	fs.String("data-dir", "", "")
	require.NoError(t, fs.Parse([]string{"--catalog", "flag.yml"}))

	cfg, err = Load(WithFlags(fs))
	require.NoError(t, err)
	assert.Equal(t, "flag.yml", cfg.Catalog, "explicit flag wins")
	assert.Equal(t, ".global", cfg.DataDir, "unset flag does not clobber lower sources")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad group order", "group_order: random\n", "invalid group_order"},
		{"bad retention", "retention_days: 0\n", "retention_days"},
		{"bad timeout", "submit_timeout: soon\n", "invalid submit_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			require.NoError(t, os.WriteFile(ProjectPath(), []byte(tt.yaml), 0644))

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestWriteProject(t *testing.T) {
	isolate(t)

	cfg := &Config{
		DataDir:       ".project",
		Catalog:       "schools.yml",
		LogLevel:      "debug",
		GroupOrder:    GroupOrderFirstSeen,
		PruneHidden:   true,
		RetentionDays: 14,
		SubmitTimeout: "3s",
	}
	require.NoError(t, WriteProject(cfg))

	data, err := os.ReadFile(ProjectPath())
	require.NoError(t, err)

	content := string(data)
	for _, field := range []string{
		"data_dir: .project",
		"catalog: schools.yml",
		"log_level: debug",
		"prune_hidden: true",
		"retention_days: 14",
		"submit_timeout: 3s",
	} {
		assert.Contains(t, content, field)
	}
}

func TestSubmitTimeoutDuration(t *testing.T) {
	cfg := &Config{SubmitTimeout: ""}
	d, err := cfg.SubmitTimeoutDuration()
	require.NoError(t, err)
	assert.Zero(t, d)

	cfg.SubmitTimeout = "-1s"
	_, err = cfg.SubmitTimeoutDuration()
	assert.Error(t, err)
}
