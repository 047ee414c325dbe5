package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
env: "prod"
storage:
  backend: "sqlite"
  path: "students.db"
http_server:
  address: "0.0.0.0:9000"
  timeout: 3s
seed:
  - name: "John Cruz"
    grade: 11
    section: "Gabriel"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, Storage{Backend: BackendSQLite, Path: "students.db"}, cfg.Storage)
	assert.Equal(t, "0.0.0.0:9000", cfg.HTTPServer.Addr)
	assert.Equal(t, 3*time.Second, cfg.HTTPServer.Timeout)
	assert.Equal(t, 60*time.Second, cfg.HTTPServer.IdleTimeout)
	require.Len(t, cfg.Seed, 1)

	in := cfg.Seed[0].NewStudent()
	require.NotNil(t, in.Grade)
	assert.Equal(t, "John Cruz", *in.Name)
	assert.Equal(t, 11, *in.Grade)
	assert.Equal(t, "Gabriel", *in.Section)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
env: "dev"
http_server:
  address: "localhost:8082"
`))
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, ":memory:", cfg.Storage.Path)
	assert.Equal(t, 10*time.Second, cfg.HTTPServer.Timeout)
	assert.Empty(t, cfg.Seed)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "sqlite")

	cfg, err := Load(writeConfig(t, `
env: "dev"
storage:
  backend: "memory"
http_server:
  address: "localhost:8082"
`))
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{
			name: "missing file",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") },
		},
		{
			name: "missing required address",
			path: func(t *testing.T) string { return writeConfig(t, "env: \"dev\"\n") },
		},
		{
			name: "unknown backend",
			path: func(t *testing.T) string {
				return writeConfig(t, "env: \"dev\"\nstorage:\n  backend: \"redis\"\nhttp_server:\n  address: \":1\"\n")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path(t))
			assert.Error(t, err)
		})
	}
}
