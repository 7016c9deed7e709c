package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "dfa.txt", cfg.Spec)
	assert.Equal(t, "input.txt", cfg.Input)
	assert.Equal(t, "output.txt", cfg.Output)
	assert.Equal(t, "isolate", cfg.Policy)
	assert.Equal(t, 1, cfg.Workers)
	assert.True(t, cfg.Strict)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "dfa:spec", cfg.Redis.Key)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
spec: machine.yaml
workers: 4
policy: reject
redis:
  addr: localhost:6379
  db: 2
`), 0644))

	t.Setenv("DFA_WORKERS", "6")
	t.Setenv("DFA_REDIS_KEY", "from-env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("policy", "isolate", "")
	flags.Bool("strict", true, "")
	require.NoError(t, flags.Parse([]string{"--policy", "abort", "--strict=false"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "machine.yaml", cfg.Spec)     // file
	assert.Equal(t, 6, cfg.Workers)               // env beats file
	assert.Equal(t, "abort", cfg.Policy)          // flag beats file
	assert.False(t, cfg.Strict)                   // flag
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "from-env", cfg.Redis.Key)
}

func TestLoad_DefaultFlagDoesNotOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"policy": "reject"}`), 0644))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("policy", "isolate", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "reject", cfg.Policy)
}

func TestLoad_DiscoversDotFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".dfa.yaml"), []byte("output: verdicts.txt\n"), 0644))
	t.Chdir(dir)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "verdicts.txt", cfg.Output)
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load("does-not-exist.yaml", nil)
	assert.Error(t, err)

	t.Setenv("DFA_POLICY", "skip")
	_, err = Load("", nil)
	assert.ErrorContains(t, err, "unknown policy")
}

func TestValidate(t *testing.T) {
	base := Config{Policy: "isolate", Format: "text", Workers: 1, Port: 8080}
	require.NoError(t, base.Validate())

	bad := base
	bad.Format = "xml"
	assert.Error(t, bad.Validate())

	bad = base
	bad.Workers = -1
	assert.Error(t, bad.Validate())

	bad = base
	bad.Port = 70000
	assert.Error(t, bad.Validate())
}
