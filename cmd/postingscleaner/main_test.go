package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, body string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAEACommand(t *testing.T) {
	dir := t.TempDir()
	exclude := writeFile(t, filepath.Join(dir, "exclude.toml"), "jel_codes = []\nejmcats = []\ncountries = []\n")
	cfg := writeFile(t, filepath.Join(dir, "config.yaml"), "logging:\n  level: error\nexclusions:\n  path: "+exclude+"\n")
	input := writeFile(t, filepath.Join(dir, "joe.csv"),
		"jp_id,jp_title,jp_section,locations,Application_deadline\n"+
			"1,Assistant Professor,US: Full-Time Academic,USA,2024-11-01\n")

	out, err := execute(t, "--config", cfg, "aea", input,
		filepath.Join(dir, "out"), filepath.Join(dir, "disc"), filepath.Join(dir, "acad"), filepath.Join(dir, "verb"))
	require.NoError(t, err)
	assert.Contains(t, out, "aea: 1 rows, 1 kept, 0 discarded, 0 enriched")

	_, err = os.Stat(filepath.Join(dir, "verb", "verbose_aea.csv"))
	assert.NoError(t, err)

	_, err = execute(t, "--config", cfg, "join", filepath.Join(dir, "all.csv"), filepath.Join(dir, "out", "aea.csv"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "all.csv"))
	assert.NoError(t, err)
}

func TestCommandArgs(t *testing.T) {
	_, err := execute(t, "aea", "only-one")
	assert.Error(t, err)

	_, err = execute(t, "manual", "alice", "in.csv")
	assert.Error(t, err)

	_, err = execute(t, "join", "out.csv")
	assert.Error(t, err)

	_, err = execute(t, "unknown")
	assert.Error(t, err)
}

func TestMissingExclusionsFails(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, filepath.Join(dir, "config.yaml"), "exclusions:\n  path: "+filepath.Join(dir, "absent.toml")+"\n")

	_, err := execute(t, "--config", cfg, "--log-level", "error", "join", filepath.Join(dir, "x.csv"), filepath.Join(dir, "y.csv"))
	assert.ErrorContains(t, err, "load exclusions")
}
