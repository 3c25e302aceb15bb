package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(logLevelEnv, "")

	cfg := Load("")
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 2*time.Second, cfg.Enrichment.DelayMin)
	assert.Equal(t, 4*time.Second, cfg.Enrichment.DelayMax)
	assert.Equal(t, "https://econjobmarket.org/login", cfg.Sources.EJM.LoginURL)

	w, err := cfg.Window.Bounds()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC), w.Lower)
	assert.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), w.Upper)
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	path := writeFile(t, "config.yaml", `
logging:
  level: debug
window:
  lower: "2025-10-01"
  upper: "2025-12-01"
  fallbackYear: 2025
enrichment:
  delayMin: 1s
  delayMax: 500ms
`)
	t.Setenv(configPathEnv, path)
	t.Setenv(logLevelEnv, "warn")

	cfg := Load("")
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 2025, cfg.Window.FallbackYear)
	assert.Equal(t, time.Second, cfg.Enrichment.DelayMin)
	assert.Equal(t, time.Second, cfg.Enrichment.DelayMax, "delayMax is raised to delayMin")
	assert.Equal(t, "configs/exclude.toml", cfg.Exclusions.Path)
}

func TestLoadUnparsableFallsBack(t *testing.T) {
	path := writeFile(t, "config.yaml", "window: [not, a, map")
	t.Setenv(logLevelEnv, "")

	cfg := Load(path)
	assert.Equal(t, "2024-10-01", cfg.Window.Lower)
}

func TestWindowBoundsRejectsInverted(t *testing.T) {
	t.Parallel()

	_, err := WindowConfig{Lower: "2024-12-01", Upper: "2024-10-01"}.Bounds()
	assert.Error(t, err)

	_, err = WindowConfig{Lower: "October 1", Upper: "2024-10-01"}.Bounds()
	assert.Error(t, err)
}

func TestLoadExclusionsTOML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "exclude.toml", `
jel_codes = ["Q1", " q2 "]
ejmcats = ["Accounting"]
countries = ["China", "no  country"]
`)
	ex, err := LoadExclusions(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"q1", "q2"}, ex.JELCodes)
	assert.Equal(t, []string{"accounting"}, ex.EJMCats)
	assert.Equal(t, []string{"CHINA", "NO COUNTRY"}, ex.Countries)

	lists, err := ex.For("jel_codes")
	require.NoError(t, err)
	assert.True(t, lists.ExcludesCode("Q2"))
	assert.True(t, lists.ExcludesCountry("china"))

	_, err = ex.For("unknown")
	assert.Error(t, err)
}

func TestLoadExclusionsYAMLAndErrors(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "exclude.yml", "ejmcats:\n  - Finance\ncountries: []\n")
	ex, err := LoadExclusions(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"finance"}, ex.EJMCats)

	_, err = LoadExclusions(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = LoadExclusions(writeFile(t, "exclude.json", "{}"))
	assert.Error(t, err)

	_, err = LoadExclusions(writeFile(t, "bad.toml", "jel_codes = [unterminated"))
	assert.Error(t, err)
}

func TestLoadCredentials(t *testing.T) {
	path := writeFile(t, "ejm_login.toml", "email = \"a@b.org\"\npassword = \"file\"\n")

	t.Setenv(ejmEmailEnv, "")
	t.Setenv(ejmPasswordEnv, "")
	creds, err := LoadCredentials(path)
	require.NoError(t, err)
	assert.Equal(t, CredentialsConfig{Email: "a@b.org", Password: "file"}, creds)

	t.Setenv(ejmPasswordEnv, "env")
	creds, err = LoadCredentials(path)
	require.NoError(t, err)
	assert.Equal(t, "env", creds.Password)

	t.Setenv(ejmEmailEnv, "")
	t.Setenv(ejmPasswordEnv, "")
	_, err = LoadCredentials(filepath.Join(t.TempDir(), "none.toml"))
	assert.ErrorIs(t, err, ErrNoCredentials)
}
