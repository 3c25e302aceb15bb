package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"PostingsCleaner/internal/classify"
	"PostingsCleaner/internal/domain"
)

const (
	ejmEmailEnv    = "EJM_EMAIL"
	ejmPasswordEnv = "EJM_PASSWORD"
)

// ErrNoCredentials reports that neither the document nor the environment supplied a login.
var ErrNoCredentials = errors.New("ejm credentials are not configured")

// Exclusions is the exclusion document: discipline lists keyed by source plus the
// shared country list.
type Exclusions struct {
	JELCodes  []string `toml:"jel_codes" yaml:"jel_codes"`
	EJMCats   []string `toml:"ejmcats" yaml:"ejmcats"`
	Countries []string `toml:"countries" yaml:"countries"`
}

// For builds the classifier lists for one discipline collection.
func (e Exclusions) For(list string) (classify.Exclusions, error) {
	var codes []string
	switch list {
	case "jel_codes":
		codes = e.JELCodes
	case "ejmcats":
		codes = e.EJMCats
	default:
		return classify.Exclusions{}, fmt.Errorf("exclusions: unknown discipline list %q", list)
	}
	return classify.NewExclusions(codes, e.Countries), nil
}

// LoadExclusions decodes the exclusion document and normalizes every entry.
func LoadExclusions(path string) (Exclusions, error) {
	var ex Exclusions
	if err := decodeDocument(path, &ex); err != nil {
		return Exclusions{}, fmt.Errorf("load exclusions: %w", err)
	}
	ex.JELCodes = normalizeAll(ex.JELCodes, domain.NormalizeCode)
	ex.EJMCats = normalizeAll(ex.EJMCats, domain.NormalizeCode)
	ex.Countries = normalizeAll(ex.Countries, domain.NormalizeCountry)
	return ex, nil
}

// CredentialsConfig is the EJM login.
type CredentialsConfig struct {
	Email    string `toml:"email" yaml:"email"`
	Password string `toml:"password" yaml:"password"`
}

// LoadCredentials reads the login document, then lets EJM_EMAIL and EJM_PASSWORD
// override it. A missing document is fine when the environment fills both fields.
func LoadCredentials(path string) (CredentialsConfig, error) {
	var creds CredentialsConfig
	if path != "" {
		err := decodeDocument(path, &creds)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return CredentialsConfig{}, fmt.Errorf("load credentials: %w", err)
		}
	}

	if v := os.Getenv(ejmEmailEnv); v != "" {
		creds.Email = v
	}
	if v := os.Getenv(ejmPasswordEnv); v != "" {
		creds.Password = v
	}

	if creds.Email == "" || creds.Password == "" {
		return CredentialsConfig{}, ErrNoCredentials
	}
	return creds, nil
}

func decodeDocument(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(raw), out); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("parse %s: unsupported document type", path)
	}
	return nil
}

func normalizeAll(values []string, norm func(string) string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if n := norm(v); n != "" {
			out = append(out, n)
		}
	}
	return out
}
