// Package config layers the persisted config file, environment variables
// and CLI flags into the effective runtime configuration. Precedence is
// file < env < flags, per field.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// DefaultHost is used when no layer supplies a host.
const DefaultHost = "http://localhost:9000"

// Environment variable names recognised by Load.
const (
	EnvHost    = "SONAR_HOST"
	EnvToken   = "SONAR_TOKEN"
	EnvProject = "SONAR_PROJECT"
	EnvBranch  = "SONAR_BRANCH"
)

// Config is one layer of settings, or the fully resolved result.
type Config struct {
	Host    string `yaml:"host,omitempty" json:"host"`
	Token   string `yaml:"token,omitempty" json:"token"`
	Project string `yaml:"project,omitempty" json:"project"`
	Branch  string `yaml:"branch,omitempty" json:"branch"`
}

// ConfigError reports a required field missing before an authenticated
// call. It is fatal at command entry.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing required configuration: %s (set it via flag, %s env var, or the config file)", e.Field, envFor(e.Field))
}

func envFor(field string) string {
	switch field {
	case "token":
		return EnvToken
	case "project":
		return EnvProject
	case "host":
		return EnvHost
	case "branch":
		return EnvBranch
	}
	return ""
}

// Path resolves the config file location: the explicit path when given,
// else the XDG config dir.
func Path(explicit string) string {
	if explicit != "" {
		abs, err := filepath.Abs(explicit)
		if err == nil {
			return abs
		}
		return explicit
	}
	return filepath.Join(xdg.ConfigHome, "sonarlens", "config.yaml")
}

// Load reads the file layer and the environment layer. A missing or
// malformed file yields an empty layer rather than an error: a broken
// config file must never block commands that get their settings from
// flags or the environment.
func Load(explicit string) (file Config, env Config) {
	raw, err := os.ReadFile(Path(explicit))
	if err == nil {
		// Tolerate malformed YAML: partial decode keeps whatever parsed.
		_ = yaml.Unmarshal(raw, &file)
	}

	env = Config{
		Host:    os.Getenv(EnvHost),
		Token:   os.Getenv(EnvToken),
		Project: os.Getenv(EnvProject),
		Branch:  os.Getenv(EnvBranch),
	}
	return file, env
}

// Resolve merges the three layers. flags wins over env wins over file;
// any field left empty by all layers falls through, except Host which
// gets DefaultHost.
func Resolve(file, env, flags Config) Config {
	pick := func(f, e, fl string) string {
		if fl != "" {
			return fl
		}
		if e != "" {
			return e
		}
		return f
	}
	c := Config{
		Host:    pick(file.Host, env.Host, flags.Host),
		Token:   pick(file.Token, env.Token, flags.Token),
		Project: pick(file.Project, env.Project, flags.Project),
		Branch:  pick(file.Branch, env.Branch, flags.Branch),
	}
	if c.Host == "" {
		c.Host = DefaultHost
	}
	return c
}

// Validate checks the fields every authenticated call needs.
func (c Config) Validate() error {
	if c.Token == "" {
		return &ConfigError{Field: "token"}
	}
	if c.Project == "" {
		return &ConfigError{Field: "project"}
	}
	return nil
}

// Redacted returns a copy safe to print: a non-empty token becomes the
// literal "***".
func (c Config) Redacted() Config {
	if c.Token != "" {
		c.Token = "***"
	}
	return c
}

// JSON renders the redacted configuration as indented JSON.
func (c Config) JSON() (string, error) {
	b, err := json.MarshalIndent(c.Redacted(), "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Get returns a named field value from the (unredacted) config.
func (c Config) Get(key string) (string, bool) {
	switch key {
	case "host":
		return c.Host, true
	case "token":
		return c.Token, true
	case "project":
		return c.Project, true
	case "branch":
		return c.Branch, true
	}
	return "", false
}

// Set writes key=value into the config file layer at path, creating the
// file and its directory as needed. Unknown keys are rejected.
func Set(path, key, value string) error {
	var file Config
	if raw, err := os.ReadFile(path); err == nil {
		_ = yaml.Unmarshal(raw, &file)
	}

	switch key {
	case "host":
		file.Host = value
	case "token":
		file.Token = value
	case "project":
		file.Project = value
	case "branch":
		file.Branch = value
	default:
		return fmt.Errorf("unknown config key %q (known: host, token, project, branch)", key)
	}

	out, err := yaml.Marshal(file)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	// Token lives in here, keep it private.
	return os.WriteFile(path, out, 0o600)
}
