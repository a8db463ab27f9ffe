package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestResolvePrecedence(t *testing.T) {
	file := Config{Token: "a"}
	env := Config{Token: "b"}
	flags := Config{Token: "c"}

	assert.Equal(t, "c", Resolve(file, env, flags).Token)
	assert.Equal(t, "b", Resolve(file, env, Config{}).Token)
	assert.Equal(t, "a", Resolve(file, Config{}, Config{}).Token)
}

func TestResolvePerField(t *testing.T) {
	file := Config{Host: "http://file", Project: "file-proj"}
	env := Config{Project: "env-proj"}
	flags := Config{Branch: "feature"}

	got := Resolve(file, env, flags)
	assert.Equal(t, "http://file", got.Host)
	assert.Equal(t, "env-proj", got.Project)
	assert.Equal(t, "feature", got.Branch)
}

func TestResolveDefaultHost(t *testing.T) {
	got := Resolve(Config{}, Config{}, Config{})
	assert.Equal(t, DefaultHost, got.Host)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, "token: file-token\nproject: my-proj\n")
	t.Setenv(EnvToken, "env-token")
	t.Setenv(EnvHost, "")
	t.Setenv(EnvProject, "")
	t.Setenv(EnvBranch, "")

	file, env := Load(path)
	assert.Equal(t, "file-token", file.Token)
	assert.Equal(t, "my-proj", file.Project)
	assert.Equal(t, "env-token", env.Token)
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	t.Setenv(EnvToken, "")
	t.Setenv(EnvHost, "")
	t.Setenv(EnvProject, "")
	t.Setenv(EnvBranch, "")

	file, _ := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Equal(t, Config{}, file)
}

func TestLoadMalformedFileIsTolerated(t *testing.T) {
	path := writeConfig(t, ": this is : not yaml : at all [")
	t.Setenv(EnvToken, "")
	t.Setenv(EnvHost, "")
	t.Setenv(EnvProject, "")
	t.Setenv(EnvBranch, "")

	file, _ := Load(path)
	assert.Equal(t, Config{}, file)
}

func TestValidate(t *testing.T) {
	err := Config{Project: "p"}.Validate()
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "token", ce.Field)

	err = Config{Token: "t"}.Validate()
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "project", ce.Field)

	assert.NoError(t, Config{Token: "t", Project: "p"}.Validate())
}

func TestRedacted(t *testing.T) {
	c := Config{Host: "h", Token: "super-secret", Project: "p"}
	r := c.Redacted()
	assert.Equal(t, "***", r.Token)
	assert.Equal(t, "h", r.Host)

	// Empty token stays empty, not masked.
	assert.Equal(t, "", Config{}.Redacted().Token)
}

func TestJSONRedactsToken(t *testing.T) {
	c := Config{Token: "super-secret"}
	out, err := c.JSON()
	require.NoError(t, err)
	assert.Contains(t, out, `"***"`)
	assert.NotContains(t, out, "super-secret")
}

func TestSetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, Set(path, "token", "tok"))
	require.NoError(t, Set(path, "project", "proj"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "token: tok")
	assert.Contains(t, string(raw), "project: proj")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSetUnknownKey(t *testing.T) {
	err := Set(filepath.Join(t.TempDir(), "config.yaml"), "nope", "v")
	assert.Error(t, err)
}

func TestPathExplicitWins(t *testing.T) {
	got := Path("/tmp/custom.yaml")
	assert.Equal(t, "/tmp/custom.yaml", got)

	assert.Contains(t, Path(""), filepath.Join("sonarlens", "config.yaml"))
}

func TestGet(t *testing.T) {
	c := Config{Host: "h", Token: "t", Project: "p", Branch: "b"}
	for key, want := range map[string]string{"host": "h", "token": "t", "project": "p", "branch": "b"} {
		got, ok := c.Get(key)
		require.True(t, ok, key)
		assert.Equal(t, want, got)
	}
	_, ok := c.Get("bogus")
	assert.False(t, ok)
}
