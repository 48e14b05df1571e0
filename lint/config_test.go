package lint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fernlang/flin/internal/types"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, t.TempDir(), "flin.yaml", `name: shop
expect-nan: true
ignored-case-of-types:
  - Http.Error
rules:
  identity-map: "off"
  constant-comparison: error
deps: flin-deps.toml
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "shop", cfg.Name)
	assert.True(t, cfg.ExpectNaN)
	assert.Equal(t, []string{"Http.Error"}, cfg.IgnoredCaseOfTypes)
	assert.Equal(t, "off", cfg.Rules["identity-map"])
	assert.Equal(t, "flin-deps.toml", cfg.Deps)
}

func TestLoadConfigMissingDefaultIsZero(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestLoadConfigMissingExplicitPathFails(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", "rules: [broken\n")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestAnalysisConversion(t *testing.T) {
	cfg := Config{
		ExpectNaN:          true,
		IgnoredCaseOfTypes: []string{"Http.Error"},
		Rules: map[string]string{
			"identity-map":        "off",
			"constant-comparison": "error",
			"double-negation":     "info",
		},
	}
	out, err := cfg.Analysis()
	require.NoError(t, err)
	assert.True(t, out.ExpectNaN)
	assert.Equal(t, []string{"Http.Error"}, out.IgnoredCaseOfTypes)
	assert.Equal(t, types.SeverityOff, out.Rules["identity-map"])
	assert.Equal(t, types.SeverityError, out.Rules["constant-comparison"])
	assert.Equal(t, types.SeverityInfo, out.Rules["double-negation"])
}

func TestAnalysisRejectsUnknownSeverity(t *testing.T) {
	cfg := Config{Rules: map[string]string{"identity-map": "loud"}}
	_, err := cfg.Analysis()
	assert.Error(t, err)
}
