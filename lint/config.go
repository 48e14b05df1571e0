package lint

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fernlang/flin/internal/types"
)

// DefaultConfigName is looked up in the working directory when no
// config path is given.
const DefaultConfigName = ".flin.yaml"

// Config is the on-disk configuration file.
type Config struct {
	Name string `yaml:"name"`

	// ExpectNaN keeps float handling NaN-safe: reorderings and
	// self-equality folds that NaN would break are disabled.
	ExpectNaN bool `yaml:"expect-nan"`

	// IgnoredCaseOfTypes lists fully-qualified union types whose case
	// expressions are never collapsed.
	IgnoredCaseOfTypes []string `yaml:"ignored-case-of-types"`

	// Rules maps rule names to severities: error, warning, info, off.
	Rules map[string]string `yaml:"rules"`

	// Deps points at the dependency manifest describing types declared
	// outside the project.
	Deps string `yaml:"deps"`
}

// LoadConfig reads a configuration file. An empty path falls back to
// .flin.yaml in the working directory, and a missing default file is
// not an error: analysis runs with the zero configuration.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	fallback := path == ""
	if fallback {
		path = DefaultConfigName
	}
	f, err := os.Open(path)
	if err != nil {
		if fallback && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Analysis converts the file form into the engine's configuration.
func (c Config) Analysis() (types.Config, error) {
	out := types.Config{
		ExpectNaN:          c.ExpectNaN,
		IgnoredCaseOfTypes: c.IgnoredCaseOfTypes,
	}
	if len(c.Rules) > 0 {
		out.Rules = make(map[string]types.Severity, len(c.Rules))
		for name, sev := range c.Rules {
			parsed, err := parseSeverity(sev)
			if err != nil {
				return out, fmt.Errorf("rule %s: %w", name, err)
			}
			out.Rules[name] = parsed
		}
	}
	return out, nil
}

func parseSeverity(s string) (types.Severity, error) {
	switch s {
	case "error":
		return types.SeverityError, nil
	case "warning":
		return types.SeverityWarning, nil
	case "info":
		return types.SeverityInfo, nil
	case "off":
		return types.SeverityOff, nil
	default:
		return 0, fmt.Errorf("unknown severity %q", s)
	}
}
