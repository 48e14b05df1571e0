package project

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// depsManifest mirrors the flin-deps.toml layout: one [[module]] table
// per dependency module, each listing its union types and record
// aliases.
//
//	[[module]]
//	name = "Set"
//
//	[module.types]
//	Set = []
//
//	[[module]]
//	name = "Http"
//
//	[module.types]
//	Error = ["BadUrl", "Timeout", "NetworkError", "BadStatus", "BadBody"]
type depsManifest struct {
	Module []depsModule `toml:"module"`
}

type depsModule struct {
	Name    string              `toml:"name"`
	Types   map[string][]string `toml:"types"`
	Aliases map[string][]string `toml:"aliases"`
}

// LoadDeps reads a dependency manifest and merges it into the summary.
// Manifest modules are external by definition.
func LoadDeps(s *Summary, path string) error {
	var manifest depsManifest
	if _, err := toml.DecodeFile(path, &manifest); err != nil {
		return fmt.Errorf("reading deps manifest %s: %w", path, err)
	}
	mergeManifest(s, manifest)
	return nil
}

// ParseDeps parses manifest text, mainly for tests.
func ParseDeps(s *Summary, text string) error {
	var manifest depsManifest
	if _, err := toml.Decode(text, &manifest); err != nil {
		return fmt.Errorf("parsing deps manifest: %w", err)
	}
	mergeManifest(s, manifest)
	return nil
}

func mergeManifest(s *Summary, manifest depsManifest) {
	for _, m := range manifest.Module {
		ms, ok := s.Module(m.Name)
		if !ok {
			ms = &ModuleSummary{
				Name:          m.Name,
				UnionVariants: make(map[string][]string),
				RecordAliases: make(map[string][]string),
			}
			s.Add(ms)
		}
		for tn, variants := range m.Types {
			ms.UnionVariants[tn] = variants
		}
		for an, fields := range m.Aliases {
			ms.RecordAliases[an] = fields
		}
	}
}
