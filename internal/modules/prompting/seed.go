package prompting

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedTemplate is one entry of the default template pack shipped with
// the server. The pack replaces any ambient fallback state: a fresh
// user starts from exactly these templates and owns their copies from
// then on.
type SeedTemplate struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Body        string `yaml:"body"`
}

type SeedPack struct {
	Templates []SeedTemplate `yaml:"templates"`
}

func LoadSeedFile(path string) (*SeedPack, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var pack SeedPack
	if err := yaml.Unmarshal(raw, &pack); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	for i, tpl := range pack.Templates {
		if tpl.Name == "" {
			return nil, fmt.Errorf("seed template %d has no name", i)
		}
		if tpl.Body == "" {
			return nil, fmt.Errorf("seed template %q has no body", tpl.Name)
		}
	}
	return &pack, nil
}
