package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Project is the optional per-directory configuration
// (ProjectFileName): an entry file, an output path, and a cache
// location. The lucidc driver does not read it.
type Project struct {
	Entry  string `yaml:"entry"`
	Output string `yaml:"output"`
	Cache  string `yaml:"cache"`
}

// LoadProject reads and parses a lucid.yaml at path. A missing file is
// not an error: LoadProject then returns a nil Project and a nil error.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &p, nil
}
