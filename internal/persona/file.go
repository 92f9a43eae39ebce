package persona

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a persona from a YAML file. Fields missing from the file
// keep the defaults from New. The result is validated.
func LoadFile(path string) (*Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading persona file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML persona document on top of the defaults.
func Parse(data []byte) (*Persona, error) {
	p := New("user_001", "Synthetic User")
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parsing persona: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Marshal renders the persona as YAML.
func (p *Persona) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}
