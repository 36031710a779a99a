package dataset

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Codebook maps detailed degree-field codes to human-readable major
// titles, used only for diagnostics formatting.
type Codebook struct {
	Majors map[string]string `yaml:"majors"`
}

// LoadCodebook reads the major-title codebook from a YAML file.
func LoadCodebook(path string) (*Codebook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: read codebook %s", path)
	}

	var cb Codebook
	if err := yaml.Unmarshal(data, &cb); err != nil {
		return nil, eris.Wrapf(err, "dataset: parse codebook %s", path)
	}
	if cb.Majors == nil {
		cb.Majors = map[string]string{}
	}
	return &cb, nil
}

// Title returns the title for a major code, or "" when unknown.
func (c *Codebook) Title(major string) string {
	if c == nil {
		return ""
	}
	return c.Majors[major]
}
