package exceltab

import (
	"fmt"
	"strings"

	yaml "gopkg.in/yaml.v2"
)

// FileConfig is the YAML form of a document configuration: builder
// options plus the import column bindings.
//
//	options:
//	  font_name: Arial
//	  orientation: horizontal
//	columns:
//	  - title: Importo
//	    field: Amount
//	    category: currency
//	    required: true
type FileConfig struct {
	Options Options        `yaml:"options"`
	Columns []ImportColumn `yaml:"columns"`
}

// LoadConfig parses a YAML document configuration.
func LoadConfig(data []byte) (*FileConfig, error) {
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("exceltab: parsing config: %w", err)
	}
	for i := range cfg.Columns {
		if cfg.Columns[i].Field == "" && !cfg.Columns[i].Special {
			return nil, configErrf("column %q has no target field", cfg.Columns[i].Title)
		}
	}
	return &cfg, nil
}

// UnmarshalYAML reads an orientation from its name.
func (o *Orientation) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	switch strings.ToLower(name) {
	case "", "vertical":
		*o = Vertical
	case "horizontal":
		*o = Horizontal
	default:
		return configErrf("unknown orientation %q", name)
	}
	return nil
}

// MarshalYAML writes an orientation by name.
func (o Orientation) MarshalYAML() (interface{}, error) {
	return o.String(), nil
}
