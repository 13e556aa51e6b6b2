package fiducial

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadParams reads a YAML parameter file. Fields missing from the file keep
// the defaults of the mode named in the file (grid when absent).
func LoadParams(path string) (Params, error) {
	return LoadParamsForMode(path, "")
}

// LoadParamsForMode is LoadParams with the mode forced. A non-empty mode
// selects the defaults under the file and overrides the file's mode field.
func LoadParamsForMode(path string, mode Mode) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("failed to read params file: %w", err)
	}
	return ParseParamsForMode(data, mode)
}

// ParseParams decodes YAML parameters on top of the mode defaults.
func ParseParams(data []byte) (Params, error) {
	return ParseParamsForMode(data, "")
}

// ParseParamsForMode decodes YAML parameters on top of the defaults for
// mode, or for the mode named in data when mode is empty.
func ParseParamsForMode(data []byte, mode Mode) (Params, error) {
	if mode == "" {
		var header struct {
			Mode Mode `yaml:"mode"`
		}
		if err := yaml.Unmarshal(data, &header); err != nil {
			return Params{}, fmt.Errorf("failed to parse params: %w", err)
		}
		mode = header.Mode
	}

	p := DefaultParams()
	if mode == ModeMarker {
		p = DefaultMarkerParams()
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Params{}, fmt.Errorf("failed to parse params: %w", err)
	}
	if mode != "" {
		p.Mode = mode
	}

	if err := p.Validate(); err != nil {
		return Params{}, fmt.Errorf("invalid params: %w", err)
	}
	return p, nil
}
