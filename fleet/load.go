package fleet

import (
	"errors"
)

// Load reads, decodes and validates the fleet config at path. Every failure
// is reported as a *ConfigError carrying the path.
func Load(path string) (*Fleet, error) {
	b, err := readFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Msg: "cannot read", Err: err}
	}
	f, err := Parse(b)
	if err != nil {
		var ce *ConfigError
		if errors.As(err, &ce) {
			ce.Path = path
			return nil, ce
		}
		return nil, &ConfigError{Path: path, Err: err}
	}
	return f, nil
}

// Parse decodes and validates a fleet config document.
func Parse(b []byte) (*Fleet, error) {
	f := &Fleet{}
	if err := yamlUnmarshal(b, f); err != nil {
		return nil, &ConfigError{Err: err}
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}
