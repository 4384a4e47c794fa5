package fleet

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// yamlUnmarshal is separated for clarity/testability
func yamlUnmarshal(b []byte, out any) error {
	if err := yaml.Unmarshal(b, out); err != nil {
		return fmt.Errorf("yaml unmarshal: %w", err)
	}
	return nil
}

// UnmarshalYAML decodes a host entry and resolves its device type from the
// raw "type" value.
func (h *HostEntry) UnmarshalYAML(value *yaml.Node) error {
	type plain HostEntry
	var aux plain
	if err := value.Decode(&aux); err != nil {
		return err
	}
	*h = HostEntry(aux)
	h.Type = ParseDeviceType(h.RawType)
	return nil
}
