package issuer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Entry is one operator-maintained issuer record.
type Entry struct {
	Address string `yaml:"address"`
	Label   string `yaml:"label,omitempty"`
}

type fileFormat struct {
	Issuers []Entry `yaml:"issuers"`
}

// LoadFile reads issuer addresses from a YAML file of the form:
//
//	issuers:
//	  - address: 0xabc...
//	    label: registrar
func LoadFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read issuer file: %w", err)
	}
	return Parse(data)
}

// Parse decodes issuer YAML. Entries with an empty address are rejected so a
// typo in the operator list does not silently shrink the trusted set.
func Parse(data []byte) ([]string, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse issuer file: %w", err)
	}
	out := make([]string, 0, len(f.Issuers))
	for i, e := range f.Issuers {
		if Normalize(e.Address) == "" {
			return nil, fmt.Errorf("issuer entry %d has no address", i)
		}
		out = append(out, e.Address)
	}
	return out, nil
}
