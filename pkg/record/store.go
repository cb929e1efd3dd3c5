package record

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Marshal encodes the representation as a YAML record.
func Marshal(rep *Representation) ([]byte, error) {
	data, err := yaml.Marshal(rep.ToRecord())
	if err != nil {
		return nil, fmt.Errorf("error marshaling record: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a YAML record.
func Unmarshal(data []byte) (*Representation, error) {
	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("error parsing record: %w", err)
	}
	return FromRecord(rec)
}

// Save writes the representation to path as YAML, creating parent
// directories as needed.
func Save(path string, rep *Representation) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating record directory: %w", err)
	}

	data, err := Marshal(rep)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing record file: %w", err)
	}
	return nil
}

// Load reads a representation written by Save.
func Load(path string) (*Representation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading record file: %w", err)
	}
	return Unmarshal(data)
}
