package schema

import (
	"fmt"
	"io"
	"os"

	"github.com/smart-table/smart-table-server/pkg/domain"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a table state document from a YAML or JSON file.
func LoadFile(path string) (domain.TableState, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.TableState{}, fmt.Errorf("failed to read state file: %w", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return domain.TableState{}, fmt.Errorf("failed to parse state file %s: %w", path, err)
	}
	return Decode(doc)
}

// ReadRecords reads a list of records from YAML or JSON.
func ReadRecords(r io.Reader) ([]map[string]any, error) {
	var records []map[string]any
	if err := yaml.NewDecoder(r).Decode(&records); err != nil {
		if err == io.EOF {
			return []map[string]any{}, nil
		}
		return nil, fmt.Errorf("failed to parse records: %w", err)
	}
	return records, nil
}

// LoadRecords reads a list of records from a YAML or JSON file.
func LoadRecords(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer f.Close()
	return ReadRecords(f)
}
