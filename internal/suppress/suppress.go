// Package suppress loads suppression documents: lists of accepted problems
// keyed by function name.
package suppress

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/mvp-joe/stubcheck/internal/model"
)

// ErrInvalidDocument is returned for documents that are neither a record
// list nor a {"functions": [...]} object.
var ErrInvalidDocument = errors.New("invalid suppression document")

// Format is the encoding of a suppression document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	// FormatTOML only supports the wrapped layout, as [[functions]] tables.
	FormatTOML Format = "toml"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yml", ".yaml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: unsupported extension %q", ErrInvalidDocument, filepath.Ext(path))
	}
}

// wrapped is the layout of the runtime's muted problem files.
type wrapped struct {
	Functions []model.SuppressionRecord `json:"functions" yaml:"functions" toml:"functions"`
}

// Parse decodes data. Record order is preserved.
func Parse(data []byte, format Format) ([]model.SuppressionRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []model.SuppressionRecord{}, nil
	}

	var records []model.SuppressionRecord
	var err error
	switch format {
	case FormatJSON:
		records, err = parseJSON(trimmed)
	case FormatYAML:
		records, err = parseYAML(trimmed)
	case FormatTOML:
		var doc wrapped
		if err = toml.Unmarshal(trimmed, &doc); err != nil {
			err = fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		records = doc.Functions
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidDocument, format)
	}
	if err != nil {
		return nil, err
	}

	for i, rec := range records {
		if rec.Name == "" {
			return nil, fmt.Errorf("%w: record %d has no name", ErrInvalidDocument, i)
		}
	}
	return records, nil
}

func parseJSON(data []byte) ([]model.SuppressionRecord, error) {
	if data[0] == '[' {
		var records []model.SuppressionRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		return records, nil
	}

	var doc wrapped
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return doc.Functions, nil
}

func parseYAML(data []byte) ([]model.SuppressionRecord, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if len(node.Content) == 0 {
		return []model.SuppressionRecord{}, nil
	}

	root := node.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var records []model.SuppressionRecord
		if err := root.Decode(&records); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		return records, nil
	case yaml.MappingNode:
		var doc wrapped
		if err := root.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		return doc.Functions, nil
	default:
		return nil, fmt.Errorf("%w: expected a list or a mapping", ErrInvalidDocument)
	}
}

// LoadFile reads one suppression document.
func LoadFile(path string) ([]model.SuppressionRecord, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suppression file: %w", err)
	}
	records, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// LoadFiles concatenates several documents in the given order, so the first
// file takes precedence for a name that appears in more than one.
func LoadFiles(paths []string) ([]model.SuppressionRecord, error) {
	all := []model.SuppressionRecord{}
	for _, path := range paths {
		records, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}
	return all, nil
}

// Apply runs model.ApplyMutedProblems over every function.
func Apply(fns []*model.Function, records []model.SuppressionRecord) {
	for _, f := range fns {
		model.ApplyMutedProblems(f, records)
	}
}
