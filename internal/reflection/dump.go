// Package reflection adapts a dump of the PHP runtime's reflection data to
// the model.Introspector contract.
package reflection

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/mvp-joe/stubcheck/internal/model"
)

// ErrNotFound is returned when a function is not part of the runtime.
var ErrNotFound = errors.New("function not found")

// Dump is the serialized reflection data of every internal function.
type Dump struct {
	PHPVersion string         `json:"phpVersion,omitempty"`
	Functions  []FunctionDump `json:"functions"`
}

// FunctionDump is one ReflectionFunction.
type FunctionDump struct {
	Name       string          `json:"name"`
	Deprecated bool            `json:"deprecated"`
	Parameters []ParameterDump `json:"parameters"`
}

// ParameterDump is one ReflectionParameter.
type ParameterDump struct {
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Optional bool   `json:"optional,omitempty"`
	Variadic bool   `json:"variadic,omitempty"`
	ByRef    bool   `json:"byRef,omitempty"`
	Default  string `json:"default,omitempty"`
}

// ReadDump decodes a dump from r.
func ReadDump(r io.Reader) (*Dump, error) {
	var d Dump
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("failed to decode reflection dump: %w", err)
	}
	for i, fn := range d.Functions {
		if strings.TrimSpace(fn.Name) == "" {
			return nil, fmt.Errorf("reflection dump entry %d has no name", i)
		}
	}
	return &d, nil
}

// LoadDump reads a dump file. Files ending in .gz or .zst are decompressed.
func LoadDump(path string) (*Dump, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reflection dump: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip reflection dump: %w", err)
		}
		defer zr.Close()
		return ReadDump(zr)
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd reflection dump: %w", err)
		}
		defer zr.Close()
		return ReadDump(zr)
	default:
		return ReadDump(f)
	}
}

// SaveDump writes d to path, compressed when the name ends in .gz or .zst.
func SaveDump(path string, d *Dump) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create reflection dump: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close reflection dump: %w", cerr)
		}
	}()

	var w io.WriteCloser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		w = gzip.NewWriter(f)
	case ".zst":
		if w, err = zstd.NewWriter(f); err != nil {
			return fmt.Errorf("failed to create zstd writer: %w", err)
		}
	default:
		return WriteDump(f, d)
	}

	if err := WriteDump(w, d); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish compressed dump: %w", err)
	}
	return nil
}

// WriteDump encodes d as indented JSON.
func WriteDump(w io.Writer, d *Dump) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// handle exposes a FunctionDump as a model.IntrospectedFunction.
type handle struct {
	fn *FunctionDump
}

func (h handle) Name() string       { return h.fn.Name }
func (h handle) IsDeprecated() bool { return h.fn.Deprecated }

func (h handle) Parameters() []model.IntrospectedParameter {
	params := make([]model.IntrospectedParameter, len(h.fn.Parameters))
	for i := range h.fn.Parameters {
		params[i] = parameter{p: &h.fn.Parameters[i]}
	}
	return params
}

type parameter struct {
	p *ParameterDump
}

func (p parameter) Name() string              { return p.p.Name }
func (p parameter) Type() string              { return p.p.Type }
func (p parameter) IsOptional() bool          { return p.p.Optional }
func (p parameter) IsVariadic() bool          { return p.p.Variadic }
func (p parameter) IsPassedByReference() bool { return p.p.ByRef }
func (p parameter) DefaultValue() string      { return p.p.Default }
