// Package yamlutil wraps YAML parsing to isolate the external dependency.
// It also offers dotted-key lookups over untyped YAML trees, used for
// repository settings that are not part of the typed configuration.
package yamlutil

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
)

// MaxInputSize limits YAML input to prevent memory exhaustion (default 1MB).
var MaxInputSize = 1 << 20

var (
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
)

func validateInput(data []byte, v any) error {
	if len(data) == 0 {
		return ErrNilData
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if v == nil {
		return ErrNilDestination
	}
	return nil
}

func Unmarshal(data []byte, v any) error {
	if err := validateInput(data, v); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// UnmarshalStrict rejects unknown fields in the input.
func UnmarshalStrict(data []byte, v any) error {
	if err := validateInput(data, v); err != nil {
		return err
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

func Marshal(v any) ([]byte, error) {
	result, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}
	return result, nil
}

// Lookup walks tree along a dotted key ("pdf.covers.default") and returns the
// value found there. Map keys are compared by their string form so numeric
// keys such as collection ids match "collection.12.cover".
func Lookup(tree any, dottedKey string) (any, bool) {
	if dottedKey == "" {
		return nil, false
	}

	current := tree
	for _, part := range strings.Split(dottedKey, ".") {
		next, ok := child(current, part)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// LookupString is Lookup for scalar values, rendered as strings.
// Maps, slices and nil yield ("", false).
func LookupString(tree any, dottedKey string) (string, bool) {
	v, ok := Lookup(tree, dottedKey)
	if !ok {
		return "", false
	}
	switch val := v.(type) {
	case nil, map[string]any, map[any]any, []any:
		return "", false
	case string:
		return val, true
	default:
		return fmt.Sprint(val), true
	}
}

func child(node any, key string) (any, bool) {
	switch m := node.(type) {
	case map[string]any:
		v, ok := m[key]
		return v, ok
	case map[any]any:
		for k, v := range m {
			if fmt.Sprint(k) == key {
				return v, true
			}
		}
	}
	return nil, false
}
