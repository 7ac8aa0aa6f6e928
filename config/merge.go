package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	internalErrors "github.com/gcbaptista/go-browser-search/internal/errors"
)

// MergeOptions deep-merges user overrides over base and returns a new Options.
// Missing keys keep the base value, present keys replace it (lists are replaced,
// not appended) and nested objects merge recursively. Unknown keys are ignored
// with a warning. A value of the wrong type fails with a ConfigError; values are
// never coerced. base is not modified.
func MergeOptions(base Options, overrides map[string]any) (Options, error) {
	baseMap, err := toMap(base)
	if err != nil {
		return Options{}, fmt.Errorf("failed to convert base options: %w", err)
	}

	merged := deepMerge(baseMap, overrides, "")

	data, err := json.Marshal(merged)
	if err != nil {
		return Options{}, internalErrors.NewConfigError("", "overrides are not serializable: "+err.Error())
	}

	var result Options
	if err := json.Unmarshal(data, &result); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return Options{}, internalErrors.NewConfigError(typeErr.Field,
				fmt.Sprintf("expected %s, got %s", typeErr.Type.String(), typeErr.Value))
		}
		return Options{}, internalErrors.NewConfigError("", err.Error())
	}
	return result, nil
}

// deepMerge merges override into base, recursing into nested objects.
// Both maps are left untouched; a new map is returned.
func deepMerge(base, override map[string]any, path string) map[string]any {
	result := make(map[string]any, len(base))
	for k, v := range base {
		result[k] = v
	}

	// Sorted keys keep warning output stable
	keys := make([]string, 0, len(override))
	for k := range override {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		overrideValue := override[key]
		fullKey := key
		if path != "" {
			fullKey = path + "." + key
		}

		baseValue, known := base[key]
		if !known {
			log.Printf("Warning: Ignoring unknown option '%s'", fullKey)
			continue
		}
		if overrideValue == nil {
			continue // null falls back to the base value
		}

		baseNested, baseIsMap := baseValue.(map[string]any)
		overrideNested, overrideIsMap := overrideValue.(map[string]any)
		if baseIsMap && overrideIsMap {
			result[key] = deepMerge(baseNested, overrideNested, fullKey)
			continue
		}
		result[key] = overrideValue
	}
	return result
}

func toMap(options Options) (map[string]any, error) {
	data, err := json.Marshal(options)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// ParseOverrides decodes an overrides document. format is "json" or "yaml".
func ParseOverrides(data []byte, format string) (map[string]any, error) {
	overrides := make(map[string]any)
	if len(bytes.TrimSpace(data)) == 0 {
		return overrides, nil
	}

	switch strings.ToLower(format) {
	case "json":
		if err := json.Unmarshal(data, &overrides); err != nil {
			return nil, internalErrors.NewConfigError("", "invalid JSON overrides: "+err.Error())
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &overrides); err != nil {
			return nil, internalErrors.NewConfigError("", "invalid YAML overrides: "+err.Error())
		}
	default:
		return nil, internalErrors.NewConfigError("", "unsupported overrides format '"+format+"'")
	}
	return overrides, nil
}

// LoadOverrides reads an overrides file. The format follows the file extension
// (.json, .yaml or .yml). An empty path yields no overrides.
func LoadOverrides(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path is supplied by the local user
	if err != nil {
		return nil, fmt.Errorf("failed to read options file %s: %w", path, err)
	}

	format := strings.TrimPrefix(filepath.Ext(path), ".")
	if format == "" {
		format = "json"
	}
	return ParseOverrides(data, format)
}

// Load builds the effective options: defaults merged with the overrides file at
// path, then validated. Any problem fails before a search can run.
func Load(path string) (Options, error) {
	overrides, err := LoadOverrides(path)
	if err != nil {
		return Options{}, err
	}
	return Resolve(overrides)
}

// Resolve merges overrides over the defaults and validates the result.
func Resolve(overrides map[string]any) (Options, error) {
	options, err := MergeOptions(DefaultOptions(), overrides)
	if err != nil {
		return Options{}, err
	}
	if problems := options.Validate(); len(problems) > 0 {
		return Options{}, internalErrors.NewConfigProblemsError(problems)
	}
	return options, nil
}
