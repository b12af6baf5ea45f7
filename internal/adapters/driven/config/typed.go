// Package config holds what the config store adapters share.
// The stores themselves live in config/file and storage/memory.
package config

import "math"

// Typed derives the typed getters of driven.ConfigStore from a raw lookup.
// Values that are missing or of the wrong type read as the zero value.
type Typed struct {
	Lookup func(key string) (any, bool)
}

func (t Typed) value(key string) any {
	if t.Lookup == nil {
		return nil
	}
	v, _ := t.Lookup(key)
	return v
}

// GetString retrieves a string configuration value.
func (t Typed) GetString(key string) string {
	s, _ := t.value(key).(string)
	return s
}

// GetInt retrieves an integer configuration value.
// TOML decodes integers as int64; whole floats are accepted too.
func (t Typed) GetInt(key string) int {
	switch v := t.value(key).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		if v == math.Trunc(v) {
			return int(v)
		}
	}
	return 0
}

// GetFloat retrieves a floating-point configuration value.
// Integers are widened so "min_similarity = 1" reads as 1.0.
func (t Typed) GetFloat(key string) float64 {
	switch v := t.value(key).(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// GetBool retrieves a boolean configuration value.
func (t Typed) GetBool(key string) bool {
	b, _ := t.value(key).(bool)
	return b
}

// GetStringSlice retrieves a string slice configuration value.
// Non-string elements of a TOML array are skipped. The result is a copy.
func (t Typed) GetStringSlice(key string) []string {
	switch v := t.value(key).(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
