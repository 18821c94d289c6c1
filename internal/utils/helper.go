package utils

import (
	"encoding/json"
	"regexp"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// maxIdentifierLength is MySQL's limit for database, table and column names.
const maxIdentifierLength = 64

// IsValidIdentifier reports whether name may be interpolated as a quoted
// MySQL identifier: letters, digits and underscores only.
func IsValidIdentifier(name string) bool {
	return len(name) <= maxIdentifierLength && identifierPattern.MatchString(name)
}

func Contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// NormalizeValue converts a value decoded from a JSON request body into a
// value the MySQL driver can bind.
func NormalizeValue(value interface{}) interface{} {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case map[string]interface{}, []interface{}:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		return string(encoded)
	default:
		return v
	}
}
