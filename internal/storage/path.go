package storage

import (
	"fmt"
	"path"
	"regexp"
)

var pathComponentPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,127}$`)

// BuildExportPath returns the object key for the result of one answered turn.
func BuildExportPath(sessionID string, turn int) (string, error) {
	if err := validatePathComponent(sessionID, "session id"); err != nil {
		return "", err
	}
	if turn < 0 {
		return "", fmt.Errorf("turn must be >= 0")
	}
	return path.Join("exports", sessionID, fmt.Sprintf("turn-%d.parquet", turn)), nil
}

func validatePathComponent(value, field string) error {
	if !pathComponentPattern.MatchString(value) {
		return fmt.Errorf("invalid %s: %q", field, value)
	}
	return nil
}
