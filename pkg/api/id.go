package api

import (
	"strings"

	"github.com/google/uuid"
)

const runIDPrefix = "run_"

// NewRunID generates a workflow run identifier with the "run_" prefix
// followed by a random UUID.
func NewRunID() string {
	return runIDPrefix + uuid.NewString()
}

// ValidateRunID checks whether the given string is a valid run ID
// ("run_" followed by a parseable UUID).
func ValidateRunID(id string) bool {
	rest, ok := strings.CutPrefix(id, runIDPrefix)
	if !ok {
		return false
	}
	_, err := uuid.Parse(rest)
	return err == nil && len(rest) == 36
}
