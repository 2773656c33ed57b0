package api

import (
	"regexp"
	"strings"
)

type (
	// WizardID is a unique identifier for a wizard instance
	WizardID string

	// StepID identifies a step within the registry. Steps are ordered by
	// ascending ID starting at 1
	StepID int

	// Name is the name of a field collected by a step
	Name string
)

// InvalidIDChars matches characters not permitted in wizard IDs. Valid
// characters are: letters, digits, underscore, dot, hyphen, plus, space
var InvalidIDChars = regexp.MustCompile(`[^a-zA-Z0-9_.\-+ ]`)

// SanitizeID lowercases an ID, removes invalid characters, replaces spaces
// with hyphens, and trims leading and trailing hyphens
func SanitizeID[T ~string](id T) T {
	lower := strings.ToLower(string(id))
	sanitized := InvalidIDChars.ReplaceAllString(lower, "")
	sanitized = strings.ReplaceAll(sanitized, " ", "-")
	return T(strings.Trim(sanitized, "-"))
}
