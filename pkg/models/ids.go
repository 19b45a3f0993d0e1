package models

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Id prefixes used across the document.
const (
	DeploymentPrefix = "dep"
	KPIPrefix        = "k"
	TeamPrefix       = "t"
	IslandPrefix     = "p"
	MainGoalPrefix   = "mg"
)

var generatedIDPattern = regexp.MustCompile(`^[a-z]+_[0-9a-f]{32}$`)

// NewID returns prefix + "_" + 32 lowercase hex characters of a random UUID.
func NewID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// IsGeneratedID reports whether id has the shape produced by NewID for prefix.
func IsGeneratedID(id, prefix string) bool {
	return strings.HasPrefix(id, prefix+"_") && generatedIDPattern.MatchString(id)
}
