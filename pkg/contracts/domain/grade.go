package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// GradeLevel identifies the grade a session was held for ("K", "0".."12")
type GradeLevel string

// GradeScheme selects which grade enumeration the operator form offers
type GradeScheme string

const (
	// GradeSchemeK12 offers "K" followed by 1..12
	GradeSchemeK12 GradeScheme = "k12"
	// GradeSchemeNumeric offers 0..12
	GradeSchemeNumeric GradeScheme = "numeric"
)

// Kindergarten is the non-numeric grade of the k12 scheme
const Kindergarten GradeLevel = "K"

// ParseGradeScheme parses a configured scheme name
func ParseGradeScheme(s string) (GradeScheme, error) {
	switch GradeScheme(strings.ToLower(strings.TrimSpace(s))) {
	case GradeSchemeK12, "":
		return GradeSchemeK12, nil
	case GradeSchemeNumeric:
		return GradeSchemeNumeric, nil
	default:
		return "", fmt.Errorf("unknown grade scheme %q", s)
	}
}

// Levels returns the grade levels of the scheme in form order
func (s GradeScheme) Levels() []GradeLevel {
	levels := make([]GradeLevel, 0, 13)
	if s == GradeSchemeNumeric {
		levels = append(levels, "0")
	} else {
		levels = append(levels, Kindergarten)
	}
	for i := 1; i <= 12; i++ {
		levels = append(levels, GradeLevel(strconv.Itoa(i)))
	}
	return levels
}

// Valid reports whether g belongs to the scheme
func (s GradeScheme) Valid(g GradeLevel) bool {
	for _, level := range s.Levels() {
		if level == g {
			return true
		}
	}
	return false
}

// ValidGroupNumber reports whether n is one of the offered group numbers
func ValidGroupNumber(n int) bool {
	return n == 1 || n == 2
}
