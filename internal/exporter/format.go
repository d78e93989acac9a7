package exporter

import (
	"strconv"
	"time"

	"attendcli/pkg/contracts/domain"
)

// formatBool renders booleans the way the combined export always has
func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatDate formats a session date; the zero date is left blank
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.SessionDateLayout)
}
