package attendance

import (
	"fmt"
	"regexp"
	"strings"

	"attendcli/internal/config"
)

const (
	emailPattern            = `[\p{L}\p{N}_.-]+@[\p{L}\p{N}_.-]+`
	titlePattern            = `Title:\s*(.+)`
	tabularTimestampPattern = `\b\d{1,2}\s+\d{4}\s+\d{1,2}:\d{2}`
)

// Grammar holds the compiled patterns a document family is scanned with
type Grammar struct {
	Email            *regexp.Regexp
	Header           *regexp.Regexp
	Title            *regexp.Regexp
	Timestamp        *regexp.Regexp
	TabularTimestamp *regexp.Regexp
}

// NewGrammar compiles the grammar for the configured institution prefix and
// sign-in month/year. The prefix, month and year are matched literally.
func NewGrammar(cfg config.ExtractionConfig) (*Grammar, error) {
	prefix := strings.TrimSpace(cfg.InstitutionPrefix)
	if prefix == "" {
		return nil, fmt.Errorf("institution prefix is required")
	}
	month := strings.TrimSpace(cfg.TimestampMonth)
	year := strings.TrimSpace(cfg.TimestampYear)
	if month == "" || year == "" {
		return nil, fmt.Errorf("timestamp month and year are required")
	}

	header, err := regexp.Compile(`^` + regexp.QuoteMeta(prefix) + ` - (.+)`)
	if err != nil {
		return nil, fmt.Errorf("compile header pattern: %w", err)
	}

	timestamp, err := regexp.Compile(`\b` + regexp.QuoteMeta(month) + `\s+\d{1,2}\s+` + regexp.QuoteMeta(year) + `.*(?:AM|PM)`)
	if err != nil {
		return nil, fmt.Errorf("compile timestamp pattern: %w", err)
	}

	return &Grammar{
		Email:            regexp.MustCompile(emailPattern),
		Header:           header,
		Title:            regexp.MustCompile(titlePattern),
		Timestamp:        timestamp,
		TabularTimestamp: regexp.MustCompile(tabularTimestampPattern),
	}, nil
}

// DefaultGrammar returns the grammar of the default extraction config
func DefaultGrammar() *Grammar {
	g, err := NewGrammar(config.Default().Extraction)
	if err != nil {
		panic(err)
	}
	return g
}

// FindEmail returns the first email-shaped token of line. Word characters
// include non-ASCII letters and digits, so josé@école.fr is one token.
func (g *Grammar) FindEmail(line string) (string, bool) {
	email := g.Email.FindString(line)
	return email, email != ""
}

// IsCandidate reports whether line can carry a participant record.
// The email token is the only gate.
func (g *Grammar) IsCandidate(line string) bool {
	return g.Email.MatchString(line)
}
