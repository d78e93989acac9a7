package attendance

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"attendcli/internal/config"
)

var (
	// ErrLineUnparsable means a candidate line lacked the tokens the strategy needs.
	// It is reported as a line-level warning.
	ErrLineUnparsable = errors.New("could not parse name data")

	// ErrNoMatch means the line simply carries no record. It is never reported.
	ErrNoMatch = errors.New("no name match")
)

// Fields are the raw name fields recovered from one line, before normalization
type Fields struct {
	First string
	Last  string
}

// Strategy recovers name fields from a candidate line.
// email is the token the candidate filter matched on the line.
type Strategy interface {
	Name() string
	Extract(line, email string) (Fields, error)
}

// LineError ties a strategy failure to its source line
type LineError struct {
	LineNumber int
	Line       string
	Err        error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.LineNumber, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// NewStrategy builds the strategy named in cfg
func NewStrategy(cfg config.ExtractionConfig, g *Grammar) (Strategy, error) {
	switch strings.ToLower(cfg.Strategy) {
	case config.StrategyPositional, "":
		return NewPositionalStrategy(cfg.LastOffset, cfg.FirstOffset)
	case config.StrategyCasing:
		return NewCasingStrategy(g, cfg.CasingStripTokens), nil
	default:
		return nil, fmt.Errorf("unknown extraction strategy %q", cfg.Strategy)
	}
}

// PositionalStrategy reads the names at fixed token offsets after the email
type PositionalStrategy struct {
	LastOffset  int
	FirstOffset int
}

// Observed layouts
var (
	// PositionalStatusLastFirst is "email status LAST First"
	PositionalStatusLastFirst = PositionalStrategy{LastOffset: 2, FirstOffset: 3}
	// PositionalLastFirst is "email LAST First"
	PositionalLastFirst = PositionalStrategy{LastOffset: 1, FirstOffset: 2}
)

// NewPositionalStrategy validates the offsets and returns the strategy
func NewPositionalStrategy(lastOffset, firstOffset int) (*PositionalStrategy, error) {
	if lastOffset < 1 || firstOffset < 1 {
		return nil, fmt.Errorf("positional offsets must be positive, got last=%d first=%d", lastOffset, firstOffset)
	}
	if lastOffset == firstOffset {
		return nil, fmt.Errorf("positional offsets must differ, got %d", lastOffset)
	}
	return &PositionalStrategy{LastOffset: lastOffset, FirstOffset: firstOffset}, nil
}

func (s *PositionalStrategy) Name() string {
	return fmt.Sprintf("positional(+%d/+%d)", s.LastOffset, s.FirstOffset)
}

func (s *PositionalStrategy) Extract(line, email string) (Fields, error) {
	tokens := strings.Fields(line)

	idx := emailIndex(tokens, email)
	if idx < 0 {
		return Fields{}, fmt.Errorf("%w: email token %q not found", ErrLineUnparsable, email)
	}

	need := max(s.LastOffset, s.FirstOffset)
	if idx+need >= len(tokens) {
		return Fields{}, fmt.Errorf("%w: %d tokens after email, need %d",
			ErrLineUnparsable, len(tokens)-idx-1, need)
	}

	return Fields{
		First: tokens[idx+s.FirstOffset],
		Last:  tokens[idx+s.LastOffset],
	}, nil
}

// emailIndex prefers a token equal to the email and falls back to the first
// token containing it (email glued to punctuation such as "<a@b.org>,").
func emailIndex(tokens []string, email string) int {
	for i, tok := range tokens {
		if tok == email {
			return i
		}
	}
	for i, tok := range tokens {
		if strings.Contains(tok, email) {
			return i
		}
	}
	return -1
}

var (
	surnameRun   = regexp.MustCompile(`\b[A-Z]{2,}(?:\s+[A-Z]{2,})*\b`)
	givenNameRun = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)
)

// CasingStrategy takes all-uppercase runs as the surname and the first
// capitalized run as the given name. The whole line is scanned, email and
// sign-in timestamp included, unless StripTokens is set.
type CasingStrategy struct {
	grammar     *Grammar
	StripTokens bool
}

// NewCasingStrategy returns a casing strategy. With stripTokens the email and
// the sign-in timestamps of g are blanked before the scan, so "Jul" and "AM"
// are never read as names.
func NewCasingStrategy(g *Grammar, stripTokens bool) *CasingStrategy {
	return &CasingStrategy{grammar: g, StripTokens: stripTokens}
}

func (s *CasingStrategy) Name() string {
	return config.StrategyCasing
}

func (s *CasingStrategy) Extract(line, email string) (Fields, error) {
	scan := line
	if s.StripTokens {
		scan = strings.ReplaceAll(scan, email, " ")
		if s.grammar != nil {
			scan = s.grammar.Timestamp.ReplaceAllString(scan, " ")
			scan = s.grammar.TabularTimestamp.ReplaceAllString(scan, " ")
		}
	}

	surnames := surnameRun.FindAllString(scan, -1)
	given := givenNameRun.FindString(scan)
	if len(surnames) == 0 || given == "" {
		return Fields{}, ErrNoMatch
	}

	return Fields{
		First: given,
		Last:  strings.Join(surnames, " "),
	}, nil
}
