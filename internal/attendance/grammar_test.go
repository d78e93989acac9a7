package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendcli/internal/config"
	"attendcli/pkg/contracts/domain"
)

func TestCandidateFilter(t *testing.T) {
	g := DefaultGrammar()

	tests := []struct {
		line      string
		candidate bool
		email     string
	}{
		{line: "No email here, just text"},
		{line: ""},
		{line: "La Joya ISD - Memorial Middle School"},
		{line: "Title: Summer Literacy Academy"},
		{line: "contact us at @ the office"},
		{line: "Page 3 of 12"},
		{line: "jdoe@school.org Present SMITH John", candidate: true, email: "jdoe@school.org"},
		{line: "x <mary-ann.o_neil@lajoya.k12.tx.us>, Y", candidate: true, email: "mary-ann.o_neil@lajoya.k12.tx.us"},
		{line: "a@b", candidate: true, email: "a@b"},
		{line: "josé@school.org Present GARCIA José Jul 14 2025 9:03 AM", candidate: true, email: "josé@school.org"},
		{line: "ana@école.fr Present DUPONT Ana", candidate: true, email: "ana@école.fr"},
		{line: "user_1@дом2.рф", candidate: true, email: "user_1@дом2.рф"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.candidate, g.IsCandidate(tt.line))
			email, ok := g.FindEmail(tt.line)
			assert.Equal(t, tt.candidate, ok)
			assert.Equal(t, tt.email, email)
		})
	}
}

func TestNewGrammarQuotesConfiguredLiterals(t *testing.T) {
	cfg := config.Default().Extraction
	cfg.InstitutionPrefix = "St. Mary (ISD)"
	cfg.TimestampMonth = "Aug"
	cfg.TimestampYear = "2026"

	g, err := NewGrammar(cfg)
	require.NoError(t, err)

	assert.True(t, g.Header.MatchString("St. Mary (ISD) - North Campus"))
	assert.False(t, g.Header.MatchString("StX Mary (ISD) - North Campus"))
	assert.False(t, g.Header.MatchString("  St. Mary (ISD) - North Campus"), "header is anchored at line start")

	assert.True(t, g.Timestamp.MatchString("Aug 3 2026 10:15 AM"))
	assert.False(t, g.Timestamp.MatchString("Jul 3 2025 10:15 AM"))
}

func TestNewGrammarRequiresLiterals(t *testing.T) {
	cfg := config.Default().Extraction
	cfg.InstitutionPrefix = ""
	_, err := NewGrammar(cfg)
	assert.Error(t, err)

	cfg = config.Default().Extraction
	cfg.TimestampYear = " "
	_, err = NewGrammar(cfg)
	assert.Error(t, err)
}

func TestAttendanceDetector(t *testing.T) {
	g := DefaultGrammar()
	text := g.Detector(false)
	tabular := g.Detector(true)

	tests := []struct {
		name     string
		detector AttendanceDetector
		line     string
		attended bool
	}{
		{"text timestamp", text, "jdoe@school.org Present SMITH John Jul 14 2025 9:03 AM", true},
		{"text pm", text, "jdoe@school.org Present SMITH John Jul 1 2025 12:41 PM", true},
		{"text no timestamp", text, "jdoe@school.org Absent SMITH John", false},
		{"text wrong year", text, "jdoe@school.org Present SMITH John Jul 14 2024 9:03 AM", false},
		{"text missing marker", text, "jdoe@school.org Present SMITH John Jul 14 2025 9:03", false},
		{"text three digit day", text, "jdoe@school.org Present SMITH John Jul 140 2025 9:03 AM", false},
		{"tabular timestamp", tabular, "jdoe@school.org SMITH John 14 2025 9:03", true},
		{"tabular no timestamp", tabular, "jdoe@school.org SMITH John", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.attended, tt.detector.Attended(tt.line))
		})
	}
}

func TestContextTracker(t *testing.T) {
	g := DefaultGrammar()

	t.Run("defaults to sentinels", func(t *testing.T) {
		tracker := NewContextTracker(g)
		tracker.ScanTitle([]string{"no title", "here"})
		assert.Equal(t, Context{School: domain.UnknownSchool, Title: domain.UnknownTitle}, tracker.Snapshot())
	})

	t.Run("first title wins", func(t *testing.T) {
		tracker := NewContextTracker(g)
		tracker.ScanTitle([]string{"Sign-in sheet", "Workshop Title:  Math Night  ", "Title: Second"})
		assert.Equal(t, "Math Night", tracker.Snapshot().Title)
	})

	t.Run("title value on the next line", func(t *testing.T) {
		tracker := NewContextTracker(g)
		tracker.ScanTitle([]string{"Title:", "Intro to Phonics", "jdoe@school.org Present SMITH John"})
		assert.Equal(t, "Intro to Phonics", tracker.Snapshot().Title)
	})

	t.Run("blank header school", func(t *testing.T) {
		tracker := NewContextTracker(g)
		assert.True(t, tracker.Observe("La Joya ISD -    "))
		assert.Equal(t, "", tracker.Snapshot().School)
	})

	t.Run("header updates school until next header", func(t *testing.T) {
		tracker := NewContextTracker(g)

		assert.False(t, tracker.Observe("jdoe@school.org Present SMITH John"))
		assert.Equal(t, domain.UnknownSchool, tracker.Snapshot().School)

		assert.True(t, tracker.Observe("La Joya ISD - Memorial Middle School "))
		assert.Equal(t, "Memorial Middle School", tracker.Snapshot().School)

		assert.False(t, tracker.Observe("not a header La Joya ISD - Other"))
		assert.Equal(t, "Memorial Middle School", tracker.Snapshot().School)

		assert.True(t, tracker.Observe("La Joya ISD - Jimmy Carter High"))
		assert.Equal(t, "Jimmy Carter High", tracker.Snapshot().School)
	})
}
