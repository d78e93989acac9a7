package attendance

import (
	"strings"

	"attendcli/pkg/contracts/domain"
)

// Context is the ambient grouping that applies to a record
type Context struct {
	School string
	Title  string
}

// ContextTracker follows the header lines of a single document.
// A tracker is document-local and must not be shared between documents.
type ContextTracker struct {
	grammar *Grammar
	school  string
	title   string
}

// NewContextTracker returns a tracker holding the unknown sentinels
func NewContextTracker(g *Grammar) *ContextTracker {
	return &ContextTracker{
		grammar: g,
		school:  domain.UnknownSchool,
		title:   domain.UnknownTitle,
	}
}

// ScanTitle sets the workshop title from the first title match over the whole
// document text. The label and its value may sit on separate lines.
func (t *ContextTracker) ScanTitle(lines []string) {
	m := t.grammar.Title.FindStringSubmatch(strings.Join(lines, "\n"))
	if m == nil {
		return
	}
	if title := strings.TrimSpace(m[1]); title != "" {
		t.title = title
	}
}

// Observe updates the current school when line is a header line and reports
// whether it was one. Header lines never carry a record. A header with a blank
// school name leaves the school empty.
func (t *ContextTracker) Observe(line string) bool {
	m := t.grammar.Header.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	t.school = strings.TrimSpace(m[1])
	return true
}

// Snapshot returns the context in effect for the next line
func (t *ContextTracker) Snapshot() Context {
	return Context{School: t.school, Title: t.title}
}
