package attendance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendcli/internal/config"
	"attendcli/pkg/contracts/domain"
)

func TestExtractDocumentPositionalExample(t *testing.T) {
	engine := newTestEngine(t, config.StrategyPositional)
	doc := textDocument("session1.pdf",
		"jdoe@school.org Present SMITH John Jul 14 2025 9:03 AM",
	)

	result, err := engine.ExtractDocument(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)

	rec := result.Records[0]
	assert.Equal(t, "jdoe@school.org", rec.Email)
	assert.Equal(t, "John", rec.FirstName)
	assert.Equal(t, "Smith", rec.LastName)
	assert.True(t, rec.Attended)
	assert.Equal(t, domain.UnknownSchool, rec.School)
	assert.Equal(t, domain.UnknownTitle, rec.WorkshopTitle)
	assert.Equal(t, "session1.pdf", rec.SourceFile)
	assert.Equal(t, 1, rec.LineNumber)
	assert.Equal(t, testMetadata().SessionDate, rec.SessionDate)
	assert.Equal(t, domain.GradeLevel("3"), rec.GradeLevel)
	assert.Equal(t, 2, rec.GroupNumber)
	assert.Empty(t, result.Warnings)
}

func TestExtractDocumentNoEmailYieldsNothing(t *testing.T) {
	for _, strategy := range []string{config.StrategyPositional, config.StrategyCasing} {
		t.Run(strategy, func(t *testing.T) {
			engine := newTestEngine(t, strategy)
			result, err := engine.ExtractDocument(context.Background(),
				textDocument("a.pdf", "No email here, just text"))
			require.NoError(t, err)
			assert.Empty(t, result.Records)
			assert.Empty(t, result.Warnings)
			assert.Equal(t, 0, result.Stats.Candidates)
		})
	}
}

func TestExtractDocumentCasingExample(t *testing.T) {
	engine := newTestEngine(t, config.StrategyCasing)

	result, err := engine.ExtractDocument(context.Background(),
		textDocument("a.pdf", "jane.roe@x.com JANE ROE DOE"))
	require.NoError(t, err)
	assert.Empty(t, result.Records, "casing strategy needs a given-name run")
	assert.Empty(t, result.Warnings, "a casing non-match is not a warning")
	assert.Equal(t, 1, result.Stats.NoMatch)

	result, err = engine.ExtractDocument(context.Background(),
		textDocument("a.pdf", "jane.roe@x.com ROE DOE Jane"))
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "Jane", result.Records[0].FirstName)
	assert.Equal(t, "Roe Doe", result.Records[0].LastName)
	assert.False(t, result.Records[0].Attended)

	result, err = engine.ExtractDocument(context.Background(),
		textDocument("a.pdf", "John.Smith@school.org SMITH"))
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "John", result.Records[0].FirstName)
	assert.Equal(t, "Smith", result.Records[0].LastName)
	assert.Equal(t, 0, result.Stats.NoMatch)
}

func TestExtractDocumentAttendedIffTimestamp(t *testing.T) {
	engine := newTestEngine(t, config.StrategyPositional)
	doc := textDocument("a.pdf",
		"a@x.org Present SMITH John Jul 14 2025 9:03 AM",
		"b@x.org Absent DOE Jane",
		"c@x.org Present ROE Ann Jul 2 2025 1:10 PM",
		"d@x.org Absent LEE Tom Jun 2 2025 1:10 PM",
	)

	result, err := engine.ExtractDocument(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, result.Records, 4)

	g := engine.Grammar()
	for i, rec := range result.Records {
		assert.Equal(t, g.Timestamp.MatchString(doc.Lines[i]), rec.Attended, rec.Email)
	}
	assert.Equal(t, []bool{true, false, true, false}, []bool{
		result.Records[0].Attended, result.Records[1].Attended,
		result.Records[2].Attended, result.Records[3].Attended,
	})
}

func TestExtractDocumentContext(t *testing.T) {
	engine := newTestEngine(t, config.StrategyPositional)
	doc := textDocument("roster.pdf",
		"Attendance Report",
		"Title: Summer Literacy Academy",
		"a@x.org Present SMITH John",
		"La Joya ISD - Memorial Middle School",
		"b@x.org Present DOE Jane",
		"Page 1 of 2",
		"c@x.org Present ROE Ann",
		"La Joya ISD - Jimmy Carter High",
		"d@x.org Present LEE Tom",
	)

	result, err := engine.ExtractDocument(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, result.Records, 4)

	schools := make([]string, 0, len(result.Records))
	for _, rec := range result.Records {
		schools = append(schools, rec.School)
		assert.Equal(t, "Summer Literacy Academy", rec.WorkshopTitle)
	}
	assert.Equal(t, []string{
		domain.UnknownSchool,
		"Memorial Middle School",
		"Memorial Middle School",
		"Jimmy Carter High",
	}, schools)

	assert.Equal(t, 9, result.Stats.Lines)
	assert.Equal(t, 2, result.Stats.Headers)
	assert.Equal(t, 4, result.Stats.Records)
	assert.Equal(t, "Summer Literacy Academy", result.Title)
}

func TestExtractDocumentUnparsableLineWarns(t *testing.T) {
	engine := newTestEngine(t, config.StrategyPositional)
	doc := textDocument("roster.pdf",
		"a@x.org Present SMITH John",
		"b@x.org Present",
		"c@x.org Present ROE Ann",
	)

	result, err := engine.ExtractDocument(context.Background(), doc)
	require.NoError(t, err)

	require.Len(t, result.Records, 2)
	assert.Equal(t, "a@x.org", result.Records[0].Email)
	assert.Equal(t, "c@x.org", result.Records[1].Email)

	require.Len(t, result.Warnings, 1)
	w := result.Warnings[0]
	assert.Equal(t, LevelLine, w.Level)
	assert.Equal(t, KindLineUnparsable, w.Kind)
	assert.Equal(t, "roster.pdf", w.SourceFile)
	assert.Equal(t, 2, w.LineNumber)
	assert.Equal(t, "Could not parse name data for line: b@x.org Present", w.Message)
	assert.Equal(t, 1, result.Stats.Unparsable)
}

func TestExtractDocumentRecordInvariants(t *testing.T) {
	for _, strategy := range []string{config.StrategyPositional, config.StrategyCasing} {
		t.Run(strategy, func(t *testing.T) {
			engine := newTestEngine(t, strategy)
			doc := textDocument("mixed.pdf",
				"La Joya ISD - Lorenzo De Zavala",
				"mgarza@lajoya.net Present GARZA Maria Jul 14 2025 9:03 AM",
				"no record on this line",
				"jlopez@lajoya.net Absent LOPEZ Jose",
				"broken@lajoya.net",
				"ana.cruz@lajoya.net Present CRUZ Ana Jul 14 2025 10:11 AM",
			)

			result, err := engine.ExtractDocument(context.Background(), doc)
			require.NoError(t, err)
			require.NotEmpty(t, result.Records)

			g := engine.Grammar()
			for _, rec := range result.Records {
				assert.Regexp(t, `^`+emailPattern+`$`, rec.Email)
				assert.True(t, g.IsCandidate(doc.Lines[rec.LineNumber-1]))
				assert.NotEmpty(t, rec.FirstName)
				assert.NotEmpty(t, rec.LastName)

				first, last := NormalizeName(rec.FirstName, rec.LastName)
				assert.Equal(t, rec.FirstName, first)
				assert.Equal(t, rec.LastName, last)
			}
		})
	}
}

func TestExtractDocumentTabular(t *testing.T) {
	engine := newTestEngine(t, config.StrategyPositional)
	doc := &domain.SourceDocument{
		Name: "roster.xlsx",
		Rows: [][]string{
			{"Email", "Status", "Last", "First", "Signed In"},
			{"La Joya ISD - Memorial Middle School"},
			{"jdoe@school.org", "Present", "SMITH", "John", "14 2025 9:03"},
			{"mroe@school.org", "", "Absent", "ROE", "Mary", ""},
		},
		Metadata: testMetadata(),
	}

	result, err := engine.ExtractDocument(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, result.Records, 2)

	assert.Equal(t, "John", result.Records[0].FirstName)
	assert.True(t, result.Records[0].Attended)
	assert.Equal(t, "Memorial Middle School", result.Records[0].School)

	assert.Equal(t, "Mary", result.Records[1].FirstName)
	assert.Equal(t, "Roe", result.Records[1].LastName)
	assert.False(t, result.Records[1].Attended)
	assert.Equal(t, 4, result.Records[1].LineNumber)
}

func TestExtractDocumentCancelled(t *testing.T) {
	engine := newTestEngine(t, config.StrategyPositional)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.ExtractDocument(ctx, textDocument("a.pdf", "a@x.org Present SMITH John"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFlattenRow(t *testing.T) {
	assert.Equal(t, "a@x.org SMITH John", FlattenRow([]string{" a@x.org ", "", "SMITH", "  ", "John"}))
	assert.Equal(t, "", FlattenRow(nil))
}

func TestLineStatusString(t *testing.T) {
	assert.Equal(t, "record", LineRecord.String())
	assert.Equal(t, "unparsable", LineUnparsable.String())
	assert.Equal(t, "unknown", LineStatus(99).String())
}

func TestExtractDocumentNonASCIIEmailsAndSplitTitle(t *testing.T) {
	engine := newTestEngine(t, config.StrategyPositional)
	doc := textDocument("phonics.pdf",
		"Title:",
		"Intro to Phonics",
		"josé@school.org Present GARCIA José Jul 14 2025 9:03 AM",
		"ana@école.fr Present DUPONT Ana",
	)

	result, err := engine.ExtractDocument(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	assert.Equal(t, 2, result.Stats.Candidates)
	assert.Equal(t, "Intro to Phonics", result.Title)

	assert.Equal(t, "josé@school.org", result.Records[0].Email)
	assert.Equal(t, "José", result.Records[0].FirstName)
	assert.Equal(t, "Garcia", result.Records[0].LastName)
	assert.True(t, result.Records[0].Attended)

	assert.Equal(t, "ana@école.fr", result.Records[1].Email)
	assert.Equal(t, "Ana", result.Records[1].FirstName)
	assert.Equal(t, "Dupont", result.Records[1].LastName)
	assert.False(t, result.Records[1].Attended)
	assert.Equal(t, "Intro to Phonics", result.Records[1].WorkshopTitle)
}
