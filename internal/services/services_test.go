package services

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendcli/internal/attendance"
	"attendcli/internal/config"
	apperrors "attendcli/internal/errors"
	"attendcli/internal/metadata"
	"attendcli/pkg/contracts/domain"
)

const rosterA = `Workshop Title: Summer Literacy Institute
La Joya ISD - Kennedy Elementary
Email Status Last Name First Name Sign In
jdoe@ljisd.org Present DOE JANE Jul 14 2025 8:55 AM
msmith@ljisd.org Absent SMITH MARK
broken@ljisd.org Present
`

const rosterB = `La Joya ISD - Palmview High
ana.lopez@ljisd.org Present LOPEZ ANA Jul 15 2025 1:02 PM
`

const manifestYAML = `defaults:
  session_date: 2025-07-14
  grade_level: K
  group_number: 1
documents:
  - file: b_roster.txt
    session_date: 2025-07-15
    grade_level: "12"
    group_number: 2
`

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestService(t *testing.T) (*ExtractionService, *config.Paths) {
	t.Helper()
	paths := config.NewPaths(t.TempDir(), config.Default().Paths)
	require.NoError(t, paths.EnsureDirectories())

	svc, err := NewExtractionService(config.Default().Extraction, paths, nil, testLogger())
	require.NoError(t, err)
	return svc, paths
}

func writeInputs(t *testing.T, withManifest bool) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_roster.txt"), []byte(rosterA), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b_roster.txt"), []byte(rosterB), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scan.png"), []byte("ignored"), 0644))
	if withManifest {
		require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFileName), []byte(manifestYAML), 0644))
	}
	return dir
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", FormatCSV, false},
		{"CSV", FormatCSV, false},
		{" xlsx ", FormatXLSX, false},
		{"json", FormatJSON, false},
		{"pdf", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewExtractionServiceRejectsBadConfig(t *testing.T) {
	cfg := config.Default().Extraction
	cfg.GradeScheme = "roman"

	_, err := NewExtractionService(cfg, nil, nil, testLogger())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestRunDirectory(t *testing.T) {
	svc, paths := newTestService(t)
	in := writeInputs(t, true)
	warningsPath := filepath.Join(t.TempDir(), "warnings.csv")

	report, outPath, err := svc.RunDirectory(context.Background(), DirectoryRequest{
		InputDir:     in,
		WarningsPath: warningsPath,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(paths.ReportsDir, "combined_attendance.csv"), outPath)

	require.Len(t, report.Records, 3)
	assert.Equal(t, "jdoe@ljisd.org", report.Records[0].Email)
	assert.Equal(t, "Jane", report.Records[0].FirstName)
	assert.Equal(t, "Kennedy Elementary", report.Records[0].School)
	assert.Equal(t, "Summer Literacy Institute", report.Records[0].WorkshopTitle)
	assert.True(t, report.Records[0].Attended)
	assert.False(t, report.Records[1].Attended)
	assert.Equal(t, domain.GradeLevel("K"), report.Records[0].GradeLevel)

	last := report.Records[2]
	assert.Equal(t, "b_roster.txt", last.SourceFile)
	assert.Equal(t, domain.GradeLevel("12"), last.GradeLevel)
	assert.Equal(t, 2, last.GroupNumber)
	assert.Equal(t, domain.UnknownTitle, last.WorkshopTitle)

	require.Len(t, report.Warnings, 1)
	assert.Equal(t, attendance.KindLineUnparsable, report.Warnings[0].Kind)

	rows := readCSV(t, outPath)
	require.Len(t, rows, 4)
	assert.Equal(t, domain.CSVHeaders, rows[0])
	assert.Equal(t, []string{
		"jdoe@ljisd.org", "Jane", "Doe", "Kennedy Elementary", "True",
		"2025-07-14", "K", "1", "Summer Literacy Institute", "a_roster.txt",
	}, rows[1])

	warnings := readCSV(t, warningsPath)
	assert.Len(t, warnings, 2)
}

func TestRunDirectoryXLSX(t *testing.T) {
	svc, _ := newTestService(t)
	in := writeInputs(t, true)
	out := filepath.Join(t.TempDir(), "july.xlsx")

	_, outPath, err := svc.RunDirectory(context.Background(), DirectoryRequest{
		InputDir:   in,
		OutputPath: out,
		Format:     FormatXLSX,
	})
	require.NoError(t, err)
	assert.Equal(t, out, outPath)
	assert.FileExists(t, out)
}

func TestRunDirectoryErrors(t *testing.T) {
	svc, _ := newTestService(t)

	t.Run("missing manifest", func(t *testing.T) {
		_, _, err := svc.RunDirectory(context.Background(), DirectoryRequest{InputDir: writeInputs(t, false)})
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
	})

	t.Run("missing directory", func(t *testing.T) {
		_, _, err := svc.RunDirectory(context.Background(), DirectoryRequest{InputDir: filepath.Join(t.TempDir(), "nope")})
		require.Error(t, err)
	})

	t.Run("json is not a file format", func(t *testing.T) {
		_, _, err := svc.RunDirectory(context.Background(), DirectoryRequest{InputDir: t.TempDir(), Format: FormatJSON})
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	})

	t.Run("invalid metadata", func(t *testing.T) {
		in := writeInputs(t, false)
		bad := "defaults:\n  session_date: 2025-07-14\n  grade_level: \"13\"\n  group_number: 1\n"
		require.NoError(t, os.WriteFile(filepath.Join(in, ManifestFileName), []byte(bad), 0644))

		_, _, err := svc.RunDirectory(context.Background(), DirectoryRequest{InputDir: in})
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))

		var fe *metadata.FieldErrors
		assert.True(t, errors.As(err, &fe))
	})
}

func TestRunDirectoryEmpty(t *testing.T) {
	svc, _ := newTestService(t)
	out := filepath.Join(t.TempDir(), "empty.csv")

	report, _, err := svc.RunDirectory(context.Background(), DirectoryRequest{InputDir: t.TempDir(), OutputPath: out})
	require.NoError(t, err)
	assert.Empty(t, report.Records)

	rows := readCSV(t, out)
	assert.Equal(t, [][]string{domain.CSVHeaders}, rows)
}

func TestRunUploads(t *testing.T) {
	svc, _ := newTestService(t)
	in := writeInputs(t, false)
	meta := domain.BatchMetadata{
		SessionDate: time.Date(2025, time.July, 14, 0, 0, 0, 0, time.UTC),
		GradeLevel:  "5",
		GroupNumber: 1,
	}

	report, err := svc.RunUploads(context.Background(), []Upload{
		{Name: "b.txt", Path: filepath.Join(in, "b_roster.txt"), Metadata: meta},
		{Name: "scan.png", Path: filepath.Join(in, "scan.png"), Metadata: meta},
		{Name: "a.txt", Path: filepath.Join(in, "a_roster.txt"), Metadata: meta},
	})
	require.NoError(t, err)

	require.Len(t, report.Records, 3)
	assert.Equal(t, "b.txt", report.Records[0].SourceFile)
	assert.Equal(t, "a.txt", report.Records[1].SourceFile)

	require.Len(t, report.Documents, 3)
	assert.True(t, report.Documents[1].Failed)
	assert.Equal(t, attendance.KindDocumentUnreadable, report.Warnings[0].Kind)
	assert.Contains(t, report.Warnings[0].Message, "Could not process scan.png")
}

func TestRunUploadsValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.RunUploads(context.Background(), nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))

	_, err = svc.RunUploads(context.Background(), []Upload{
		{Name: "a.txt", Path: "a.txt", Metadata: domain.BatchMetadata{GradeLevel: "K", GroupNumber: 3}},
	})
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestRunUploadsCancelled(t *testing.T) {
	svc, _ := newTestService(t)
	in := writeInputs(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.RunUploads(ctx, []Upload{{
		Name: "a.txt",
		Path: filepath.Join(in, "a_roster.txt"),
		Metadata: domain.BatchMetadata{
			SessionDate: time.Date(2025, time.July, 14, 0, 0, 0, 0, time.UTC),
			GradeLevel:  "K",
			GroupNumber: 1,
		},
	}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGradesAndUploadNames(t *testing.T) {
	svc, _ := newTestService(t)

	grades := svc.Grades()
	require.Len(t, grades, 13)
	assert.Equal(t, domain.GradeLevel("K"), grades[0])

	assert.NoError(t, svc.CheckUploadName("roster.PDF"))
	assert.True(t, apperrors.IsType(svc.CheckUploadName("roster.docx"), apperrors.ErrTypeValidation))
}

func TestHealthService(t *testing.T) {
	paths := config.NewPaths(t.TempDir(), config.Default().Paths)
	hs := NewHealthService(paths, testLogger())
	ctx := context.Background()

	assert.Equal(t, "ok", hs.HealthCheck(ctx).Status)
	assert.Equal(t, "alive", hs.LivenessCheck(ctx).Status)
	assert.Equal(t, "not_ready", hs.ReadinessCheck(ctx).Status)

	require.NoError(t, paths.EnsureDirectories())
	assert.Equal(t, "ready", hs.ReadinessCheck(ctx).Status)

	v := hs.Version()
	assert.NotEmpty(t, v["version"])
	assert.Equal(t, "v1", v["api_version"])
}
