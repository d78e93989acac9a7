package attendance

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"attendcli/internal/config"
	"attendcli/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testMetadata() domain.BatchMetadata {
	return domain.BatchMetadata{
		SessionDate: time.Date(2025, time.July, 14, 0, 0, 0, 0, time.UTC),
		GradeLevel:  "3",
		GroupNumber: 2,
	}
}

func newTestEngine(t *testing.T, strategy string) *Engine {
	t.Helper()
	cfg := config.Default().Extraction
	cfg.Strategy = strategy

	g, err := NewGrammar(cfg)
	require.NoError(t, err)
	s, err := NewStrategy(cfg, g)
	require.NoError(t, err)
	return NewEngine(g, s, testLogger())
}

func textDocument(name string, lines ...string) *domain.SourceDocument {
	return &domain.SourceDocument{Name: name, Lines: lines, Metadata: testMetadata()}
}
