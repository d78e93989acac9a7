package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendcli/internal/config"
)

func TestPositionalStrategy(t *testing.T) {
	tests := []struct {
		name     string
		strategy PositionalStrategy
		line     string
		email    string
		want     Fields
		wantErr  bool
	}{
		{
			name:     "status last first",
			strategy: PositionalStatusLastFirst,
			line:     "jdoe@school.org Present SMITH John Jul 14 2025 9:03 AM",
			email:    "jdoe@school.org",
			want:     Fields{First: "John", Last: "SMITH"},
		},
		{
			name:     "leading columns",
			strategy: PositionalStatusLastFirst,
			line:     "12 jdoe@school.org Absent GARZA Maria",
			email:    "jdoe@school.org",
			want:     Fields{First: "Maria", Last: "GARZA"},
		},
		{
			name:     "last first",
			strategy: PositionalLastFirst,
			line:     "jdoe@school.org SMITH John",
			email:    "jdoe@school.org",
			want:     Fields{First: "John", Last: "SMITH"},
		},
		{
			name:     "plus three alone",
			strategy: PositionalStrategy{LastOffset: 3, FirstOffset: 4},
			line:     "jdoe@school.org Present 2 SMITH John",
			email:    "jdoe@school.org",
			want:     Fields{First: "John", Last: "SMITH"},
		},
		{
			name:     "email glued to punctuation",
			strategy: PositionalStatusLastFirst,
			line:     "<jdoe@school.org>, Present SMITH John",
			email:    "jdoe@school.org",
			want:     Fields{First: "John", Last: "SMITH"},
		},
		{
			name:     "too few tokens",
			strategy: PositionalStatusLastFirst,
			line:     "jdoe@school.org Present SMITH",
			email:    "jdoe@school.org",
			wantErr:  true,
		},
		{
			name:     "email only",
			strategy: PositionalLastFirst,
			line:     "jdoe@school.org",
			email:    "jdoe@school.org",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.strategy.Extract(tt.line, tt.email)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrLineUnparsable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewPositionalStrategy(t *testing.T) {
	s, err := NewPositionalStrategy(2, 3)
	require.NoError(t, err)
	assert.Equal(t, "positional(+2/+3)", s.Name())

	_, err = NewPositionalStrategy(0, 3)
	assert.Error(t, err)
	_, err = NewPositionalStrategy(2, 2)
	assert.Error(t, err)
}

func TestCasingStrategy(t *testing.T) {
	s := NewCasingStrategy(DefaultGrammar(), false)

	tests := []struct {
		name    string
		line    string
		email   string
		want    Fields
		noMatch bool
	}{
		{
			name:    "uppercase only",
			line:    "jane.roe@x.com JANE ROE DOE",
			email:   "jane.roe@x.com",
			noMatch: true,
		},
		{
			name:  "multi word surname",
			line:  "jane.roe@x.com ROE DOE Jane",
			email: "jane.roe@x.com",
			want:  Fields{First: "Jane", Last: "ROE DOE"},
		},
		{
			name:  "all uppercase runs are joined",
			line:  "12 DE LA CRUZ Ana Sofia 3 VEGA jdoe@school.org",
			email: "jdoe@school.org",
			want:  Fields{First: "Ana Sofia", Last: "DE LA CRUZ VEGA"},
		},
		{
			name:  "timestamp words are scanned with the line",
			line:  "jdoe@school.org SMITH John Jul 14 2025 9:03 AM",
			email: "jdoe@school.org",
			want:  Fields{First: "John Jul", Last: "SMITH AM"},
		},
		{
			name:  "given name inside the email",
			line:  "John.Smith@school.org SMITH",
			email: "John.Smith@school.org",
			want:  Fields{First: "John", Last: "SMITH"},
		},
		{
			name:    "no surname",
			line:    "jdoe@school.org John Present",
			email:   "jdoe@school.org",
			noMatch: true,
		},
		{
			name:  "email letters are scanned",
			line:  "JDOE@SCHOOL.ORG Present",
			email: "JDOE@SCHOOL.ORG",
			want:  Fields{First: "Present", Last: "JDOE SCHOOL ORG"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Extract(tt.line, tt.email)
			if tt.noMatch {
				assert.ErrorIs(t, err, ErrNoMatch)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCasingStrategyStripTokens(t *testing.T) {
	s := NewCasingStrategy(DefaultGrammar(), true)

	tests := []struct {
		name    string
		line    string
		email   string
		want    Fields
		noMatch bool
	}{
		{
			name:  "timestamp is blanked",
			line:  "jdoe@school.org SMITH John Jul 14 2025 9:03 AM",
			email: "jdoe@school.org",
			want:  Fields{First: "John", Last: "SMITH"},
		},
		{
			name:    "email is blanked",
			line:    "JDOE@SCHOOL.ORG Present",
			email:   "JDOE@SCHOOL.ORG",
			noMatch: true,
		},
		{
			name:    "given name only in the email",
			line:    "John.Smith@school.org SMITH",
			email:   "John.Smith@school.org",
			noMatch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Extract(tt.line, tt.email)
			if tt.noMatch {
				assert.ErrorIs(t, err, ErrNoMatch)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewStrategy(t *testing.T) {
	g := DefaultGrammar()
	cfg := config.Default().Extraction

	s, err := NewStrategy(cfg, g)
	require.NoError(t, err)
	assert.IsType(t, &PositionalStrategy{}, s)

	cfg.Strategy = "casing"
	s, err = NewStrategy(cfg, g)
	require.NoError(t, err)
	assert.Equal(t, "casing", s.Name())
	assert.False(t, s.(*CasingStrategy).StripTokens)

	cfg.CasingStripTokens = true
	s, err = NewStrategy(cfg, g)
	require.NoError(t, err)
	assert.True(t, s.(*CasingStrategy).StripTokens)

	cfg.Strategy = "ocr"
	_, err = NewStrategy(cfg, g)
	assert.Error(t, err)
}
