package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveSlug(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "TU Munich", "tu-munich"},
		{"already lowercase", "metu", "metu"},
		{"punctuation runs collapse", "M.I.T.", "m-i-t"},
		{"trailing punctuation trimmed", "École Polytechnique!!", "cole-polytechnique"},
		{"digits kept", "Paris 8", "paris-8"},
		{"mixed separators", "KTH -- Royal  Institute", "kth-royal-institute"},
		{"turkish letters stripped", "Boğaziçi Üniversitesi", "bo-azi-i-niversitesi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slug, err := DeriveSlug(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, slug)
		})
	}
}

func TestDeriveSlug_Deterministic(t *testing.T) {
	t.Parallel()
	a, err := DeriveSlug("TU Delft")
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		b, err := DeriveSlug("TU Delft")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestDeriveSlug_OutputCharacterClass(t *testing.T) {
	t.Parallel()
	inputs := []string{
		"TU Munich", "  edge  case  ", "A&B--C", "Università di Roma", "x", "42",
	}
	for _, in := range inputs {
		slug, err := DeriveSlug(in)
		require.NoError(t, err, "input %q", in)
		assert.NotEmpty(t, slug)
		assert.False(t, slug[0] == '-' || slug[len(slug)-1] == '-', "edge hyphen in %q", slug)
		for i := 0; i < len(slug); i++ {
			c := slug[i]
			valid := (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-'
			assert.True(t, valid, "invalid byte %q in slug %q", c, slug)
			if c == '-' && i+1 < len(slug) {
				assert.NotEqual(t, byte('-'), slug[i+1], "double hyphen in %q", slug)
			}
		}
	}
}

func TestDeriveSlug_Invalid(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"", "   ", "!!!", "---", "近畿大学"} {
		_, err := DeriveSlug(in)
		assert.Error(t, err, "input %q", in)
	}
}
