package patient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBirthDate(t *testing.T) {
	today := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{"1985-01-17", "1985-01-17", nil},
		{" 17/01/1985 ", "1985-01-17", nil},
		{"1985-01-17T00:00:00Z", "1985-01-17", nil},
		{"2026-10-18", "2026-10-18", nil},
		{"2026-10-19", "", ErrInvalidDateOfBirth},
		{"17 janvier 1985", "", ErrUnparseableDateOfBirth},
		{"", "", ErrUnparseableDateOfBirth},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeBirthDate(tt.in, today)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptional(t *testing.T) {
	assert.Nil(t, Optional(""))
	assert.Nil(t, Optional("   "))
	require.NotNil(t, Optional(" 06 12 34 56 78 "))
	assert.Equal(t, "06 12 34 56 78", *Optional(" 06 12 34 56 78 "))
	assert.Equal(t, "claire.martin@example.fr", *OptionalEmail(" Claire.Martin@Example.FR"))
}

func TestMatches(t *testing.T) {
	secu := "2850175123456"
	p := &Patient{LastName: "Martin", FirstName: "Claire", SocialSecurityNumber: &secu}

	assert.True(t, p.Matches(""))
	assert.True(t, p.Matches("mart"))
	assert.True(t, p.Matches("MARTIN CL"))
	assert.True(t, p.Matches("75123"))
	assert.False(t, p.Matches("claire martin"))
	assert.False(t, (&Patient{LastName: "Dupont"}).Matches("123"))
}

func TestParseDeletePolicy(t *testing.T) {
	for in, want := range map[string]DeletePolicy{
		"":         DeleteRestrict,
		"restrict": DeleteRestrict,
		"Cascade":  DeleteCascade,
		" detach ": DeleteDetach,
	} {
		got, err := ParseDeletePolicy(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseDeletePolicy("soft")
	assert.ErrorIs(t, err, ErrInvalidDeletePolicy)
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "Martin Claire", (&Patient{LastName: "Martin", FirstName: "Claire"}).FullName())
}
