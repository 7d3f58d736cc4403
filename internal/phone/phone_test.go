package phone

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize_LocalFormat(t *testing.T) {
	got, err := Normalize("0754123456")
	require.NoError(t, err)
	require.Equal(t, "+255754123456", got)
}

func TestNormalize_AlreadyE164(t *testing.T) {
	got, err := Normalize("+255754123456")
	require.NoError(t, err)
	require.Equal(t, "+255754123456", got)
}

func TestNormalize_ForeignNumber(t *testing.T) {
	got, err := Normalize("+254712345678") // Kenyan number with prefix
	require.NoError(t, err)
	require.Equal(t, "+254712345678", got)
}

func TestNormalize_Invalid(t *testing.T) {
	for _, raw := range []string{"", "abc", "12345", "+2557"} {
		_, err := Normalize(raw)
		require.ErrorIs(t, err, ErrInvalid, "input %q", raw)
	}
	require.False(t, IsValid("not-a-number"))
	require.True(t, IsValid("0754123456"))
}
