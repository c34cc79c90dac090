package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWIB(t *testing.T) {
	iso, err := ParseWIB("2025-11-25 19:30")
	require.NoError(t, err)
	assert.Equal(t, "2025-11-25T19:30:00+07:00", iso)

	_, err = ParseWIB("25-11-2025 19:30")
	assert.ErrorIs(t, err, ErrBadTimeFormat)
}

func TestFormatWIBRoundTrip(t *testing.T) {
	iso, err := ParseWIB("2025-11-25 19:30")
	require.NoError(t, err)
	assert.Equal(t, "2025-11-25 19:30", FormatWIB(iso))

	assert.Empty(t, FormatWIB(""))
	assert.Empty(t, FormatWIB("not a timestamp"))
}

func TestParseEpoch(t *testing.T) {
	assert.Equal(t, int64(1764074700), ParseEpoch("2025-11-25T19:45:00+07:00"))
	assert.Zero(t, ParseEpoch(""))
	assert.Zero(t, ParseEpoch("garbage"))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, NormalizeName("KSICK"), NormalizeName("  ksick "))
	assert.Equal(t, "ksick", NormalizeName("ＫＳＩＣＫ"))
}
