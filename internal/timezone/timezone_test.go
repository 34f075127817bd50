package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStart(t *testing.T) {
	loc := Location("America/Sao_Paulo")

	got, err := ParseStart("2026-03-02 10:00", loc)
	require.NoError(t, err)
	assert.Equal(t, loc, got.Location())
	assert.Equal(t, 10, got.Hour())

	got, err = ParseStart("2026-03-02T10:00:00Z", loc)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)))

	_, err = ParseStart("tomorrow", loc)
	assert.Error(t, err)
}

func TestLocationFallsBack(t *testing.T) {
	assert.Equal(t, "UTC", Location("").String())
	assert.Equal(t, "UTC", Location("Nowhere/Special").String())
	assert.False(t, IsValid("Nowhere/Special"))
}
