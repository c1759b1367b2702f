package checkin

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eastern(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func TestNewWindow(t *testing.T) {
	loc := eastern(t)
	now := time.Date(2025, 7, 19, 10, 0, 0, 0, loc)

	w, err := NewWindow(now, loc, 5)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 7, 18, 0, 0, 0, 0, loc), w.Day)
	assert.True(t, w.Start.Equal(time.Date(2025, 7, 18, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, "July 18, 2025", w.Label())
	assert.Equal(t, "175282920000000000", w.AfterID())
}

func TestNewWindow_UsesLocalDate(t *testing.T) {
	loc := eastern(t)
	// 02:00 UTC on the 19th is still the evening of the 18th in New York.
	now := time.Date(2025, 7, 19, 2, 0, 0, 0, time.UTC)

	w, err := NewWindow(now, loc, 5)
	require.NoError(t, err)
	assert.Equal(t, "July 17, 2025", w.Label())
}

func TestNewWindow_DaylightSavingStart(t *testing.T) {
	loc := eastern(t)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, loc)

	w, err := NewWindow(now, loc, 5)
	require.NoError(t, err)
	assert.Equal(t, "March 09, 2025", w.Label())
	assert.Equal(t, int64(1741510800), w.Start.Unix())
}

func TestNewWindow_MonthBoundary(t *testing.T) {
	loc := eastern(t)
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, loc)

	w, err := NewWindow(now, loc, 0)
	require.NoError(t, err)
	assert.Equal(t, "February 28, 2025", w.Label())
	assert.Equal(t, w.Day, w.Start)
}

func TestNewWindow_InvalidInput(t *testing.T) {
	now := time.Now()

	_, err := NewWindow(now, nil, 5)
	assert.Error(t, err)

	_, err = NewWindow(now, time.UTC, 24)
	assert.Error(t, err)

	_, err = NewWindow(now, time.UTC, -1)
	assert.Error(t, err)
}
