package letterboxd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExportDate(t *testing.T) {
	parsed := ParseExportDate("2023-05-01")
	require.NotNil(t, parsed)
	assert.Equal(t, 2023, parsed.Year())
	assert.Equal(t, time.May, parsed.Month())
	assert.Equal(t, 1, parsed.Day())

	assert.Nil(t, ParseExportDate(""))
	assert.Nil(t, ParseExportDate("   "))
	assert.Nil(t, ParseExportDate("05/01/2023"))
	assert.Nil(t, ParseExportDate("2023-13-40"))
	assert.Nil(t, ParseExportDate("not-a-date"))
}

func TestParseRating(t *testing.T) {
	rating := ParseRating("4.5")
	require.NotNil(t, rating)
	assert.Equal(t, 4.5, *rating)

	rating = ParseRating(" 3 ")
	require.NotNil(t, rating)
	assert.Equal(t, 3.0, *rating)

	assert.Nil(t, ParseRating(""))
	assert.Nil(t, ParseRating("  "))
	assert.Nil(t, ParseRating("four"))
	assert.Nil(t, ParseRating("4,5"))
}

func TestYearToDate(t *testing.T) {
	d := YearToDate("2016")
	require.NotNil(t, d)
	assert.Equal(t, 2016, d.Year())
	assert.Equal(t, time.January, d.Month())
	assert.Equal(t, 1, d.Day())

	assert.Nil(t, YearToDate(""))
	assert.Nil(t, YearToDate("0"))
	assert.Nil(t, YearToDate("-5"))
	assert.Nil(t, YearToDate("two thousand"))
}
