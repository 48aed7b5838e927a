package letterboxd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExportCSV_ReviewsExport(t *testing.T) {
	input := "Date,Name,Year,Letterboxd URI,Rating,Rewatch,Review,Watched Date\n" +
		"2023-05-02,Arrival,2016,https://letterboxd.com/film/arrival/,4.5,,Stunning.,2023-05-01\n" +
		"2023-05-03,Dune,2021,https://letterboxd.com/film/dune-2021/,4,Yes,,2023-05-02\n"

	rows, warnings, err := ParseExportCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, rows, 2)

	assert.Equal(t, "Arrival", rows[0].Name)
	assert.Equal(t, "2016", rows[0].Year)
	assert.Equal(t, "https://letterboxd.com/film/arrival/", rows[0].URI)
	assert.Equal(t, "4.5", rows[0].Rating)
	assert.Equal(t, "Stunning.", rows[0].Review)
	assert.Equal(t, "2023-05-01", rows[0].WatchedDate)

	assert.Equal(t, "Yes", rows[1].Rewatch)
	assert.Empty(t, rows[1].Review)
}

func TestParseExportCSV_WatchlistExportLacksDiaryColumns(t *testing.T) {
	input := "Date,Name,Year,Letterboxd URI\n" +
		"2023-04-10,Stalker,1979,https://letterboxd.com/film/stalker/\n"

	rows, _, err := ParseExportCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "Stalker", rows[0].Name)
	assert.Empty(t, rows[0].WatchedDate)
	assert.Empty(t, rows[0].Rating)
}

func TestParseExportCSV_StripsBOM(t *testing.T) {
	input := "\uFEFFDate,Name,Year,Letterboxd URI\n" +
		"2023-04-10,Arrival,2016,/film/arrival/\n"

	rows, _, err := ParseExportCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Arrival", rows[0].Name)
}

func TestParseExportCSV_MissingRequiredHeader(t *testing.T) {
	input := "Date,Title\n2023-04-10,Arrival\n"

	_, _, err := ParseExportCSV(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required header")
}

func TestParseExportCSV_EmptyInput(t *testing.T) {
	_, _, err := ParseExportCSV(strings.NewReader(""))
	require.Error(t, err)
}
