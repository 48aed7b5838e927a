package letterboxd

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Row is one record from a Letterboxd CSV export. All exports share the
// Name/Year/Letterboxd URI columns; the diary/reviews export adds the
// watched date, rating, review and rewatch columns, which stay blank for
// the watchlist and likes exports.
type Row struct {
	Name        string
	Year        string
	URI         string
	WatchedDate string
	Rating      string
	Review      string
	Rewatch     string
}

// ParseExportCSV parses a Letterboxd CSV export.
// Returns the parsed rows, per-line warnings for records that could not
// be read, and a fatal error when the file has no usable header.
func ParseExportCSV(r io.Reader) ([]Row, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	// Letterboxd exports are UTF-8 with a BOM on the first header cell.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	headerIndex := make(map[string]int)
	for i, h := range header {
		headerIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}

	requiredHeaders := []string{"name", "year", "letterboxd uri"}
	for _, h := range requiredHeaders {
		if _, ok := headerIndex[h]; !ok {
			return nil, nil, fmt.Errorf("missing required header: %s", h)
		}
	}

	var rows []Row
	var warnings []string
	lineNum := 1 // Start at 1 because we already read the header

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Line %d: %v", lineNum, err))
			continue
		}

		rows = append(rows, Row{
			Name:        getCSVValue(record, headerIndex, "name"),
			Year:        getCSVValue(record, headerIndex, "year"),
			URI:         getCSVValue(record, headerIndex, "letterboxd uri"),
			WatchedDate: getCSVValue(record, headerIndex, "watched date"),
			Rating:      getCSVValue(record, headerIndex, "rating"),
			Review:      getCSVValue(record, headerIndex, "review"),
			Rewatch:     getCSVValue(record, headerIndex, "rewatch"),
		})
	}

	return rows, warnings, nil
}

func getCSVValue(record []string, headerIndex map[string]int, header string) string {
	if idx, ok := headerIndex[header]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}
