package export

import (
	"bytes"
	"encoding/csv"
)

// ToCSV writes the header then one line per row with RFC-4180 escaping:
// fields containing commas or quotes are quoted and embedded quotes doubled.
func (s *ExportServiceImpl) ToCSV(columns []string, rows []map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(columns); err != nil {
		return nil, err
	}

	for _, row := range rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = exportValue(row[col])
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
