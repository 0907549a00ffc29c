package marker

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yungbote/ipksa-ingest/internal/domain/ingesterr"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// Row is one CSV record keyed by lower-cased header name. Cells missing from
// short rows are simply absent.
type Row map[string]string

// ReadCSV reads a header-driven CSV file. Ragged rows are allowed.
func ReadCSV(path string) ([]Row, error) {
	const op = "marker.read_csv"
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ingesterr.Wrap(ingesterr.CodeParse, op, err)
	}
	return ParseCSV(data)
}

func ParseCSV(data []byte) ([]Row, error) {
	const op = "marker.parse_csv"
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, ingesterr.NewError(ingesterr.CodeParse, op, "empty CSV (no header)", nil)
	}
	if err != nil {
		return nil, ingesterr.Wrap(ingesterr.CodeParse, op, err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	var rows []Row
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, ingesterr.NewError(ingesterr.CodeParse, op, fmt.Sprintf("row %d: %v", len(rows)+2, err), err)
		}
		row := make(Row, len(header))
		for i, cell := range rec {
			if i >= len(header) || header[i] == "" {
				continue
			}
			row[header[i]] = cell
		}
		rows = append(rows, row)
	}
	return rows, nil
}
