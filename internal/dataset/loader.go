package dataset

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"convo-insights-go/internal/types"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for file extensions other than .xlsx, .csv and .json.
var ErrUnsupportedFormat = eris.New("unsupported dataset format")

// LoadFile reads raw records from an export, dispatching on extension.
func LoadFile(path string) ([]types.RawRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return loadXLSX(path)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "open %s", path)
		}
		defer f.Close()
		return ReadCSV(f)
	case ".json":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "open %s", path)
		}
		defer f.Close()
		return ReadJSON(f)
	}
	return nil, eris.Wrapf(ErrUnsupportedFormat, "file %s", path)
}

func loadXLSX(path string) ([]types.RawRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "open workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, eris.New("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, eris.Wrap(err, "read rows")
	}
	return tableRecords(rows), nil
}

// ReadCSV parses a header row followed by data rows. Ragged rows are tolerated.
func ReadCSV(r io.Reader) ([]types.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read row")
		}
		rows = append(rows, rec)
	}
	return tableRecords(rows), nil
}

// tableRecords keys each data row by its normalized header. Blank rows are skipped.
func tableRecords(rows [][]string) []types.RawRecord {
	if len(rows) == 0 {
		return nil
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = HeaderKey(h)
	}

	out := make([]types.RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := types.RawRecord{}
		empty := true
		for i, cell := range row {
			if i >= len(header) || header[i] == "" {
				continue
			}
			if strings.TrimSpace(cell) != "" {
				empty = false
			}
			rec[header[i]] = cell
		}
		if !empty {
			out = append(out, rec)
		}
	}
	return out
}

// HeaderKey lower-cases and trims a column header and replaces spaces with '_'.
func HeaderKey(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
}

// ReadJSON accepts a top-level array of objects or an object holding one
// under "rows" or "data". Numbers decode as json.Number.
func ReadJSON(r io.Reader) ([]types.RawRecord, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "json: read")
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}

	if body[0] == '{' {
		var wrapped map[string]json.RawMessage
		if err := decode(body, &wrapped); err != nil {
			return nil, err
		}
		for _, key := range []string{"rows", "data"} {
			if inner, ok := wrapped[key]; ok {
				body = inner
				break
			}
		}
	}

	var records []types.RawRecord
	if err := decode(body, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func decode(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return eris.Wrap(err, "json: decode")
	}
	return nil
}
