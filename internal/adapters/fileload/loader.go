package fileload

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// Parser implementa scrape.FileParser.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) ParseRows(name string, r io.Reader) ([]map[string]string, error) {
	return ParseRows(name, r)
}

// ParseRows convierte un archivo subido (CSV o JSON; un .txt se intenta como
// CSV) en las mismas filas header -> celda que produce el scraper, para que
// todo entre por el mismo pipeline de ingesta. Los headers de CSV se
// normalizan (minúsculas, espacios -> guión bajo); las claves de JSON van tal
// cual, la ingesta tolera ambas formas.
//
// Excel queda afuera: el cliente exporta los mismos datos como CSV.
func ParseRows(name string, r io.Reader) ([]map[string]string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return parseJSON(r)
	case ".csv", ".txt":
		return parseCSV(r)
	case ".xlsx", ".xls":
		return nil, fmt.Errorf("%w: excel (exportar como csv)", ErrUnsupportedFormat)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

func parseJSON(r io.Reader) ([]map[string]string, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse json file: %w", err)
	}

	rows := make([]map[string]string, 0, len(raw))
	for _, item := range raw {
		row := make(map[string]string, len(item))
		for k, v := range item {
			row[k] = stringify(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseCSV(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // filas desparejas: celdas faltantes quedan vacías
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv file: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = normalizeHeader(h)
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, cells := range records[1:] {
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(cells) {
				row[h] = strings.TrimSpace(cells[i])
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func normalizeHeader(h string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}
