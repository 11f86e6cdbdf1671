package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shandysiswandi/csvchat/internal/csvchat/entity"
)

const (
	PreviewJSON  = "json"
	PreviewPairs = "pairs"

	defaultJSONRows  = 50
	defaultPairsRows = 10

	noDataPreview = "No CSV uploaded yet."
	noAnswer      = "No response from AI."
)

const promptTemplate = `You are a business analytics assistant. Use the CSV data to answer the user's question.
%s
User question: %s
`

func previewRows(format string, n int) int {
	if n > 0 {
		return n
	}
	if format == PreviewPairs {
		return defaultPairsRows
	}
	return defaultJSONRows
}

// buildPreview renders the first rows of ds in the given format and reports
// how many rows went into it.
func buildPreview(ds entity.Dataset, format string, n int) (string, int, error) {
	if ds.Empty() {
		return noDataPreview, 0, nil
	}

	limit := previewRows(format, n)
	rows := ds.Head(limit)

	var body string
	switch format {
	case PreviewPairs:
		body = pairsPreview(ds.Columns, rows)
	default:
		out := make([]orderedRow, len(rows))
		for i, row := range rows {
			out[i] = orderedRow{columns: ds.Columns, row: row}
		}
		data, err := marshalJSON(out)
		if err != nil {
			return "", 0, err
		}
		body = string(data)
	}

	return fmt.Sprintf("CSV Data (first %d rows):\n%s", limit, body), len(rows), nil
}

func pairsPreview(columns []string, rows []entity.Row) string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		pairs := make([]string, 0, len(columns))
		for _, col := range columns {
			if v, ok := row[col]; ok {
				pairs = append(pairs, col+": "+v)
			}
		}
		lines = append(lines, strings.Join(pairs, ", "))
	}
	return strings.Join(lines, "\n")
}

func buildPrompt(preview, query string) string {
	return fmt.Sprintf(promptTemplate, preview, query)
}

// orderedRow encodes a row as a JSON object with keys in column order.
type orderedRow struct {
	columns []string
	row     entity.Row
}

func (o orderedRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, col := range o.columns {
		v, ok := o.row[col]
		if !ok {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false

		k, err := marshalJSON(col)
		if err != nil {
			return nil, err
		}
		val, err := marshalJSON(v)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalJSON is json.Marshal without HTML escaping, so cell text reaches
// the model as written.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
