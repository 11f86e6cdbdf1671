package usecase

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/shandysiswandi/csvchat/internal/csvchat/entity"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ctxCheckEvery is how many records are read between context checks.
const ctxCheckEvery = 1024

// parseCSV reads a header line followed by data lines. Short records omit
// the missing columns, extra cells are keyed "_<index>" and a repeated
// header keeps the value of its last occurrence.
func parseCSV(ctx context.Context, r io.Reader) ([]string, []entity.Row, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.LazyQuotes = true
	reader.ReuseRecord = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}
	header = append([]string(nil), header...)

	columns := make([]string, 0, len(header))
	seen := make(map[string]struct{}, len(header))
	addColumn := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		columns = append(columns, name)
	}
	for _, h := range header {
		addColumn(h)
	}

	var rows []entity.Row
	for n := 0; ; n++ {
		if n%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv record: %w", err)
		}

		row := make(entity.Row, len(header))
		for i, cell := range record {
			key := "_" + strconv.Itoa(i)
			if i < len(header) {
				key = header[i]
			} else {
				addColumn(key)
			}
			row[key] = cell
		}
		rows = append(rows, row)
	}

	return columns, rows, nil
}
