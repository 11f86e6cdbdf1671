package usecase

import (
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/shandysiswandi/csvchat/internal/csvchat/entity"
)

func TestParseCSV(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		columns []string
		rows    []entity.Row
	}{
		{
			name:    "header and rows",
			input:   "name,amount\nalice,10\nbob,20\n",
			columns: []string{"name", "amount"},
			rows:    []entity.Row{{"name": "alice", "amount": "10"}, {"name": "bob", "amount": "20"}},
		},
		{
			name:    "quoted cells",
			input:   "name,note\n\"Doe, Jane\",\"said \"\"hi\"\"\"\n",
			columns: []string{"name", "note"},
			rows:    []entity.Row{{"name": "Doe, Jane", "note": `said "hi"`}},
		},
		{
			name:    "bom and blank lines",
			input:   "\xEF\xBB\xBFid,v\n\n1,a\n\n2,b\n",
			columns: []string{"id", "v"},
			rows:    []entity.Row{{"id": "1", "v": "a"}, {"id": "2", "v": "b"}},
		},
		{
			name:    "crlf line endings",
			input:   "id,v\r\n1,a\r\n",
			columns: []string{"id", "v"},
			rows:    []entity.Row{{"id": "1", "v": "a"}},
		},
		{
			name:    "short and long records",
			input:   "a,b\n1\n2,3,4\n",
			columns: []string{"a", "b", "_2"},
			rows:    []entity.Row{{"a": "1"}, {"a": "2", "b": "3", "_2": "4"}},
		},
		{
			name:    "duplicate header keeps last",
			input:   "x,x\n1,2\n",
			columns: []string{"x"},
			rows:    []entity.Row{{"x": "2"}},
		},
		{
			name:    "header only",
			input:   "a,b\n",
			columns: []string{"a", "b"},
		},
		{
			name: "empty file",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			columns, rows, err := parseCSV(context.Background(), strings.NewReader(tc.input))
			if err != nil {
				t.Fatalf("parseCSV: %v", err)
			}
			if !reflect.DeepEqual(columns, tc.columns) && !(len(columns) == 0 && len(tc.columns) == 0) {
				t.Fatalf("columns = %#v, want %#v", columns, tc.columns)
			}
			if !reflect.DeepEqual(rows, tc.rows) && !(len(rows) == 0 && len(tc.rows) == 0) {
				t.Fatalf("rows = %#v, want %#v", rows, tc.rows)
			}
		})
	}
}

type brokenReader struct {
	data io.Reader
}

func (b *brokenReader) Read(p []byte) (int, error) {
	n, err := b.data.Read(p)
	if errors.Is(err, io.EOF) {
		return n, errors.New("connection reset")
	}
	return n, err
}

func TestParseCSVReadError(t *testing.T) {
	_, _, err := parseCSV(context.Background(), &brokenReader{data: strings.NewReader("a,b\n1,2\n")})
	if err == nil || !strings.Contains(err.Error(), "connection reset") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestParseCSVCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := parseCSV(ctx, strings.NewReader("a\n1\n"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
