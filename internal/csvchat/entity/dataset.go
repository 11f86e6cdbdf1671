package entity

// Row is one CSV data line keyed by column header.
type Row map[string]string

// Dataset is the parsed content of the most recent successful upload.
//
// A Dataset is immutable once it is handed to the store; a new upload builds
// a fresh one and replaces it whole.
type Dataset struct {
	Version    int64
	Filename   string
	Columns    []string // header order, used to render rows deterministically
	Rows       []Row
	UploadedAt int64
}

// Empty reports whether no rows are available.
func (d Dataset) Empty() bool {
	return len(d.Rows) == 0
}

// Head returns at most n leading rows.
func (d Dataset) Head(n int) []Row {
	if n < 0 || n > len(d.Rows) {
		n = len(d.Rows)
	}
	return d.Rows[:n]
}
