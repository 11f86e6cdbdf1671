package usecase

import (
	"io"
)

type UploadInput struct {
	Filename string
	Body     io.Reader
}

type UploadResult struct {
	Filename string
	Rows     int
	Version  int64
}

type ChatResult struct {
	Answer string
}

type DatasetResult struct {
	Filename   string
	Rows       int
	Columns    []string
	Version    int64
	UploadedAt int64
}
