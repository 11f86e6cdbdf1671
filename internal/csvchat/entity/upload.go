package entity

// StoredFile describes an upload written to the upload directory.
type StoredFile struct {
	Name string
	Path string
	Size int64
}
