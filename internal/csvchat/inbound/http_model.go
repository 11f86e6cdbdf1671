package inbound

const uploadMessage = "CSV uploaded and parsed successfully"

// ChatRequest accepts any scalar user_query; numbers and booleans are sent
// to the model as their text.
type ChatRequest struct {
	UserQuery any `json:"user_query"`
}

type UploadResponse struct {
	Message  string `json:"message"`
	Rows     int    `json:"rows"`
	Filename string `json:"filename"`
}

type ChatResponse struct {
	Answer string `json:"answer"`
}

// DatasetResponse describes the active dataset. Version is a snowflake ID,
// sent as a string so JavaScript clients keep every digit.
type DatasetResponse struct {
	Filename   string   `json:"filename"`
	Rows       int      `json:"rows"`
	Columns    []string `json:"columns"`
	Version    int64    `json:"version,string"`
	UploadedAt int64    `json:"uploaded_at"`
}
