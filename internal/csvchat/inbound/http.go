package inbound

import (
	"context"

	"github.com/shandysiswandi/csvchat/internal/csvchat/usecase"
	"github.com/shandysiswandi/csvchat/internal/pkg/pkgrouter"
)

// chatMaxBytes caps a chat request body.
const chatMaxBytes int64 = 1 << 20

type uc interface {
	Upload(ctx context.Context, in usecase.UploadInput) (usecase.UploadResult, error)
	Chat(ctx context.Context, query string) (usecase.ChatResult, error)
	Dataset(ctx context.Context) (usecase.DatasetResult, error)
}

// RegisterHTTPEndpoint mounts the upload, chat and dataset routes. A
// non-positive uploadMaxBytes leaves upload bodies unbounded.
func RegisterHTTPEndpoint(r *pkgrouter.Router, uc uc, uploadMaxBytes int64) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/upload", end.Upload, pkgrouter.BodyLimit(uploadMaxBytes)) // multipart field "file"
	r.POST("/chat", end.Chat, pkgrouter.BodyLimit(chatMaxBytes))
	r.GET("/dataset", end.Dataset)
}
