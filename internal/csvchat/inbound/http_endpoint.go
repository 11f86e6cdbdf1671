package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/shandysiswandi/csvchat/internal/csvchat/usecase"
	"github.com/shandysiswandi/csvchat/internal/pkg/pkgerror"
	"github.com/shandysiswandi/csvchat/internal/pkg/pkgrouter"
)

type HTTPEndpoint struct {
	uc uc
}

func (h *HTTPEndpoint) Upload(ctx context.Context, r *http.Request) (any, error) {
	part, err := extractFilePart(r)
	if err != nil {
		return nil, err
	}

	in := usecase.UploadInput{}
	if part != nil {
		defer part.Close()
		in.Filename = part.FileName()
		in.Body = part
	}

	result, err := h.uc.Upload(ctx, in)
	if err != nil {
		return nil, mapBodyErr(ctx, err)
	}

	return UploadResponse{
		Message:  uploadMessage,
		Rows:     result.Rows,
		Filename: result.Filename,
	}, nil
}

func (h *HTTPEndpoint) Chat(ctx context.Context, r *http.Request) (any, error) {
	query, err := extractUserQuery(r)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.Chat(ctx, query)
	if err != nil {
		return nil, err
	}

	return ChatResponse{Answer: result.Answer}, nil
}

func (h *HTTPEndpoint) Dataset(ctx context.Context, r *http.Request) (any, error) {
	result, err := h.uc.Dataset(ctx)
	if err != nil {
		return nil, err
	}

	columns := result.Columns
	if columns == nil {
		columns = []string{}
	}

	return DatasetResponse{
		Filename:   result.Filename,
		Rows:       result.Rows,
		Columns:    columns,
		Version:    result.Version,
		UploadedAt: result.UploadedAt,
	}, nil
}

// extractFilePart returns the multipart "file" part, or nil when the
// request carries no such part. The part is streamed, never buffered.
func extractFilePart(r *http.Request) (*multipart.Part, error) {
	if !hasMediaType(r, "multipart/form-data") {
		return nil, nil
	}

	reader, err := r.MultipartReader()
	if err != nil {
		return nil, pkgerror.NewInvalidFormat()
	}
	ctx := r.Context()

	for {
		part, err := reader.NextPart()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, mapBodyErr(ctx, pkgerror.NewInvalidFormat(), err)
		}

		if part.FormName() == "file" && part.FileName() != "" {
			return part, nil
		}
		_ = part.Close()
	}
}

func extractUserQuery(r *http.Request) (string, error) {
	if hasMediaType(r, "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return "", mapBodyErr(r.Context(), pkgerror.NewInvalidFormat(), err)
		}
		return r.PostForm.Get("user_query"), nil
	}

	var req ChatRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		return "", mapBodyErr(r.Context(), pkgerror.NewInvalidFormat(), err)
	}

	query, ok := queryText(req.UserQuery)
	if !ok {
		return "", pkgerror.NewInvalidFormat()
	}
	return query, nil
}

// queryText renders a JSON user_query as text. Falsy scalars (null, false,
// zero) count as no query; objects and arrays are rejected.
func queryText(v any) (string, bool) {
	switch q := v.(type) {
	case nil:
		return "", true
	case string:
		return q, true
	case bool:
		if !q {
			return "", true
		}
		return "true", true
	case json.Number:
		f, err := q.Float64()
		if err != nil {
			return q.String(), true
		}
		if f == 0 {
			return "", true
		}
		return strconv.FormatFloat(f, 'f', -1, 64), true
	default:
		return "", false
	}
}

func hasMediaType(r *http.Request, want string) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	return err == nil && strings.EqualFold(mediaType, want)
}

// mapBodyErr turns a body size overflow into a 413, otherwise it returns
// errs[0]. The overflow is taken from the body limit state on ctx first,
// since multipart parsing can replace the *http.MaxBytesError.
func mapBodyErr(ctx context.Context, errs ...error) error {
	if limit, ok := pkgrouter.BodyLimitExceeded(ctx); ok {
		return pkgerror.NewPayloadTooLarge(limit)
	}
	for _, err := range errs {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return pkgerror.NewPayloadTooLarge(maxErr.Limit)
		}
	}
	return errs[0]
}
