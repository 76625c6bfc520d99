package http

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"pocketbook/internal/ledger"
	"pocketbook/internal/log"
)

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var buf bytes.Buffer
	if err := s.ledger.Export(&buf); err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Export failed", log.FieldError, err)
		InternalServerError("export failed").Write(w)
		return
	}
	NewJSONResponse().
		Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": ledger.ExportFilename(s.now())})).
		Raw("application/json; charset=utf-8", buf.Bytes()).
		Write(w)
}

// handleImport accepts the backup as the raw body or as the "file" part of
// a multipart form. Without confirm=true it only validates and reports the
// record count.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data, _, err := readUpload(w, r, "file")
	if err != nil {
		if isTooLarge(err) {
			ErrorResponse(http.StatusRequestEntityTooLarge, "backup file too large").Write(w)
			return
		}
		BadRequestError(err.Error()).Write(w)
		return
	}

	if !truthy(r.URL.Query().Get("confirm")) {
		n, err := s.ledger.PreviewImport(data)
		if err != nil {
			BadRequestError(err.Error()).Write(w)
			return
		}
		NewJSONResponse().Body(map[string]any{
			"count":           n,
			"confirmRequired": true,
		}).Write(w)
		return
	}

	n, err := s.ledger.Import(ctx, data)
	if err != nil {
		if errors.Is(err, ledger.ErrImportFormat) {
			BadRequestError(err.Error()).Write(w)
			return
		}
		log.FromContext(ctx).ErrorContext(ctx, "Import failed", log.FieldError, err)
		InternalServerError("the backup could not be saved").Write(w)
		return
	}
	NewJSONResponse().Body(map[string]any{"imported": n}).Write(w)
}

// readUpload returns the named multipart file, or the raw body for any
// other content type, bounded by maxUploadBytes. contentType is the type
// declared for the returned bytes.
func readUpload(w http.ResponseWriter, r *http.Request, field string) (data []byte, contentType string, err error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	contentType = r.Header.Get("Content-Type")

	mediaType, _, _ := mime.ParseMediaType(contentType)
	if !strings.HasPrefix(mediaType, "multipart/") {
		data, err = io.ReadAll(r.Body)
		return data, contentType, err
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, "", err
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", errors.New("missing " + field + " upload")
	}
	defer file.Close()
	data, err = io.ReadAll(file)
	return data, header.Header.Get("Content-Type"), err
}
