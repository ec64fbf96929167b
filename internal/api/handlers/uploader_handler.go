package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/markdave123-py/Chatlens/internal/services"
)

const (
	imageField = "image"
	// formOverhead allows for multipart boundaries and headers around the image.
	formOverhead = 64 << 10
)

type UploaderHandler struct {
	svc      *services.ChatService
	logger   *slog.Logger
	maxBytes int64
}

func NewUploaderHandler(svc *services.ChatService, logger *slog.Logger, maxUploadMB int) *UploaderHandler {
	return &UploaderHandler{svc: svc, logger: logger, maxBytes: int64(maxUploadMB) << 20}
}

func (h *UploaderHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	h.svc.ToggleUploader()
	writeJSON(w, http.StatusOK, h.svc.Uploader())
}

func (h *UploaderHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Uploader())
}

// UploadImage accepts a multipart form with the image in the "image" field.
func (h *UploaderHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	limit := h.maxBytes + formOverhead
	if r.ContentLength > limit {
		writeError(w, h.logger, r, &http.MaxBytesError{Limit: h.maxBytes})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, h.logger, r, err)
			return
		}
		badRequest(w, "invalid multipart form")
		return
	}

	file, _, err := r.FormFile(imageField)
	if err != nil {
		badRequest(w, "missing image field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		badRequest(w, "could not read image")
		return
	}
	if int64(len(data)) > h.maxBytes {
		writeError(w, h.logger, r, &http.MaxBytesError{Limit: h.maxBytes})
		return
	}

	res, err := h.svc.UploadImage(r.Context(), data)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
