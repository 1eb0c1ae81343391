package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"docsplit/file"
	"docsplit/pkg/chunking"
	"docsplit/text"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	uploadField = "file"
	// multipartSlack covers boundaries, part headers and small form fields
	// around the file part.
	multipartSlack = 1 << 20
)

type uploadResponse struct {
	FileName       string           `json:"file_name"`
	TotalChunks    int              `json:"total_chunks"`
	ProcessingTime string           `json:"processing_time"`
	Chunks         []chunking.Chunk `json:"chunks"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// errTooLarge marks an upload over the configured ceiling.
var errTooLarge = errors.New("upload too large")

// handleUpload accepts a multipart upload in field "file" and responds with
// its chunks. chunk_size and overlap query parameters override the defaults.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	logger := s.logger.With(zap.String("request_id", requestID))
	w.Header().Set("X-Request-ID", requestID)

	chunkSize, err := queryInt(r, "chunk_size", s.opts.DefaultChunkSize)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	overlap, err := queryInt(r, "overlap", s.opts.DefaultOverlap)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	doc, err := s.readUpload(w, r)
	switch {
	case errors.Is(err, errTooLarge):
		logger.Warn("Upload rejected", zap.Int64("limit", s.opts.MaxUploadBytes))
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("File too large. Maximum size: %dMB", s.opts.MaxUploadBytes>>20))
		return
	case err != nil:
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	logger.Info("Upload received",
		zap.String("file_name", doc.Filename),
		zap.String("content_type", doc.DeclaredType),
		zap.Int("size", len(doc.Data)),
		zap.Int("chunk_size", chunkSize),
		zap.Int("overlap", overlap))

	result, err := s.processor.Process(*doc, chunkSize, overlap)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			logger.Error("Processing failed", zap.String("file_name", doc.Filename), zap.Error(err))
			writeError(w, status, "internal server error")
			return
		}
		logger.Info("Upload rejected", zap.Int("status", status), zap.Error(err))
		writeError(w, status, detailFor(err))
		return
	}

	logger.Info("Upload processed",
		zap.String("file_name", result.FileName),
		zap.String("kind", string(result.Kind)),
		zap.String("method", string(result.Method)),
		zap.Int("total_chunks", result.TotalChunks),
		zap.Duration("processing_time", result.Elapsed))

	writeJSON(w, http.StatusOK, uploadResponse{
		FileName:       result.FileName,
		TotalChunks:    result.TotalChunks,
		ProcessingTime: fmt.Sprintf("%.2fs", result.Elapsed.Seconds()),
		Chunks:         result.Chunks,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Service: "PDF/EPUB Chunker"})
}

// readUpload streams the multipart body and returns the file part. The part
// is read up to one byte past the ceiling to detect oversized uploads without
// buffering them.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*file.Document, error) {
	limit := s.opts.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartSlack)

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("expected a multipart/form-data body: %w", err)
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil, fmt.Errorf("missing form field %q", uploadField)
		}
		if err != nil {
			return nil, uploadReadError(err)
		}
		if part.FormName() != uploadField {
			part.Close()
			continue
		}

		data, err := io.ReadAll(io.LimitReader(part, limit+1))
		part.Close()
		if err != nil {
			return nil, uploadReadError(err)
		}
		if int64(len(data)) > limit {
			return nil, errTooLarge
		}

		declared := part.Header.Get("Content-Type")
		if declared == "" && s.opts.SniffContentType {
			declared = mimetype.Detect(data).String()
		}

		return &file.Document{
			Data:         data,
			DeclaredType: declared,
			Filename:     part.FileName(),
		}, nil
	}
}

func uploadReadError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return errTooLarge
	}
	return fmt.Errorf("read upload: %w", err)
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("query parameter %s must be an integer, got %q", key, raw)
	}
	return n, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, file.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, chunking.ErrInvalidConfig):
		return http.StatusUnprocessableEntity
	case errors.Is(err, file.ErrExtraction), errors.Is(err, text.ErrEmptyDocument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func detailFor(err error) string {
	switch {
	case errors.Is(err, file.ErrUnsupportedFormat):
		return "Unsupported file type. Only PDF and EPUB files are supported."
	case errors.Is(err, text.ErrEmptyDocument):
		return "No text could be extracted from the document."
	default:
		return err.Error()
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, errorResponse{Detail: detail})
}
