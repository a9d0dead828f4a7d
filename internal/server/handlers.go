package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MeKo-Tech/platescan/internal/utils"
)

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

// handleEstimate accepts a photo as a multipart "image" part (or a raw
// request body) plus an optional "language" field and runs the cascade.
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	maxBytes := int64(s.cfg.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	imageBytes, language, err := readUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	uploadSizeBytes.Observe(float64(len(imageBytes)))

	start := time.Now()
	result, err := s.pipeline.Guess(r.Context(), imageBytes, language)
	if err != nil {
		if errors.Is(err, utils.ErrUndecodable) {
			estimateRequestsTotal.WithLabelValues("none", "undecodable").Inc()
			writeError(w, http.StatusUnprocessableEntity, "image could not be decoded")
			return
		}
		estimateRequestsTotal.WithLabelValues("none", "error").Inc()
		slog.Error("Estimate failed", "error", err)
		writeError(w, http.StatusInternalServerError, "estimation failed")
		return
	}

	estimateRequestsTotal.WithLabelValues(result.SourceName, "ok").Inc()
	estimateDuration.WithLabelValues(result.SourceName).Observe(time.Since(start).Seconds())

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		slog.Error("Encode response failed", "error", err)
	}
}

// readUpload extracts the image payload and language hint from a request.
// Multipart uploads use the "image" file part and "language" form value;
// other content types are read as a raw image body.
func readUpload(r *http.Request) ([]byte, string, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, _, err := r.FormFile("image")
		if err != nil {
			return nil, "", errors.New("missing image part")
		}
		defer func() { _ = file.Close() }()
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, "", errors.New("read image part failed")
		}
		return data, r.FormValue("language"), nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil || len(data) == 0 {
		return nil, "", errors.New("empty request body")
	}
	return data, r.URL.Query().Get("language"), nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}
