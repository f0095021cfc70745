package ui

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"ytscribe/internal/formats"
	"ytscribe/internal/logging"
	"ytscribe/internal/retrieval"
	"ytscribe/internal/youtube"
)

const maxRequestBytes = 64 << 10

type errorResponse struct {
	Error         string `json:"error"`
	Kind          string `json:"kind"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

type formatsResponse struct {
	Formats []formats.Format `json:"formats"`
	Default string           `json:"default"`
	Save    bool             `json:"save"`
}

type checkRequest struct {
	Input string `json:"input"`
}

// pageHeader carries the page ID on API calls; the close beacon uses the
// page query parameter instead.
const pageHeader = "X-Ytscribe-Page"

type indexData struct {
	Token           string
	PageID          string
	Format          string
	Save            bool
	HeartbeatMillis int64
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := uuid.NewString()
	s.session.touch(page)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	data := indexData{
		Token:           s.token,
		PageID:          page,
		Format:          s.defaultFormatKey(),
		Save:            s.opts.DefaultSave,
		HeartbeatMillis: s.heartbeatInterval().Milliseconds(),
	}
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Error("render window page", logging.Error(err))
	}
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, formatsResponse{
		Formats: formats.All(),
		Default: s.defaultFormatKey(),
		Save:    s.opts.DefaultSave,
	}, s.logger)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	s.session.touch(pageID(r))
	var req checkRequest
	if !s.decode(w, r, &req) {
		return
	}
	listing, err := s.svc.Check(r.Context(), req.Input)
	if err != nil {
		s.writeProblem(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing, s.logger)
}

func (s *Server) handleObtain(w http.ResponseWriter, r *http.Request) {
	s.session.touch(pageID(r))
	var req retrieval.Request
	if !s.decode(w, r, &req) {
		return
	}
	result, err := s.svc.Obtain(r.Context(), req)
	if err != nil {
		s.writeProblem(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result, s.logger)
}

func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	s.session.touch(pageID(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	page := pageID(r)
	s.session.requestClose(page)
	s.logger.Debug("window page closed",
		logging.String("page", page),
		logging.Int("open_pages", s.session.openPages()),
	)
	w.WriteHeader(http.StatusNoContent)
}

func pageID(r *http.Request) string {
	if id := r.Header.Get(pageHeader); id != "" {
		return id
	}
	return r.URL.Query().Get("page")
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "invalid request body: " + err.Error(),
			Kind:  retrieval.KindInvalidRequest,
		}, s.logger)
		return false
	}
	return true
}

func (s *Server) writeProblem(w http.ResponseWriter, err error) {
	problem := retrieval.AsProblem(err)
	writeJSON(w, statusForKind(problem.Kind), errorResponse{
		Error:         problem.Message,
		Kind:          problem.Kind,
		CorrelationID: problem.CorrelationID,
	}, s.logger)
}

func (s *Server) defaultFormatKey() string {
	if format, err := formats.Lookup(s.opts.DefaultFormat); err == nil {
		return format.Key
	}
	return "text"
}

// heartbeatInterval keeps several heartbeats inside one idle window.
func (s *Server) heartbeatInterval() time.Duration {
	interval := 10 * time.Second
	if s.opts.IdleTimeout > 0 && s.opts.IdleTimeout/4 < interval {
		interval = s.opts.IdleTimeout / 4
	}
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}

func statusForKind(kind string) int {
	switch kind {
	case string(youtube.KindInvalidVideoID), retrieval.KindInvalidRequest:
		return http.StatusBadRequest
	case string(youtube.KindVideoUnavailable):
		return http.StatusNotFound
	case string(youtube.KindTranscriptsDisabled),
		string(youtube.KindNoTranscriptFound),
		string(youtube.KindNotTranslatable),
		string(youtube.KindTranslationUnavailable),
		string(youtube.KindAgeRestricted),
		string(youtube.KindVideoUnplayable),
		string(youtube.KindPoTokenRequired):
		return http.StatusUnprocessableEntity
	case retrieval.KindCanceled:
		return http.StatusServiceUnavailable
	case retrieval.KindSaveFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil && logger != nil {
		logger.Error("failed to encode response", logging.Error(err))
	}
}
