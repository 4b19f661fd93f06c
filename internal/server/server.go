// Package server exposes the pipeline over HTTP and WebSocket. It is thin
// plumbing: requests become pipeline jobs, outcomes become JSON.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/rbright/voxtrace/internal/audio"
	"github.com/rbright/voxtrace/internal/pipeline"
	"github.com/rbright/voxtrace/internal/store"
)

// maxUploadBytes bounds a single audio upload (≈5 minutes of 16 kHz mono
// PCM plus header slack).
const maxUploadBytes = 16 << 20

// Queries is the read-side store surface the API handlers need.
type Queries interface {
	Messages(ctx context.Context, limit, offset int, speakerID string) ([]store.VoiceMessage, error)
	UpdateNotes(ctx context.Context, id int64, notes string) error
	SpeakerSummaries(ctx context.Context) ([]store.SpeakerSummary, error)
	Stats(ctx context.Context) (store.Stats, error)
}

// Server owns the HTTP listener and the job queue feeding the worker pool.
type Server struct {
	logger  *slog.Logger
	queries Queries
	jobs    chan<- pipeline.Job
	httpSrv *http.Server
}

// New builds a server on addr. Submitted audio is dispatched through jobs;
// the caller runs the worker pool that drains it.
func New(logger *slog.Logger, addr string, queries Queries, jobs chan<- pipeline.Job) *Server {
	s := &Server{
		logger:  logger,
		queries: queries,
		jobs:    jobs,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/process-audio", s.handleProcessAudio)
	mux.HandleFunc("GET /api/messages", s.handleMessages)
	mux.HandleFunc("PUT /api/messages/{id}/notes", s.handleUpdateNotes)
	mux.HandleFunc("GET /api/speakers", s.handleSpeakers)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /ws/audio", s.handleAudioSocket)

	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	s.logger.Info("server listening", slog.String("addr", s.httpSrv.Addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	}
}

// submit queues one buffer and waits for its batch result.
func (s *Server) submit(ctx context.Context, buf audio.Buffer) (pipeline.BatchResult, error) {
	reply := make(chan pipeline.BatchResult, 1)
	select {
	case s.jobs <- pipeline.Job{Buffer: buf, Reply: reply}:
	case <-ctx.Done():
		return pipeline.BatchResult{}, ctx.Err()
	}
	select {
	case res := <-reply:
		return res, nil
	case <-ctx.Done():
		return pipeline.BatchResult{}, ctx.Err()
	}
}

// handleProcessAudio accepts a WAV upload, normalizes it to 16 kHz mono,
// and responds with the outcome list.
func (s *Server) handleProcessAudio(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("read body: %v", err))
		return
	}
	if len(body) > maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds limit")
		return
	}

	pcm, info, err := audio.DecodeWAV(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("decode wav: %v", err))
		return
	}
	buf, err := audio.Normalize(pcm, info)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("normalize audio: %v", err))
		return
	}

	res, err := s.submit(r.Context(), buf)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	status := http.StatusOK
	resp := map[string]any{"outcomes": res.Outcomes}
	if res.Err != nil {
		status = http.StatusInternalServerError
		resp["error"] = res.Err.Error()
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := intParam(q.Get("limit"), 50)
	offset := intParam(q.Get("offset"), 0)

	msgs, err := s.queries.Messages(r.Context(), limit, offset, q.Get("speaker_id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]map[string]any, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageJSON(m))
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": out})
}

func (s *Server) handleUpdateNotes(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid message id")
		return
	}

	var body struct {
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("decode body: %v", err))
		return
	}

	if err := s.queries.UpdateNotes(r.Context(), id, body.Notes); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "notes": body.Notes})
}

func (s *Server) handleSpeakers(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.queries.SpeakerSummaries(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]map[string]any, 0, len(summaries))
	for _, sp := range summaries {
		out = append(out, map[string]any{
			"speaker_id":    sp.SpeakerID,
			"first_seen":    sp.FirstSeen.UTC().Format(time.RFC3339),
			"last_seen":     sp.LastSeen.UTC().Format(time.RFC3339),
			"message_count": sp.MessageCount,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"speakers": out})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.queries.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"messages":               st.Messages,
		"speakers":               st.Speakers,
		"languages":              st.Languages,
		"total_duration_seconds": st.TotalDuration,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func messageJSON(m store.VoiceMessage) map[string]any {
	return map[string]any{
		"id":            m.ID,
		"speaker_id":    m.SpeakerID,
		"archive_ref":   m.ArchiveRef,
		"duration":      m.Duration,
		"language":      m.Language,
		"transcription": m.Transcription,
		"confidence":    m.Confidence,
		"timestamp":     m.Timestamp.UTC().Format(time.RFC3339),
		"notes":         m.Notes,
	}
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
