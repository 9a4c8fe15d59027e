// Package api exposes a rhyme dictionary over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/richinex/rhymer/rhyme"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the request ID on responses.
const RequestIDHeader = "X-Request-ID"

// Options configures a Server.
type Options struct {
	ReadTimeout time.Duration
	ResultLimit int // default and maximum for completion and search results
}

// Server serves a Dictionary over HTTP.
type Server struct {
	dict   *rhyme.Dictionary
	logger zerolog.Logger
	limit  int
	server *http.Server
}

// NewServer creates a server for dict listening on addr.
func NewServer(addr string, dict *rhyme.Dictionary, logger zerolog.Logger, opts Options) *Server {
	if opts.ResultLimit <= 0 {
		opts.ResultLimit = 20
	}

	s := &Server{
		dict:   dict,
		logger: logger,
		limit:  opts.ResultLimit,
	}

	r := mux.NewRouter()
	r.Use(s.requestID, s.accessLog)

	r.HandleFunc("/words", s.listWords).Methods(http.MethodGet)
	r.HandleFunc("/words/{word}", s.getWord).Methods(http.MethodGet)
	r.HandleFunc("/words/{word}", s.putWord).Methods(http.MethodPut)
	r.HandleFunc("/words/{word}", s.deleteWord).Methods(http.MethodDelete)
	r.HandleFunc("/rhymes/{word}", s.getRhyme).Methods(http.MethodGet)
	r.HandleFunc("/complete/{prefix}", s.complete).Methods(http.MethodGet)
	r.HandleFunc("/search/{pattern}", s.search).Methods(http.MethodGet)
	r.HandleFunc("/stats", s.stats).Methods(http.MethodGet)

	// Ensure the address includes a host if not specified
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = "0.0.0.0:" + addr
	}

	s.server = &http.Server{
		Addr:        addr,
		Handler:     r,
		ReadTimeout: opts.ReadTimeout,
	}
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start listens and serves until Shutdown is called.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}

	s.logger.Info().Str("addr", listener.Addr().String()).Msg("Server listening")
	if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type requestIDKey struct{}

// RequestID returns the ID assigned to the request carried by ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// statusRecorder captures the status code for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Debug().
			Str("request_id", RequestID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("Handled request")
	})
}

func (s *Server) listWords(w http.ResponseWriter, r *http.Request) {
	words := s.dict.Words()
	if words == nil {
		words = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(words),
		"words": words,
	})
}

func (s *Server) getWord(w http.ResponseWriter, r *http.Request) {
	word := mux.Vars(r)["word"]
	present, err := s.dict.Has(word)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if !present {
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]interface{}{
		"word":    word,
		"present": present,
	})
}

func (s *Server) putWord(w http.ResponseWriter, r *http.Request) {
	word := mux.Vars(r)["word"]
	added, err := s.dict.Add(word)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
		s.logger.Info().Str("request_id", RequestID(r.Context())).Str("word", word).Msg("Word added")
	}
	writeJSON(w, status, map[string]interface{}{
		"word":  word,
		"added": added,
	})
}

func (s *Server) deleteWord(w http.ResponseWriter, r *http.Request) {
	word := mux.Vars(r)["word"]
	removed, err := s.dict.Remove(word)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !removed {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found", Message: fmt.Sprintf("%q is not stored", word)})
		return
	}

	s.logger.Info().Str("request_id", RequestID(r.Context())).Str("word", word).Msg("Word removed")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getRhyme(w http.ResponseWriter, r *http.Request) {
	match, err := s.dict.Rhyme(mux.Vars(r)["word"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}

func (s *Server) complete(w http.ResponseWriter, r *http.Request) {
	limit, err := s.parseLimit(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_limit", Message: err.Error()})
		return
	}
	writeResults(w, s.dict.Complete(mux.Vars(r)["prefix"], limit))
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	limit, err := s.parseLimit(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_limit", Message: err.Error()})
		return
	}
	writeResults(w, s.dict.Search(mux.Vars(r)["pattern"], limit))
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	st := s.dict.Stats()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries":     st.Entries,
		"nodes":       st.Nodes,
		"fingerprint": st.FingerprintHex(),
	})
}

// parseLimit reads ?limit=, capped at the configured result limit.
func (s *Server) parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return s.limit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("limit must be a positive integer, got %q", raw)
	}
	if n > s.limit {
		n = s.limit
	}
	return n, nil
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError maps dictionary errors to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, rhyme.ErrEmptyWord):
		status, code = http.StatusBadRequest, "empty_word"
	case errors.Is(err, rhyme.ErrInvalidWord):
		status, code = http.StatusBadRequest, "invalid_word"
	case errors.Is(err, rhyme.ErrEmptyTree):
		status, code = http.StatusNotFound, "empty_tree"
	case errors.Is(err, rhyme.ErrNoJointSuffix):
		status, code = http.StatusNotFound, "no_joint_suffix"
	case errors.Is(err, rhyme.ErrOnlyKeyMatches):
		status, code = http.StatusConflict, "only_key_matches"
	default:
		s.logger.Error().Err(err).Str("request_id", RequestID(r.Context())).Msg("Request failed")
	}
	writeJSON(w, status, errorBody{Error: code, Message: err.Error()})
}

func writeResults(w http.ResponseWriter, results []string) {
	if results == nil {
		results = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
