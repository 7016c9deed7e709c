package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/dfa"
	"github.com/aretw0/dfa/internal/compiler"
	"github.com/aretw0/dfa/internal/presentation/graph"
	"github.com/aretw0/dfa/pkg/domain"
	"github.com/aretw0/dfa/pkg/runner"
)

// DefaultMaxBodySize bounds request bodies, batch uploads included.
const DefaultMaxBodySize = 16 << 20

// Engine defines what the HTTP layer needs from the dfa engine.
// *dfa.Engine satisfies it.
type Engine interface {
	Current() (*domain.Automaton, error)
	Classify(ctx context.Context, symbols []domain.Symbol) (bool, error)
	Load(ctx context.Context) (*domain.Automaton, error)
}

// Server serves the automaton over HTTP.
type Server struct {
	Engine  Engine
	Streams *StreamManager
	Logger  *slog.Logger
	Metrics http.Handler

	// MaxBodySize caps request bodies; larger ones get 413.
	MaxBodySize int64
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics mounts h (usually a promhttp handler) on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// WithMaxBodySize overrides DefaultMaxBodySize.
func WithMaxBodySize(n int64) Option {
	return func(s *Server) {
		s.MaxBodySize = n
	}
}

// WithStreams shares a StreamManager, typically one whose Hooks are registered on the engine.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// NewServer creates a Server without building the router.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{Engine: engine, MaxBodySize: DefaultMaxBodySize}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager()
	}
	if s.Logger == nil {
		s.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	return NewServer(engine, opts...).Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/healthz", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/automaton", s.GetAutomaton)
	r.Get("/graph", s.GetGraph)
	r.Get("/events", s.SubscribeEvents)
	r.Post("/classify", s.Classify)
	r.Post("/classify/batch", s.ClassifyBatch)
	r.Post("/reload", s.Reload)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClassifyRequest is the body of POST /classify.
// Symbols wins over Input when both are set.
type ClassifyRequest struct {
	Input   string   `json:"input"`
	Symbols []string `json:"symbols"`
	Trace   bool     `json:"trace"`
}

// ClassifyResponse is the verdict for one input.
type ClassifyResponse struct {
	Verdict  runner.Verdict `json:"verdict"`
	Accepted bool           `json:"accepted"`
	Trace    []string       `json:"trace,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// GetHealth handles the GET /healthz request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	_, err := s.Engine.Current()
	resp := map[string]any{"status": "ok", "loaded": err == nil}
	writeJSON(w, http.StatusOK, resp)
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "dfa-http",
		"version": strings.TrimSpace(dfa.Version),
	})
}

// GetAutomaton handles the GET /automaton request.
func (s *Server) GetAutomaton(w http.ResponseWriter, r *http.Request) {
	a, ok := s.current(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, a.Definition())
}

// GetGraph handles the GET /graph request.
// ?format=mermaid|dot|markdown picks the rendering; ?input=0,1 highlights its trace.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	a, ok := s.current(w)
	if !ok {
		return
	}

	var overlay *graph.GraphOverlay
	if input, set := r.URL.Query()["input"]; set && len(input) > 0 {
		path, _ := a.Trace(compiler.ParseSymbols(input[0]))
		overlay = &graph.GraphOverlay{VisitedNodes: path, CurrentNode: path[len(path)-1]}
	}

	var out string
	switch format := r.URL.Query().Get("format"); format {
	case "", "mermaid":
		out = graph.GenerateMermaid(a, overlay)
	case "dot":
		out = graph.GenerateDOT(a, overlay)
	case "markdown", "md":
		out = graph.GenerateMarkdown("", a)
	default:
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("unknown graph format %q", format)})
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, out)
}

// Classify handles the POST /classify request.
func (s *Server) Classify(w http.ResponseWriter, r *http.Request) {
	var body ClassifyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.MaxBodySize)).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		s.Logger.Warn("Classify: Invalid request body", "err", err)
		return
	}

	symbols := domain.Symbols(body.Symbols...)
	if body.Symbols == nil {
		symbols = compiler.ParseSymbols(body.Input)
	}

	accepted, err := s.Engine.Classify(r.Context(), symbols)
	resp := ClassifyResponse{Verdict: runner.VerdictReject, Accepted: accepted}
	if accepted {
		resp.Verdict = runner.VerdictAccept
	}
	if body.Trace {
		if a, cerr := s.Engine.Current(); cerr == nil {
			resp.Trace, _ = a.Trace(symbols)
		}
	}
	if err != nil {
		resp.Error = err.Error()
		writeJSON(w, statusFor(err), resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ClassifyBatch handles the POST /classify/batch request.
// The body holds one comma separated input per line; the reply is NDJSON in input order.
// ?policy= and ?workers= map to the runner options.
func (s *Server) ClassifyBatch(w http.ResponseWriter, r *http.Request) {
	policy, err := runner.ParsePolicy(r.URL.Query().Get("policy"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	workers := 1
	if raw := r.URL.Query().Get("workers"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "workers must be a positive integer"})
			return
		}
		workers = n
	}

	var buf bytes.Buffer
	run := runner.New(s.Engine,
		runner.WithPolicy(policy),
		runner.WithWorkers(workers),
		runner.WithLogger(s.Logger),
	)
	sum, err := run.Run(r.Context(), http.MaxBytesReader(w, r.Body, s.MaxBodySize), runner.NewJSONHandler(&buf))

	var batchErr *runner.BatchError
	if err != nil && !errors.As(err, &batchErr) {
		writeJSON(w, statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("X-Total", fmt.Sprint(sum.Total))
	w.Header().Set("X-Accepted", fmt.Sprint(sum.Accepted))
	w.Header().Set("X-Failed", fmt.Sprint(sum.Failed))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Reload handles the POST /reload request.
func (s *Server) Reload(w http.ResponseWriter, r *http.Request) {
	a, err := s.Engine.Load(r.Context())
	if err != nil {
		s.Logger.Warn("Reload failed", "err", err)
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"states":  len(a.States()),
		"symbols": len(a.Alphabet()),
	})
}

// SubscribeEvents handles the GET /events request (SSE).
// Every load attempt observed by the StreamManager hooks is pushed as a JSON event.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Debug("SSE client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: load\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) current(w http.ResponseWriter) (*domain.Automaton, bool) {
	a, err := s.Engine.Current()
	if err != nil {
		writeJSON(w, statusFor(err), ErrorResponse{Error: err.Error()})
		return nil, false
	}
	return a, true
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrNotLoaded):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrMissingTransition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
