package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/dfa"
	"github.com/aretw0/dfa/internal/compiler"
	"github.com/aretw0/dfa/internal/presentation/graph"
	"github.com/aretw0/dfa/pkg/domain"
)

// automatonURI names the resource holding the current definition.
const automatonURI = "dfa://automaton"

// ClassifyResult aligns with the HTTP API and provides a unified structure across adapters.
type ClassifyResult struct {
	Verdict  string   `json:"verdict" jsonschema_description:"accept or reject"`
	Accepted bool     `json:"accepted" jsonschema_description:"Whether the automaton ends in a final state"`
	Trace    []string `json:"trace,omitempty" jsonschema_description:"States visited, starting with the start state"`
	Error    string   `json:"error,omitempty" jsonschema_description:"Why the input could not be classified"`
}

// Engine defines what the MCP server needs from the dfa engine.
type Engine interface {
	Current() (*domain.Automaton, error)
	Classify(ctx context.Context, symbols []domain.Symbol) (bool, error)
	Load(ctx context.Context) (*domain.Automaton, error)
}

// Server wraps the dfa Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance. logger may be nil.
func NewServer(engine Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		engine:    engine,
		logger:    logger,
		mcpServer: server.NewMCPServer("dfa-mcp", strings.TrimSpace(dfa.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: classify
	classifyTool := mcp.NewTool("classify",
		mcp.WithDescription("Run the automaton over a comma separated list of symbols and report accept or reject."),
		mcp.WithString("input", mcp.Required(), mcp.Description("Symbols separated by commas, e.g. \"0,1,1\". Empty means the empty string.")),
		mcp.WithBoolean("trace", mcp.Description("Include the visited states")),
		mcp.WithOutputSchema[ClassifyResult](),
	)
	s.mcpServer.AddTool(classifyTool, mcp.NewStructuredToolHandler(s.handleClassify))

	// TOOL: describe
	s.mcpServer.AddTool(mcp.NewTool("describe",
		mcp.WithDescription("Describe the loaded automaton as a Markdown transition table."),
	), s.handleDescribe)

	// TOOL: graph
	s.mcpServer.AddTool(mcp.NewTool("graph",
		mcp.WithDescription("Render the loaded automaton as a diagram."),
		mcp.WithString("format", mcp.Description("mermaid (default) or dot")),
		mcp.WithString("input", mcp.Description("Optional input whose path is highlighted")),
	), s.handleGraph)

	// TOOL: reload
	s.mcpServer.AddTool(mcp.NewTool("reload",
		mcp.WithDescription("Reload the specification. On failure the previous automaton keeps serving."),
	), s.handleReload)
}

func (s *Server) handleClassify(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ClassifyResult, error) {
	input, _ := args["input"].(string)
	trace, _ := args["trace"].(bool)
	symbols := compiler.ParseSymbols(input)

	accepted, err := s.engine.Classify(ctx, symbols)
	if errors.Is(err, domain.ErrNotLoaded) {
		return ClassifyResult{}, err
	}

	res := ClassifyResult{Verdict: "reject", Accepted: accepted}
	if accepted {
		res.Verdict = "accept"
	}
	if err != nil {
		s.logger.Debug("MCP classify failed", "input", input, "err", err)
		res.Error = err.Error()
	}
	if trace {
		if a, cerr := s.engine.Current(); cerr == nil {
			res.Trace, _ = a.Trace(symbols)
		}
	}
	return res, nil
}

func (s *Server) handleDescribe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := s.engine.Current()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(graph.GenerateMarkdown("", a)), nil
}

func (s *Server) handleGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := s.engine.Current()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var overlay *graph.GraphOverlay
	if input := request.GetString("input", ""); input != "" {
		path, _ := a.Trace(compiler.ParseSymbols(input))
		overlay = &graph.GraphOverlay{VisitedNodes: path, CurrentNode: path[len(path)-1]}
	}

	switch format := request.GetString("format", "mermaid"); format {
	case "", "mermaid":
		return mcp.NewToolResultText(graph.GenerateMermaid(a, overlay)), nil
	case "dot":
		return mcp.NewToolResultText(graph.GenerateDOT(a, overlay)), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown graph format %q", format)), nil
	}
}

func (s *Server) handleReload(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := s.engine.Load(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reload failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("loaded %d states over %d symbols", len(a.States()), len(a.Alphabet()))), nil
}

func (s *Server) registerResources() {
	// EXPOSE: dfa://automaton
	s.mcpServer.AddResource(mcp.NewResource(automatonURI, "Current Automaton Definition",
		mcp.WithMIMEType("application/json"),
	), s.readAutomaton)
}

func (s *Server) readAutomaton(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	a, err := s.engine.Current()
	if err != nil {
		return nil, fmt.Errorf("failed to read automaton: %w", err)
	}
	jsonBytes, err := json.Marshal(a.Definition())
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      automatonURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
