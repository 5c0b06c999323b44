// Package mcp exposes a WizardEngine as a Model Context Protocol server,
// so agents can fill wizards step by step.
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

	"github.com/aretw0/stitch"
	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/ports"
	"github.com/aretw0/stitch/pkg/sanitize"
)

// WizardURIPrefix prefixes the per-wizard definition resources.
const WizardURIPrefix = "stitch://wizards/"

// StepArgs addresses one step of a wizard instance.
type StepArgs struct {
	SessionID string `json:"session_id"`
	WizardID  string `json:"wizard_id"`
	StepKey   string `json:"step_key,omitempty"`
}

// SubmitArgs carries the values submitted for a step.
type SubmitArgs struct {
	StepArgs
	Values map[string]any `json:"values,omitempty"`
}

// WizardList is the output of list_wizards.
type WizardList struct {
	Wizards []string `json:"wizards" jsonschema_description:"Available wizard ids"`
}

// FinalizeResult is the output of finalize.
type FinalizeResult struct {
	WizardID  string `json:"wizard_id"`
	Finalized bool   `json:"finalized"`
}

// Server wraps a WizardEngine and exposes it as an MCP server.
type Server struct {
	engine    ports.WizardEngine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for tool calls.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.WizardEngine, opts ...Option) *Server {
	s := &Server{
		engine: engine,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		mcpServer: server.NewMCPServer("stitch-mcp", strings.TrimSpace(stitch.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the protocol over SSE on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
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

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_wizards",
		mcp.WithDescription("List the wizards that can be started."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOutputSchema[WizardList](),
	), mcp.NewStructuredToolHandler(s.handleList))

	s.mcpServer.AddTool(mcp.NewTool("render_step",
		mcp.WithDescription("Render a wizard step with its visible fields, stored values and progress. Omit step_key to render the first step."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Caller session id")),
		mcp.WithString("wizard_id", mcp.Required(), mcp.Description("Wizard id")),
		mcp.WithString("step_key", mcp.Description("Step key (optional)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOutputSchema[domain.StepView](),
	), mcp.NewStructuredToolHandler(s.handleRender))

	s.mcpServer.AddTool(mcp.NewTool("submit_step",
		mcp.WithDescription("Validate and store the values of a step. Returns the next step, or the same step with field errors."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Caller session id")),
		mcp.WithString("wizard_id", mcp.Required(), mcp.Description("Wizard id")),
		mcp.WithString("step_key", mcp.Required(), mcp.Description("Step key")),
		mcp.WithObject("values", mcp.Description("Field values keyed by field key")),
		mcp.WithOutputSchema[domain.SubmitResult](),
	), mcp.NewStructuredToolHandler(s.handleSubmit))

	s.mcpServer.AddTool(mcp.NewTool("go_back",
		mcp.WithDescription("Render the step before step_key. Stored values are kept."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Caller session id")),
		mcp.WithString("wizard_id", mcp.Required(), mcp.Description("Wizard id")),
		mcp.WithString("step_key", mcp.Required(), mcp.Description("Current step key")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOutputSchema[domain.StepView](),
	), mcp.NewStructuredToolHandler(s.handleBack))

	s.mcpServer.AddTool(mcp.NewTool("finalize",
		mcp.WithDescription("Finish a wizard and discard its stored values."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Caller session id")),
		mcp.WithString("wizard_id", mcp.Required(), mcp.Description("Wizard id")),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithOutputSchema[FinalizeResult](),
	), mcp.NewStructuredToolHandler(s.handleFinalize))
}

func (s *Server) handleList(ctx context.Context, _ mcp.CallToolRequest, _ struct{}) (WizardList, error) {
	ids, err := s.engine.Wizards()
	if err != nil {
		return WizardList{}, fmt.Errorf("list failed: %w", err)
	}
	return WizardList{Wizards: ids}, nil
}

func (s *Server) handleRender(ctx context.Context, _ mcp.CallToolRequest, args StepArgs) (*domain.StepView, error) {
	if err := args.require(false); err != nil {
		return nil, err
	}
	view, err := s.engine.Render(ctx, args.SessionID, args.WizardID, args.StepKey)
	if err != nil {
		return nil, fmt.Errorf("render failed: %w", err)
	}
	return view, nil
}

func (s *Server) handleSubmit(ctx context.Context, _ mcp.CallToolRequest, args SubmitArgs) (*domain.SubmitResult, error) {
	if err := args.require(true); err != nil {
		return nil, err
	}
	input, err := sanitize.Values(args.Values)
	if err != nil {
		return nil, fmt.Errorf("invalid values: %w", err)
	}

	result, err := s.engine.Submit(ctx, args.SessionID, args.WizardID, args.StepKey, input)
	var verr *domain.ValidationError
	if errors.As(err, &verr) && result != nil {
		// Field errors are part of the result, not a tool failure.
		s.logger.Debug("MCP submit rejected", "wizard", args.WizardID, "step", args.StepKey, "fields", verr.Fields.Keys())
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("submit failed: %w", err)
	}
	return result, nil
}

func (s *Server) handleBack(ctx context.Context, _ mcp.CallToolRequest, args StepArgs) (*domain.StepView, error) {
	if err := args.require(true); err != nil {
		return nil, err
	}
	view, err := s.engine.Back(ctx, args.SessionID, args.WizardID, args.StepKey)
	if err != nil {
		return nil, fmt.Errorf("back failed: %w", err)
	}
	return view, nil
}

func (s *Server) handleFinalize(ctx context.Context, _ mcp.CallToolRequest, args StepArgs) (FinalizeResult, error) {
	if err := args.require(false); err != nil {
		return FinalizeResult{}, err
	}
	if err := s.engine.Finalize(ctx, args.SessionID, args.WizardID); err != nil {
		return FinalizeResult{}, fmt.Errorf("finalize failed: %w", err)
	}
	return FinalizeResult{WizardID: args.WizardID, Finalized: true}, nil
}

func (a StepArgs) require(step bool) error {
	switch {
	case a.SessionID == "":
		return errors.New("session_id is required")
	case a.WizardID == "":
		return errors.New("wizard_id is required")
	case step && a.StepKey == "":
		return errors.New("step_key is required")
	}
	return nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("stitch://wizards", "Available wizards",
		mcp.WithResourceDescription("Ids of every loaded wizard"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.engine.Wizards()
		if err != nil {
			return nil, fmt.Errorf("failed to list wizards: %w", err)
		}
		return jsonContents(request.Params.URI, ids)
	})

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(WizardURIPrefix+"{id}", "Wizard definition",
		mcp.WithTemplateDescription("Steps, fields and visibility rules of a wizard"),
		mcp.WithTemplateMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id := strings.TrimPrefix(request.Params.URI, WizardURIPrefix)
		def, err := s.engine.Definition(id)
		if err != nil {
			return nil, fmt.Errorf("failed to read wizard %q: %w", id, err)
		}
		return jsonContents(request.Params.URI, def)
	})
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
