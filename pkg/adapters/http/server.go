// Package http exposes a WizardEngine as a JSON API on a chi router.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/ports"
	"github.com/aretw0/stitch/pkg/sanitize"
)

// SessionHeader carries the caller's session id.
const SessionHeader = "X-Session-ID"

// DefaultSessionCookie is used when no session id header is sent.
const DefaultSessionCookie = "stitch_session"

// maxBodyBytes bounds submitted step payloads.
const maxBodyBytes = 1 << 20

// Server serves the wizard routes.
type Server struct {
	Engine ports.WizardEngine
	Logger *slog.Logger
	Cookie string
}

// Option configures the handler.
type Option func(*handlerConfig)

type handlerConfig struct {
	logger  *slog.Logger
	cookie  string
	metrics http.Handler
	path    string
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *handlerConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSessionCookie renames the session cookie.
func WithSessionCookie(name string) Option {
	return func(c *handlerConfig) {
		if name != "" {
			c.cookie = name
		}
	}
}

// WithMetrics mounts a metrics handler (e.g. Prometheus) at path.
func WithMetrics(path string, handler http.Handler) Option {
	return func(c *handlerConfig) {
		c.path = path
		c.metrics = handler
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine ports.WizardEngine, opts ...Option) http.Handler {
	cfg := &handlerConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		cookie: DefaultSessionCookie,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &Server{Engine: engine, Logger: cfg.logger, Cookie: cfg.cookie}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/wizards", s.ListWizards)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawOpenAPI)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	if cfg.metrics != nil && cfg.path != "" {
		r.Method(http.MethodGet, cfg.path, cfg.metrics)
	}

	r.Route("/wizard/{wizardID}", func(r chi.Router) {
		r.Get("/", s.Show)
		r.Post("/finalize", s.Finalize)
		r.Get("/step/{stepKey}", s.ShowStep)
		r.Post("/step/{stepKey}", s.SubmitStep)
		r.Post("/step/{stepKey}/back", s.Back)
	})

	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+SessionHeader)
		w.Header().Set("Access-Control-Expose-Headers", SessionHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type wizardSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Steps       int    `json:"steps"`
}

// ListWizards handles GET /wizards.
func (s *Server) ListWizards(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Engine.Wizards()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	wizards := make([]wizardSummary, 0, len(ids))
	for _, id := range ids {
		def, err := s.Engine.Definition(id)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		wizards = append(wizards, wizardSummary{
			ID:          def.ID,
			Title:       def.Title,
			Description: def.Description,
			Steps:       len(def.Steps),
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"wizards": wizards})
}

// Show handles GET /wizard/{wizardID}: the entry point renders the first step.
func (s *Server) Show(w http.ResponseWriter, r *http.Request) {
	sessionID := s.session(w, r)
	view, err := s.Engine.Render(r.Context(), sessionID, chi.URLParam(r, "wizardID"), "")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// ShowStep handles GET /wizard/{wizardID}/step/{stepKey}.
func (s *Server) ShowStep(w http.ResponseWriter, r *http.Request) {
	sessionID := s.session(w, r)
	view, err := s.Engine.Render(r.Context(), sessionID, chi.URLParam(r, "wizardID"), chi.URLParam(r, "stepKey"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

type submitResponse struct {
	*domain.SubmitResult
	Finalize string `json:"finalize,omitempty"`
}

// SubmitStep handles POST /wizard/{wizardID}/step/{stepKey}.
func (s *Server) SubmitStep(w http.ResponseWriter, r *http.Request) {
	sessionID := s.session(w, r)
	wizardID := chi.URLParam(r, "wizardID")

	input, err := decodeInput(r)
	if err != nil {
		s.Logger.Warn("SubmitStep: invalid request body", "err", err, "wizard", wizardID)
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	result, err := s.Engine.Submit(r.Context(), sessionID, wizardID, chi.URLParam(r, "stepKey"), input)
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		s.writeJSON(w, http.StatusUnprocessableEntity, submitResponse{SubmitResult: result})
		return
	case err != nil:
		s.fail(w, r, err)
		return
	}

	resp := submitResponse{SubmitResult: result}
	if result.Status == domain.SubmitCompleted {
		resp.Finalize = "/wizard/" + url.PathEscape(wizardID) + "/finalize"
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// Back handles POST /wizard/{wizardID}/step/{stepKey}/back.
func (s *Server) Back(w http.ResponseWriter, r *http.Request) {
	sessionID := s.session(w, r)
	view, err := s.Engine.Back(r.Context(), sessionID, chi.URLParam(r, "wizardID"), chi.URLParam(r, "stepKey"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// Finalize handles POST /wizard/{wizardID}/finalize.
func (s *Server) Finalize(w http.ResponseWriter, r *http.Request) {
	sessionID := s.session(w, r)
	wizardID := chi.URLParam(r, "wizardID")
	if err := s.Engine.Finalize(r.Context(), sessionID, wizardID); err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "finalized", "wizard_id": wizardID})
}

// session resolves the caller's session id from the header or cookie,
// minting a new one (and setting the cookie) when neither is present.
func (s *Server) session(w http.ResponseWriter, r *http.Request) string {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		if c, err := r.Cookie(s.Cookie); err == nil {
			id = c.Value
		}
	}
	if id == "" {
		id = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     s.Cookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	w.Header().Set(SessionHeader, id)
	return id
}

// decodeInput reads a JSON object, a urlencoded or a multipart form and sanitizes every
// string in it. Repeated form keys become lists.
func decodeInput(r *http.Request) (domain.Values, error) {
	input, err := readInput(r)
	if err != nil {
		return nil, err
	}
	return sanitize.Values(input)
}

func readInput(r *http.Request) (domain.Values, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		return formValues(r.PostForm), nil
	case "multipart/form-data":
		// File parts are not read; uploads are not part of wizard state.
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, err
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()
		return formValues(r.MultipartForm.Value), nil
	}

	input := domain.Values{}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&input); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Values{}, nil
		}
		return nil, err
	}
	return input, nil
}

func formValues(form map[string][]string) domain.Values {
	input := make(domain.Values, len(form))
	for k, vals := range form {
		if len(vals) == 1 {
			input[k] = vals[0]
			continue
		}
		list := make([]any, len(vals))
		for i, v := range vals {
			list[i] = v
		}
		input[k] = list
	}
	return input
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if domain.IsNotFound(err) {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	var cerr *domain.ConfigurationError
	if errors.As(err, &cerr) {
		s.Logger.Error("wizard configuration error", "err", err, "path", r.URL.Path)
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.Logger.Error("request failed", "err", err, "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()))
	s.writeError(w, http.StatusInternalServerError, "internal error")
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "err", err)
	}
}
