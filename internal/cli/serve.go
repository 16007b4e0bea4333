package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lanegraph/internal/config"
	"github.com/matzehuels/lanegraph/pkg/buildinfo"
	"github.com/matzehuels/lanegraph/pkg/errors"
	"github.com/matzehuels/lanegraph/pkg/graph"
	pkgio "github.com/matzehuels/lanegraph/pkg/io"
	"github.com/matzehuels/lanegraph/pkg/observability"
	"github.com/matzehuels/lanegraph/pkg/pipeline"
)

// requestIDHeader carries the per-request uuid in both directions.
const requestIDHeader = "X-Request-ID"

// shutdownTimeout bounds how long in-flight requests may finish after a signal.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the HTTP service command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the validation HTTP service",
		Long: `Serve exposes validation and building over HTTP:

  GET  /healthz       liveness and version
  POST /v1/validate   description in, diagnostics out
  POST /v1/build      description in, normalized nodes out

Query parameters: strict, refresh (booleans), enable, disable (rule names,
comma-separated). Bodies are JSON unless Content-Type names YAML.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.settings().Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.ServerConfig) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()
	observability.SetServerHooks(observability.NewLogHooks(logger))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewServer(runner, logger, cfg, c.pipelineOptions(nil, nil)).Handler(),
		ReadHeaderTimeout: cfg.ReadTimeout.Duration,
		ReadTimeout:       cfg.ReadTimeout.Duration,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr, "version", buildinfo.Version)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// =============================================================================
// Server
// =============================================================================

// Server serves the pipeline over HTTP. It is safe for concurrent use.
type Server struct {
	runner   *pipeline.Runner
	logger   *log.Logger
	defaults pipeline.Options
	maxBody  int64
	router   chi.Router
}

// NewServer wires routes and middleware. defaults supplies rule toggles and
// strictness that query parameters override per request.
func NewServer(runner *pipeline.Runner, logger *log.Logger, cfg config.ServerConfig, defaults pipeline.Options) *Server {
	s := &Server{
		runner:   runner,
		logger:   logger,
		defaults: defaults,
		maxBody:  cfg.MaxBodyBytes,
	}
	if s.maxBody <= 0 {
		s.maxBody = config.Default().Server.MaxBodyBytes
	}

	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/validate", s.handleValidate)
		r.Post("/build", s.handleBuild)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})

	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// =============================================================================
// Middleware
// =============================================================================

type requestIDKey struct{}

// requestID reuses a client-supplied uuid or mints one, echoes it in the
// response, and attaches a request-scoped logger to the context.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		ctx = withLogger(ctx, s.logger.With("request_id", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.Server()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, elapsed)
		loggerFromContext(r.Context()).Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", elapsed.Round(time.Microsecond))
	})
}

// =============================================================================
// Handlers
// =============================================================================

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

type validateResponse struct {
	ID          string             `json:"id"`
	Valid       bool               `json:"valid"`
	Diagnostics []graph.Diagnostic `json:"diagnostics"`
	Cached      bool               `json:"cached"`
}

type buildResponse struct {
	ID          string             `json:"id"`
	Nodes       []graph.NodeDesc   `json:"nodes,omitempty"`
	Links       int                `json:"links"`
	Valid       *bool              `json:"valid,omitempty"`
	Diagnostics []graph.Diagnostic `json:"diagnostics,omitempty"`
	Error       *errorBody         `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	desc, opts, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	report, hit, err := s.runner.ValidateWithCacheInfo(r.Context(), desc, opts)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	diags := report.Diagnostics
	if diags == nil {
		diags = []graph.Diagnostic{}
	}
	writeJSON(w, http.StatusOK, validateResponse{
		ID:          requestIDFrom(r.Context()),
		Valid:       report.Valid,
		Diagnostics: diags,
		Cached:      hit,
	})
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	desc, opts, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	resp := buildResponse{ID: requestIDFrom(r.Context())}
	result, err := s.runner.Execute(r.Context(), desc, opts)
	if result != nil && result.Report != nil {
		valid := result.Report.Valid
		resp.Valid = &valid
		resp.Diagnostics = result.Report.Diagnostics
	}
	if err != nil {
		resp.Error = &errorBody{Code: codeOf(err), Message: errors.UserMessage(err)}
		writeJSON(w, statusFor(err), resp)
		return
	}

	resp.Nodes = graph.Describe(result.Graph).Nodes
	resp.Links = result.Stats.LinkCount
	writeJSON(w, http.StatusOK, resp)
}

// decodeRequest reads the body and query options, writing a 4xx on failure.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (*graph.Description, pipeline.Options, bool) {
	opts, err := s.options(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, opts, false
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				errors.New(errors.ErrCodeInvalidInput, "body exceeds %d bytes", tooLarge.Limit))
			return nil, opts, false
		}
		writeError(w, http.StatusBadRequest, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
		return nil, opts, false
	}
	if len(bytes.TrimSpace(data)) == 0 {
		writeError(w, http.StatusBadRequest, errors.New(errors.ErrCodeInvalidInput, "empty body"))
		return nil, opts, false
	}

	format := pkgio.FormatJSON
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		format = pkgio.FormatYAML
	}
	desc, err := pkgio.ReadBytes(data, format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, opts, false
	}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, opts, false
	}
	opts.Logger = loggerFromContext(r.Context())
	return desc, opts, true
}

// options overlays query parameters on the server defaults.
func (s *Server) options(r *http.Request) (pipeline.Options, error) {
	opts := pipeline.Options{
		Strict: s.defaults.Strict,
		Rules:  make(map[string]bool, len(s.defaults.Rules)),
	}
	for name, on := range s.defaults.Rules {
		opts.Rules[name] = on
	}

	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *bool
	}{
		{"strict", &opts.Strict},
		{"refresh", &opts.Refresh},
	} {
		if v := q.Get(p.name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return opts, errors.New(errors.ErrCodeInvalidInput, "query %s=%q: want a boolean", p.name, v)
			}
			*p.dst = b
		}
	}
	for _, name := range splitList(q["enable"]) {
		opts.Rules[name] = true
	}
	for _, name := range splitList(q["disable"]) {
		opts.Rules[name] = false
	}
	return opts, nil
}

// splitList flattens repeated and comma-separated query values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// =============================================================================
// Responses
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]errorBody{
		"error": {Code: codeOf(err), Message: errors.UserMessage(err)},
	})
}

func codeOf(err error) errors.Code {
	if code := errors.GetCode(err); code != "" {
		return code
	}
	return errors.ErrCodeInternal
}

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeInvalidDescription, errors.ErrCodeDanglingNeighbour, errors.ErrCodeSlotOutOfRange:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeCache:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
