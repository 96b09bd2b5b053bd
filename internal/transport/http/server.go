// package http implements the HTTP transport layer for the service.
// It serves the balance REST endpoints and the websocket subscription,
// and maps service errors to HTTP responses.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sprintsense/balance-service/internal/apperrors"
	"github.com/sprintsense/balance-service/internal/config"
	"github.com/sprintsense/balance-service/internal/repository"
	"github.com/sprintsense/balance-service/internal/service"
	"github.com/sprintsense/balance-service/internal/transport/ws"
	"github.com/sprintsense/balance-service/internal/validation"
	"github.com/sprintsense/balance-service/pkg/logger/sl"
	"github.com/sprintsense/balance-service/swagger"
)

const maxBodyBytes = 4 << 20

// Server holds the dependencies for the HTTP server.
type Server struct {
	log            *slog.Logger
	balanceService service.BalanceService
	health         repository.HealthChecker
	hub            *ws.Hub
	upgrader       websocket.Upgrader
	wsWriteTimeout time.Duration
	wsPongWait     time.Duration
	wsPingPeriod   time.Duration
	wsReadLimit    int64
}

// NewServer creates a new instance of the HTTP server. health may be nil,
// in which case /health reports only that the process is up.
func NewServer(
	log *slog.Logger,
	bs service.BalanceService,
	health repository.HealthChecker,
	hub *ws.Hub,
	cfg config.WebSocket,
) *Server {
	s := &Server{
		log:            log,
		balanceService: bs,
		health:         health,
		hub:            hub,
		wsWriteTimeout: cfg.WriteTimeout,
		wsPongWait:     cfg.PongWait,
		wsPingPeriod:   cfg.PingPeriod,
		wsReadLimit:    cfg.MaxMessageBytes,
	}

	// Pings must go out before the peer's read deadline expires.
	if s.wsPongWait > 0 && (s.wsPingPeriod <= 0 || s.wsPingPeriod >= s.wsPongWait) {
		s.wsPingPeriod = s.wsPongWait * 9 / 10
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
	}

	return s
}

// Routes sets up the router with all middleware and endpoints.
func (s *Server) Routes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(s.requestID)
	mux.Use(s.logRequest)
	mux.Use(s.metricsMiddleware)

	mux.Get("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Mount("/swagger", http.StripPrefix("/swagger", swagger.Handler()))

	mux.Get("/sprints/{sprint_id}/balance", s.handleGetSprintBalance)
	mux.Post("/sprints/{sprint_id}/balance/refresh", s.handleRefreshSprintBalance)
	mux.Post("/balance/analyze", s.handleAnalyzeBalance)

	mux.Get("/ws/sprints/{sprint_id}/balance", s.handleBalanceSocket)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.handleHealth"

	if s.health != nil {
		if err := s.health.Ping(r.Context()); err != nil {
			s.log.Error("health check failed", slog.String("op", op), sl.Err(err))
			s.respond(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})

			return
		}
	}

	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetSprintBalance(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.handleGetSprintBalance"

	sprintID, err := sprintIDParam(r)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	metrics, err := s.balanceService.GetSprintBalance(r.Context(), sprintID)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, metrics)
}

func (s *Server) handleRefreshSprintBalance(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.handleRefreshSprintBalance"

	sprintID, err := sprintIDParam(r)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	metrics, err := s.balanceService.RefreshSprintBalance(r.Context(), sprintID)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	if s.hub != nil {
		delivered := s.hub.Broadcast(sprintID.String(), ws.Message{Type: ws.TypeBalanceUpdate, Data: metrics})
		s.log.Debug("balance refresh broadcast",
			slog.String("op", op),
			slog.String("sprint_id", sprintID.String()),
			slog.Int("delivered", delivered),
		)
	}

	s.respond(w, http.StatusOK, metrics)
}

func (s *Server) handleAnalyzeBalance(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.handleAnalyzeBalance"

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req analyzeRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	metrics, err := s.balanceService.AnalyzeBalance(r.Context(), req.SprintID, req.TeamCapacity, req.WorkItems)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, metrics)
}

// sprintIDParam binds the sprint_id path segment as a UUID.
func sprintIDParam(r *http.Request) (uuid.UUID, error) {
	var id uuid.UUID

	err := runtime.BindStyledParameterWithOptions("simple", "sprint_id", chi.URLParam(r, "sprint_id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: sprint_id must be a UUID", apperrors.ErrInvalidParameter)
	}

	return id, nil
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}

	if slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// respond is a helper function to encode data to JSON and write it to the response.
// It centralizes setting the Content-Type header and writing the status code.
func (s *Server) respond(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.log.Error("failed to encode response", sl.Err(err))
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, code int, message string) {
	s.respond(w, code, map[string]string{"error": message})
}

// decodeAndValidate is a helper that deserializes a JSON request body into a struct
// and then runs validation checks on it.
func (s *Server) decodeAndValidate(r *http.Request, v any) error {
	if err := s.decode(r.Body, v); err != nil {
		return err
	}

	return validation.ValidateStruct(v)
}

func (s *Server) decode(body io.ReadCloser, v any) error {
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidRequest, err)
	}

	return nil
}

// classifyError maps an error to the status code and the message that is
// safe to show a client.
func classifyError(err error) (int, string) {
	var (
		validationErr *validation.ValidationError
		analysisErr   *apperrors.BalanceAnalysisError
	)

	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity, fmt.Sprintf("%s: %s", apperrors.ErrValidation, err)
	case errors.Is(err, apperrors.ErrInvalidParameter):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrInvalidRequest):
		return http.StatusBadRequest, apperrors.ErrInvalidRequest.Error()
	case errors.As(err, &analysisErr):
		return http.StatusBadRequest, analysisErr.Error()
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "sprint not found"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// handleServiceError provides centralized error handling for all HTTP handlers.
// It logs the internal error and maps it to a user-friendly HTTP response.
func (s *Server) handleServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	log := s.log.With(slog.String("op", op), slog.String("request_id", getRequestID(r.Context())))

	code, message := classifyError(err)
	if code >= http.StatusInternalServerError {
		log.Error("service error occurred", sl.Err(err))
	} else {
		log.Warn("request rejected", slog.Int("status", code), sl.Err(err))
	}

	s.respondError(w, code, message)
}
