package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/weddingplanner/internal/auth"
	"github.com/Kerhoff/weddingplanner/internal/metrics"
	"github.com/Kerhoff/weddingplanner/internal/models"
	"github.com/Kerhoff/weddingplanner/internal/planner"
	"github.com/Kerhoff/weddingplanner/internal/service"
)

// PlanGenerator produces and stores a plan for a wedding.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, userID, weddingID uuid.UUID, attrs planner.WeddingAttributes) (*models.Plan, error)
}

// Server provides the HTTP API.
type Server struct {
	svc       *service.Service
	generator PlanGenerator
	tokens    *auth.TokenManager
	metrics   *metrics.Metrics
	logger    *logrus.Logger
	mux       *http.ServeMux
}

// NewServer creates a Server, registers all routes, and returns it. m may be
// nil.
func NewServer(svc *service.Service, generator PlanGenerator, tokens *auth.TokenManager, m *metrics.Metrics, logger *logrus.Logger) *Server {
	s := &Server{
		svc:       svc,
		generator: generator,
		tokens:    tokens,
		metrics:   m,
		logger:    logger,
		mux:       http.NewServeMux(),
	}
	s.routes()
	return s
}

// Handler returns the http.Handler that can be passed to http.Server.
func (s *Server) Handler() http.Handler {
	return s.instrument(s.mux)
}

// ---------------------------------------------------------------------------
// Routes
// ---------------------------------------------------------------------------

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	// API – Profile
	s.mux.HandleFunc("GET /api/auth/me", s.authed(s.handleMe))
	s.mux.HandleFunc("PUT /api/me/telegram", s.authed(s.handleLinkTelegram))

	// API – Weddings and plans
	s.mux.HandleFunc("POST /api/wedding", s.authed(s.handleUpsertWedding))
	s.mux.HandleFunc("GET /api/wedding", s.authed(s.handleGetWeddings))
	s.mux.HandleFunc("DELETE /api/wedding/{id}", s.authed(s.handleDeleteWedding))
	s.mux.HandleFunc("POST /api/wedding/plan", s.authed(s.handleGeneratePlan))
	s.mux.HandleFunc("GET /api/wedding/{id}/plan", s.authed(s.handleGetPlan))

	// API – Tasks
	s.mux.HandleFunc("POST /api/tasks", s.authed(s.handleCreateTask))
	s.mux.HandleFunc("PATCH /api/tasks/{id}", s.authed(s.handleUpdateTask))
	s.mux.HandleFunc("DELETE /api/tasks", s.authed(s.handleDeleteTask))

	// API – Partner
	s.mux.HandleFunc("GET /api/invitations", s.authed(s.handleGetInvitations))
	s.mux.HandleFunc("POST /api/invitations", s.authed(s.handleCreateInvitation))
	s.mux.HandleFunc("POST /api/invitations/{action}", s.authed(s.handleInvitationAction))
	s.mux.HandleFunc("GET /api/partner", s.authed(s.handleGetPartner))
	s.mux.HandleFunc("POST /api/partner", s.authed(s.handleUnlinkPartner))

	// API – Vendors (public)
	s.mux.HandleFunc("POST /api/vendor-interest", s.handleVendorInterest)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ---------------------------------------------------------------------------
// JSON helpers
// ---------------------------------------------------------------------------

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.WithError(err).Error("failed to encode JSON response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads the request body into dst and returns an error message on
// failure.  The caller should return immediately when ok == false.
func (s *Server) decodeJSON(r *http.Request, dst any) (ok bool, errMsg string) {
	if r.Body == nil {
		return false, "request body is empty"
	}
	if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)).Decode(dst); err != nil {
		return false, fmt.Sprintf("invalid JSON: %v", err)
	}
	return true, ""
}

// pathID extracts the {id} path value as a UUID.
func pathID(r *http.Request) (uuid.UUID, error) {
	raw := r.PathValue("id")
	if raw == "" {
		return uuid.Nil, fmt.Errorf("missing id in path")
	}
	return uuid.Parse(raw)
}

// ---------------------------------------------------------------------------
// Middleware
// ---------------------------------------------------------------------------

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument records the route, status and latency of every request.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		s.metrics.RecordHTTP(route, rec.status, elapsed)
		s.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"route":    route,
			"status":   rec.status,
			"duration": elapsed.String(),
		}).Debug("HTTP request")
	})
}

type userHandler func(w http.ResponseWriter, r *http.Request, user *models.User)

// authed verifies the session token and loads the caller before calling h.
func (s *Server) authed(h userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.FromRequest(r)
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		identity, err := s.tokens.Verify(token)
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		user, err := s.svc.Users.GetByID(r.Context(), identity.UserID)
		if err != nil {
			s.logger.WithError(err).Error("failed to load user")
			s.respondError(w, http.StatusInternalServerError, "failed to load user")
			return
		}
		if user == nil {
			s.respondError(w, http.StatusNotFound, "User not found")
			return
		}
		h(w, r, user)
	}
}
