// Package server implements the Wild Watch alert API daemon: registration,
// sessions, alert listing, detection ingest, stats, and the
// nearest-authority lookup.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/Heyniki07/Wild-Watch-YOLO-based-object-detection/internal/config"
	"github.com/Heyniki07/Wild-Watch-YOLO-based-object-detection/internal/storage"
)

// contextKey is the type for values stashed in request contexts.
type contextKey string

const userIDKey contextKey = "userID"

// Server wires the HTTP handlers to storage and sessions.
type Server struct {
	store       *storage.SQLiteStore
	sessions    *SessionStore
	log         *logrus.Logger
	cfg         config.ServerConfig
	ingestLimit *rate.Limiter
}

// New creates an API server.
func New(store *storage.SQLiteStore, sessions *SessionStore, cfg config.ServerConfig, log *logrus.Logger) *Server {
	return &Server{
		store:       store,
		sessions:    sessions,
		log:         log,
		cfg:         cfg,
		ingestLimit: rate.NewLimiter(rate.Limit(float64(cfg.IngestPerMin)/60.0), cfg.IngestBurst),
	}
}

// Handler builds the router with CORS and session middleware applied.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/api/users", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/sessions", s.handleCreateSession).Methods(http.MethodPost)
	r.HandleFunc("/api/wccb", s.handleNearestAuthority).Methods(http.MethodGet)

	authed := r.NewRoute().Subrouter()
	authed.Use(s.sessionRequired)
	authed.HandleFunc("/api/sessions", s.handleDeleteSession).Methods(http.MethodDelete)
	authed.HandleFunc("/api/me", s.handleMe).Methods(http.MethodGet)
	authed.HandleFunc("/api/profile", s.handleUpdateProfile).Methods(http.MethodPut)
	authed.HandleFunc("/api/alerts", s.handleAlerts).Methods(http.MethodGet)
	authed.HandleFunc("/api/detections", s.handleIngestDetection).Methods(http.MethodPost)
	authed.HandleFunc("/api/stats", s.handleStats).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.CorsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

// sessionRequired rejects requests without a live session token. The 401
// body is JSON so clients can tell an authoritative de-auth apart from a
// transport failure.
func (s *Server) sessionRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing session token")
			return
		}
		userID, ok := s.sessions.Lookup(token)
		if !ok {
			writeError(w, http.StatusUnauthorized, "session expired or invalid")
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):]
	}
	return ""
}

func sessionUserID(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey).(int64)
	return id
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
