package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Heyniki07/Wild-Watch-YOLO-based-object-detection/internal/geo"
	"github.com/Heyniki07/Wild-Watch-YOLO-based-object-detection/internal/storage"
)

type registerRequest struct {
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Latitude    float64         `json:"lat"`
	Longitude   float64         `json:"lon"`
	RadiusKM    float64         `json:"radius_km"`
	Preferences map[string]bool `json:"preferences"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "missing name or email")
		return
	}
	if req.RadiusKM <= 0 {
		req.RadiusKM = s.cfg.DefaultRadius
	}

	user, accessKey, err := s.store.CreateUser(r.Context(),
		req.Name, req.Email, req.Latitude, req.Longitude, req.RadiusKM, req.Preferences)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		s.log.WithError(err).Error("failed to register user")
		writeError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	s.log.WithFields(logrus.Fields{
		"userId": user.ID,
		"email":  user.Email,
	}).Info("user registered")

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":    user.ID,
		"name":       user.Name,
		"email":      user.Email,
		"access_key": accessKey,
	})
}

type createSessionRequest struct {
	AccessKey string `json:"access_key"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccessKey == "" {
		writeError(w, http.StatusBadRequest, "missing access key")
		return
	}

	user, err := s.store.UserByAccessKey(r.Context(), req.AccessKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid access key")
			return
		}
		s.log.WithError(err).Error("failed to look up access key")
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	token, expiresAt := s.sessions.Create(user.ID)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":      token,
		"expires_at": expiresAt,
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.Delete(bearerToken(r))
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	userID := sessionUserID(r)

	user, err := s.store.GetUser(r.Context(), userID)
	if err != nil {
		s.log.WithError(err).Error("failed to load user")
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	profile, err := s.store.GetProfile(r.Context(), userID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.log.WithError(err).Error("failed to load profile")
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":    user,
		"profile": profile,
	})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var p storage.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if p.AreaType != "" && p.AreaType != "rural" && p.AreaType != "semi-urban" && p.AreaType != "urban" {
		writeError(w, http.StatusBadRequest, "invalid area_type")
		return
	}

	p.UserID = sessionUserID(r)
	if err := s.store.UpdateProfile(r.Context(), p); err != nil {
		s.log.WithError(err).Error("failed to update profile")
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "profile saved"})
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.store.AlertsForUser(r.Context(), sessionUserID(r), s.cfg.AlertsLimit)
	if err != nil {
		s.log.WithError(err).Error("failed to load alerts")
		writeError(w, http.StatusInternalServerError, "failed to load alerts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts})
}

type ingestRequest struct {
	Species    string   `json:"species"`
	Latitude   *float64 `json:"lat"`
	Longitude  *float64 `json:"lon"`
	Confidence *float64 `json:"confidence"`
}

func (s *Server) handleIngestDetection(w http.ResponseWriter, r *http.Request) {
	if !s.ingestLimit.Allow() {
		writeError(w, http.StatusTooManyRequests, "too many detection reports")
		return
	}

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Species = strings.ToLower(strings.TrimSpace(req.Species))
	if req.Species == "" || req.Latitude == nil || req.Longitude == nil {
		writeError(w, http.StatusBadRequest, "missing species, latitude, or longitude")
		return
	}

	userID := sessionUserID(r)
	detectionID, err := s.store.InsertDetection(r.Context(), storage.Detection{
		Species:    req.Species,
		Latitude:   *req.Latitude,
		Longitude:  *req.Longitude,
		Confidence: req.Confidence,
		DetectedAt: time.Now().UTC(),
		UserID:     &userID,
	})
	if err != nil {
		s.log.WithError(err).Error("failed to record detection")
		writeError(w, http.StatusInternalServerError, "failed to record detection")
		return
	}

	created, err := s.store.CreateAlertsForDetection(r.Context(), detectionID, *req.Latitude, *req.Longitude)
	if err != nil {
		s.log.WithError(err).Error("failed to fan out alerts")
		writeError(w, http.StatusInternalServerError, "failed to create alerts")
		return
	}

	s.log.WithFields(logrus.Fields{
		"detectionId":   detectionID,
		"species":       req.Species,
		"alertsCreated": created,
	}).Info("detection ingested")

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"detection_id":   detectionID,
		"alerts_created": created,
	})
}

func (s *Server) handleNearestAuthority(w http.ResponseWriter, r *http.Request) {
	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if latErr != nil || lonErr != nil {
		writeError(w, http.StatusBadRequest, "invalid latitude or longitude")
		return
	}

	nearest := geo.Nearest(lat, lon, geo.WCCBCenters)
	writeJSON(w, http.StatusOK, map[string]interface{}{"nearest": nearest})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.SpeciesCounts(r.Context(), sessionUserID(r))
	if err != nil {
		s.log.WithError(err).Error("failed to load stats")
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"stats": counts})
}
