// Package client implements the HTTP client for the Wild Watch alert API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Heyniki07/Wild-Watch-YOLO-based-object-detection/internal/alert"
	"github.com/Heyniki07/Wild-Watch-YOLO-based-object-detection/internal/geo"
)

// ErrUnauthenticated is returned when the server authoritatively rejects
// the session. It is distinguishable from transport failures so callers
// can stop polling instead of retrying.
var ErrUnauthenticated = errors.New("session is not authenticated")

// ErrMalformedResponse is returned when the server replies with an
// unexpected payload shape.
var ErrMalformedResponse = errors.New("malformed server response")

// APIClient handles communication with the Wild Watch alert API.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
	log        *logrus.Logger
}

// New creates a new API client for the given base URL.
func New(baseURL string, log *logrus.Logger) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// SetToken installs the session token used on authenticated requests.
func (c *APIClient) SetToken(token string) {
	c.token = token
}

// SessionResponse is the payload returned when a session is created.
type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AlertsResponse is the payload of the alerts endpoint.
type AlertsResponse struct {
	Alerts []alert.RawAlert `json:"alerts"`
}

// IngestResponse is the payload returned after reporting a detection.
type IngestResponse struct {
	DetectionID   int64 `json:"detection_id"`
	AlertsCreated int   `json:"alerts_created"`
}

// NearestResponse is the payload of the nearest-authority endpoint.
type NearestResponse struct {
	Nearest *geo.NearestAuthority `json:"nearest"`
}

// StatsResponse is the payload of the stats endpoint.
type StatsResponse struct {
	Stats map[string]int `json:"stats"`
}

type errorBody struct {
	Error string `json:"error"`
}

// CreateSession exchanges a user's access key for a session token and
// installs the token on the client.
func (c *APIClient) CreateSession(ctx context.Context, accessKey string) (*SessionResponse, error) {
	var session SessionResponse
	payload := map[string]string{"access_key": accessKey}
	if err := c.do(ctx, http.MethodPost, "/api/sessions", payload, &session); err != nil {
		return nil, err
	}
	c.token = session.Token
	return &session, nil
}

// EndSession invalidates the current session token server-side.
func (c *APIClient) EndSession(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/sessions", nil, nil)
}

// FetchAlerts retrieves the complete alert set for the current session.
// Returns ErrUnauthenticated when the server rejects the session and
// ErrMalformedResponse when the payload cannot be decoded.
func (c *APIClient) FetchAlerts(ctx context.Context) ([]alert.RawAlert, error) {
	var resp AlertsResponse
	if err := c.do(ctx, http.MethodGet, "/api/alerts", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Alerts, nil
}

// IngestDetection reports a detection to the server, which fans it out as
// alerts to every user within their configured radius.
func (c *APIClient) IngestDetection(ctx context.Context, species string, lat, lon float64, confidence float64) (*IngestResponse, error) {
	payload := map[string]interface{}{
		"species":    species,
		"lat":        lat,
		"lon":        lon,
		"confidence": confidence,
	}
	var resp IngestResponse
	if err := c.do(ctx, http.MethodPost, "/api/detections", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// NearestAuthority looks up the closest Wildlife Crime Control Bureau
// office to the given coordinates.
func (c *APIClient) NearestAuthority(ctx context.Context, lat, lon float64) (*geo.NearestAuthority, error) {
	path := fmt.Sprintf("/api/wccb?lat=%s&lon=%s",
		url.QueryEscape(fmt.Sprintf("%f", lat)),
		url.QueryEscape(fmt.Sprintf("%f", lon)))

	var resp NearestResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Nearest, nil
}

// FetchStats retrieves per-species alert counts for the current session.
func (c *APIClient) FetchStats(ctx context.Context) (map[string]int, error) {
	var resp StatsResponse
	if err := c.do(ctx, http.MethodGet, "/api/stats", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Stats, nil
}

// do executes a single request. No retry or backoff happens at this layer;
// the scheduler retries on its next tick.
func (c *APIClient) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body *bytes.Buffer
	if payload != nil {
		body = &bytes.Buffer{}
		if err := json.NewEncoder(body).Encode(payload); err != nil {
			return errors.Wrap(err, "failed to encode request payload")
		}
	}

	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to create %s request", path)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "request to %s failed", path)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Success, decode below
	case http.StatusUnauthorized:
		var eb errorBody
		if decodeErr := json.NewDecoder(resp.Body).Decode(&eb); decodeErr == nil && eb.Error != "" {
			c.log.WithField("path", path).Debug("server rejected session: " + eb.Error)
		}
		return ErrUnauthenticated
	case http.StatusTooManyRequests:
		return errors.Errorf("rate limit exceeded on %s (HTTP 429)", path)
	default:
		var eb errorBody
		if decodeErr := json.NewDecoder(resp.Body).Decode(&eb); decodeErr == nil && eb.Error != "" {
			return errors.Errorf("request to %s failed (HTTP %d): %s", path, resp.StatusCode, eb.Error)
		}
		return errors.Errorf("request to %s failed (HTTP %d)", path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(ErrMalformedResponse, "decoding %s response: %v", path, err)
	}
	return nil
}
