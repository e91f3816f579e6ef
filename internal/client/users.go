package client

import (
	"context"
	"net/http"
)

// RegisterRequest is the payload for creating a new user and profile.
type RegisterRequest struct {
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Latitude    float64         `json:"lat"`
	Longitude   float64         `json:"lon"`
	RadiusKM    float64         `json:"radius_km"`
	Preferences map[string]bool `json:"preferences,omitempty"`
}

// RegisterResponse carries the new user's identity and the access key used
// to create sessions. The key is only ever returned once.
type RegisterResponse struct {
	UserID    int64  `json:"user_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AccessKey string `json:"access_key"`
}

// Register creates a new user with an alert profile.
func (c *APIClient) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var resp RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/api/users", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
