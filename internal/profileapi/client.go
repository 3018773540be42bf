package profileapi

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"bodygoal/internal/profile"
)

// Source provides user profile data for generation requests.
type Source interface {
	FetchProfile(ctx context.Context, userID string) (profile.Biometrics, error)
	FetchSnapshot(ctx context.Context, userID string) (map[string]string, error)
}

// client is the concrete HTTP implementation of Source.
type client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a profile API client. The API key uses the id:secret
// format, where the secret is hex-encoded.
func NewClient(baseURL, apiKey string) Source {
	return &client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// FetchProfile retrieves the biometric profile for a user.
func (c *client) FetchProfile(ctx context.Context, userID string) (profile.Biometrics, error) {
	var b profile.Biometrics
	if err := c.get(ctx, fmt.Sprintf("/api/users/%s/profile", userID), &b); err != nil {
		return profile.Biometrics{}, err
	}
	return b, nil
}

// FetchSnapshot retrieves the user's current tracking data (logged calories,
// recent workouts) as a flat key/value map.
func (c *client) FetchSnapshot(ctx context.Context, userID string) (map[string]string, error) {
	var snap map[string]string
	if err := c.get(ctx, fmt.Sprintf("/api/users/%s/snapshot", userID), &snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (c *client) get(ctx context.Context, path string, out any) error {
	token, err := c.createServiceToken()
	if err != nil {
		return fmt.Errorf("failed to create service token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("profile api error: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// createServiceToken generates a short-lived JWT for the profile API.
func (c *client) createServiceToken() (string, error) {
	keyParts := strings.Split(c.apiKey, ":")
	if len(keyParts) != 2 {
		return "", fmt.Errorf("invalid api key format: expected id:secret")
	}

	id := keyParts[0]
	secret, err := hex.DecodeString(keyParts[1])
	if err != nil {
		return "", fmt.Errorf("failed to decode secret hex: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(5 * time.Minute).Unix(),
		"aud": "/api/",
	})
	token.Header["kid"] = id

	return token.SignedString(secret)
}
