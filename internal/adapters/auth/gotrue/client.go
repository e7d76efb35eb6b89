package gotrue

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"animal-tracker/internal/platform/httpclient"
	"animal-tracker/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("gotrue client not configured")
)

// Config del cliente de auth hosteado (endpoint estilo GoTrue).
// BaseURL y APIKey vienen de env vars en quien lo instancia.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type Client struct {
	apiKey string
	http   *httpclient.Client
}

func NewClient(cfg Config) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), timeout)
	if err != nil {
		return nil, err
	}

	return &Client{
		apiKey: strings.TrimSpace(cfg.APIKey),
		http:   hc,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != "" && c.apiKey != ""
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// GetUser valida el token contra /auth/v1/user y devuelve los claims.
func (c *Client) GetUser(ctx context.Context, token string) (auth.Claims, error) {
	if !c.IsConfigured() {
		return auth.Claims{}, ErrNotConfigured
	}

	var user userResponse
	err := c.http.DoJSON(ctx, http.MethodGet, "/auth/v1/user", map[string]string{
		"Authorization": "Bearer " + token,
		"apikey":        c.apiKey,
	}, nil, &user)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("auth user lookup: %w", err)
	}

	return auth.Claims{UserID: user.ID, Email: user.Email}, nil
}
