// Package authapi is the client for the remote user-authentication service,
// which owns the mapping from recognized names to full user records.
package authapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrNotFound reports a user that does not exist in the authentication
// service.
var ErrNotFound = errors.New("user not found")

// User is a record kept by the authentication service. Field names are the
// service's own.
type User struct {
	ID     int    `json:"id"`
	Nome   string `json:"nome"`
	Email  string `json:"email"`
	Perfil string `json:"perfil"`
}

// Client talks to the authentication service. Every call is bounded by the
// configured timeout; callers decide whether a failure is fatal or degrades
// the response.
type Client struct {
	baseURL *url.URL
	client  *http.Client
}

// NewClient creates a client for the authentication service at rawURL.
func NewClient(rawURL string, timeout time.Duration) (*Client, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid auth service URL %q: %w", rawURL, err)
	}
	return &Client{
		baseURL: parsed,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// doGetJSON performs a GET against the service and decodes the JSON response.
func doGetJSON[T any](ctx context.Context, c *Client, pathSegments ...string) (*T, error) {
	u := c.baseURL.JoinPath(pathSegments...).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not reach auth service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}
	return &result, nil
}

// ListUsers retrieves all registered users (GET /auth).
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	users, err := doGetJSON[[]User](ctx, c, "auth")
	if err != nil {
		return nil, err
	}
	return *users, nil
}

// GetUser retrieves a single user by id (GET /auth/{id}). Returns
// ErrNotFound when the service answers 404.
func (c *Client) GetUser(ctx context.Context, id int) (*User, error) {
	return doGetJSON[User](ctx, c, "auth", fmt.Sprintf("%d", id))
}

// FindUserByName scans the user list for a record whose name matches,
// ignoring case and diacritics. Returns ErrNotFound when no user matches.
func (c *Client) FindUserByName(ctx context.Context, name string) (*User, error) {
	users, err := c.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	want := NormalizeName(name)
	for i := range users {
		if NormalizeName(users[i].Nome) == want {
			return &users[i], nil
		}
	}
	return nil, ErrNotFound
}

// IsNotFound returns true if the error indicates a missing user.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
