// Package client is a typed HTTP client for the invoice API. Authentication
// state lives in an explicit Session value created by Login and passed to
// each authenticated call; there is no package-level token.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/oncalldoc/invoice-api/models"
)

// The client-side error taxonomy. Remote failures map onto these so callers
// can switch on errors.Is instead of status codes.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrNotFound           = errors.New("not found")
	ErrNetwork            = errors.New("network error")
)

// Session holds the bearer token and user identity for one login. It is
// created by Login and destroyed by Logout.
type Session struct {
	Token string
	User  models.PublicUser
}

// Client calls the invoice API. Requests are fire-and-await: no retries, no
// coalescing; a call either resolves or surfaces an error.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client for the API at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// InvoiceSettingsUpdate carries the partial invoice-header update. Nil fields
// are omitted from the request and leave the stored value unchanged; set
// fields are written verbatim, including explicit empty strings.
type InvoiceSettingsUpdate struct {
	CompanyName   *string  `json:"companyName,omitempty"`
	InvoiceNumber *string  `json:"invoiceNumber,omitempty"`
	InvoiceToInfo *string  `json:"invoiceToInfo,omitempty"`
	PerHourRate   *float64 `json:"perHourRate,omitempty"`
	PerCallRate   *float64 `json:"perCallRate,omitempty"`
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	body := map[string]string{"username": username, "password": password}

	var resp struct {
		Token string            `json:"token"`
		User  models.PublicUser `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/login", "", body, &resp); err != nil {
		return nil, err
	}
	return &Session{Token: resp.Token, User: resp.User}, nil
}

// Logout discards the session. The token is self-contained, so there is
// nothing to revoke server-side; forgetting it is the whole operation.
func (c *Client) Logout(s *Session) {
	if s != nil {
		*s = Session{}
	}
}

// Me fetches the calling user's profile.
func (c *Client) Me(ctx context.Context, s *Session) (models.PublicUser, error) {
	var resp struct {
		User models.PublicUser `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/me", s.Token, nil, &resp); err != nil {
		return models.PublicUser{}, err
	}
	return resp.User, nil
}

// ListUsers returns all users; the server enforces the superuser gate.
func (c *Client) ListUsers(ctx context.Context, s *Session) ([]models.PublicUser, error) {
	var resp struct {
		Users []models.PublicUser `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/users", s.Token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// Register creates a new user; the server enforces the superuser gate.
func (c *Client) Register(ctx context.Context, s *Session, username, password string, role models.Role, rate float64) (models.PublicUser, error) {
	body := map[string]interface{}{
		"username": username,
		"password": password,
	}
	if role != "" {
		body["role"] = role
	}
	if rate != 0 {
		body["rate"] = rate
	}

	var resp struct {
		Message string            `json:"message"`
		User    models.PublicUser `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/register", s.Token, body, &resp); err != nil {
		return models.PublicUser{}, err
	}
	return resp.User, nil
}

// UpdateInvoiceSettings updates the calling user's invoice header fields.
func (c *Client) UpdateInvoiceSettings(ctx context.Context, s *Session, update InvoiceSettingsUpdate) (models.PublicUser, error) {
	var resp struct {
		Message string            `json:"message"`
		User    models.PublicUser `json:"user"`
	}
	if err := c.do(ctx, http.MethodPut, "/me/invoice", s.Token, update, &resp); err != nil {
		return models.PublicUser{}, err
	}
	return resp.User, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return apiError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decoding response: %v", ErrNetwork, err)
		}
	}
	return nil
}

// apiError maps an error response onto the sentinel taxonomy.
func apiError(resp *http.Response) error {
	var body models.ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)
	msg := body.Error
	if msg == "" {
		msg = resp.Status
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrInvalidCredentials, msg)
	case resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrForbidden, msg)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case strings.Contains(msg, "already exists"):
		return fmt.Errorf("%w: %s", ErrDuplicateUsername, msg)
	default:
		return fmt.Errorf("%w: %s", ErrNetwork, msg)
	}
}
