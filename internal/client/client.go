// Package client provides an HTTP client for the realty REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/evcraddock/realty/internal/auth"
	"github.com/evcraddock/realty/internal/catalog"
	"github.com/evcraddock/realty/internal/property"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error: %s", http.StatusText(e.Status))
	}
	return e.Message
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Client is an HTTP client for the realty API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a new API client. token may be empty for public endpoints.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ListProperties returns the whole catalog, newest first.
func (c *Client) ListProperties(ctx context.Context) ([]property.Property, error) {
	return c.Search(ctx, catalog.FilterState{})
}

// Search returns the properties matching f, filtered by the server.
func (c *Client) Search(ctx context.Context, f catalog.FilterState) ([]property.Property, error) {
	path := "/api/properties"
	if v := f.Values(); len(v) > 0 {
		path += "?" + v.Encode()
	}
	var props []property.Property
	if err := c.get(ctx, path, &props); err != nil {
		return nil, err
	}
	return props, nil
}

// Detail looks a property up by id, or by slug when ref is not an id.
func (c *Client) Detail(ctx context.Context, ref string) (*property.Detail, error) {
	key := "slug"
	if property.ValidID(ref) {
		key = "id"
	}
	var d property.Detail
	if err := c.get(ctx, "/api/properties?"+url.Values{key: {ref}}.Encode(), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Suggestions returns the server's prefix suggestions for query.
func (c *Client) Suggestions(ctx context.Context, query string) ([]string, error) {
	var resp struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := c.get(ctx, "/api/suggestions?"+url.Values{"query": {query}}.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp.Suggestions, nil
}

// Create adds a property and returns the server's confirmation message.
func (c *Client) Create(ctx context.Context, form PropertyForm) (string, error) {
	var resp struct {
		Msg string `json:"msg"`
	}
	if err := c.sendForm(ctx, http.MethodPost, "/api/properties", form, &resp); err != nil {
		return "", err
	}
	return resp.Msg, nil
}

// Update changes a property and returns the stored result.
func (c *Client) Update(ctx context.Context, id string, form PropertyForm) (*property.Property, error) {
	var resp struct {
		Msg             string             `json:"msg"`
		UpdatedProperty *property.Property `json:"updatedProperty"`
	}
	if err := c.sendForm(ctx, http.MethodPut, "/api/properties/"+url.PathEscape(id), form, &resp); err != nil {
		return nil, err
	}
	return resp.UpdatedProperty, nil
}

// Delete removes a property.
func (c *Client) Delete(ctx context.Context, id string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/api/properties/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// Upload sends one image file and returns its public URL.
func (c *Client) Upload(ctx context.Context, path string) (string, error) {
	form := PropertyForm{}
	body, contentType, err := form.encode(map[string][]string{"file": {path}})
	if err != nil {
		return "", err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/upload", body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)

	var resp struct {
		URL string `json:"url"`
	}
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// Login exchanges the admin password for a token.
func (c *Client) Login(ctx context.Context, password string) (*auth.Token, error) {
	data, err := json.Marshal(map[string]string{"password": password})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/admin/login", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var tok auth.Token
	if err := c.do(req, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.get(ctx, "/health", &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("server status %q", resp.Status)
	}
	return nil
}

func (c *Client) sendForm(ctx context.Context, method, path string, form PropertyForm, result interface{}) error {
	body, contentType, err := form.encode(map[string][]string{"images": form.Images})
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	return c.do(req, result)
}

// get performs a GET request and decodes the response.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.do(req, result)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	return req, nil
}

// do executes an HTTP request with auth header and handles errors.
func (c *Client) do(req *http.Request, result interface{}) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Warn("closing response body", "error", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil {
			apiErr.Message = errResp.Error
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
