// Kubarr Console - Real-Time Install Status for the Kubarr Media Stack
// Copyright 2026 Kubarr Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kubarr/console

package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/kubarr/console/internal/models"
)

// Client defines the orchestration API operations the console consumes.
// Both HTTPClient and BreakerClient implement this interface.
type Client interface {
	BootstrapStatus(ctx context.Context) (*models.BootstrapSnapshot, error)
	BootstrapWebSocketURL() (string, error)
	InstallApp(ctx context.Context, name, namespace string) (*models.InstallResponse, error)
	DeleteApp(ctx context.Context, name string) (*models.DeleteResponse, error)
	AppHealth(ctx context.Context, name string) (*models.HealthResponse, error)
	AppExists(ctx context.Context, name string) (*models.ExistsResponse, error)
	InstalledApps(ctx context.Context) ([]string, error)
}

// Ensure HTTPClient implements Client
var _ Client = (*HTTPClient)(nil)

// HTTPClient talks to the Kubarr orchestration API over REST.
//
// The mutation endpoints (install, delete) are fire-and-forget: they
// acknowledge the request and complete the actual orchestration out of
// band. Callers that need completion signals use the bootstrap
// synchronizer or the lifecycle poller on top of this client.
type HTTPClient struct {
	baseURL    string
	token      string // optional bearer token forwarded to the backend
	httpClient *http.Client
}

// NewHTTPClient creates an orchestration API client.
//
// Parameters:
//   - baseURL: backend URL (e.g. "http://kubarr.local:8080")
//   - token: optional bearer token, empty to send no Authorization header
func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	baseURL = strings.TrimSuffix(baseURL, "/")
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BootstrapStatus fetches the polled bootstrap snapshot.
func (c *HTTPClient) BootstrapStatus(ctx context.Context) (*models.BootstrapSnapshot, error) {
	var snap models.BootstrapSnapshot
	if err := c.getJSON(ctx, "/bootstrap/status", &snap); err != nil {
		return nil, fmt.Errorf("bootstrap status: %w", err)
	}
	return &snap, nil
}

// BootstrapWebSocketURL returns the push-channel URL derived from the
// backend base URL (http -> ws, https -> wss), with the bearer token as a
// query parameter when configured.
func (c *HTTPClient) BootstrapWebSocketURL() (string, error) {
	parsed, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	scheme := "ws"
	if parsed.Scheme == "https" {
		scheme = "wss"
	}

	wsURL := url.URL{Scheme: scheme, Host: parsed.Host, Path: parsed.Path + "/bootstrap/ws"}
	if c.token != "" {
		q := wsURL.Query()
		q.Set("token", c.token)
		wsURL.RawQuery = q.Encode()
	}

	return wsURL.String(), nil
}

// InstallApp requests installation of a catalog app. The returned status
// acknowledges the request only; readiness is observed via AppHealth.
func (c *HTTPClient) InstallApp(ctx context.Context, name, namespace string) (*models.InstallResponse, error) {
	body := models.InstallRequest{AppName: name, Namespace: namespace}
	var resp models.InstallResponse
	if err := c.doJSON(ctx, http.MethodPost, "/apps/install", body, &resp); err != nil {
		return nil, fmt.Errorf("install %s: %w", name, err)
	}
	return &resp, nil
}

// DeleteApp requests removal of an installed app (the backend deletes the
// whole namespace). Teardown completion is observed via AppExists.
func (c *HTTPClient) DeleteApp(ctx context.Context, name string) (*models.DeleteResponse, error) {
	var resp models.DeleteResponse
	if err := c.doJSON(ctx, http.MethodDelete, "/apps/"+url.PathEscape(name), nil, &resp); err != nil {
		return nil, fmt.Errorf("delete %s: %w", name, err)
	}
	return &resp, nil
}

// AppHealth checks readiness of an installed app's deployments.
func (c *HTTPClient) AppHealth(ctx context.Context, name string) (*models.HealthResponse, error) {
	var resp models.HealthResponse
	if err := c.getJSON(ctx, "/apps/"+url.PathEscape(name)+"/health", &resp); err != nil {
		return nil, fmt.Errorf("health %s: %w", name, err)
	}
	return &resp, nil
}

// AppExists checks whether an app's namespace still exists.
func (c *HTTPClient) AppExists(ctx context.Context, name string) (*models.ExistsResponse, error) {
	var resp models.ExistsResponse
	if err := c.getJSON(ctx, "/apps/"+url.PathEscape(name)+"/exists", &resp); err != nil {
		return nil, fmt.Errorf("exists %s: %w", name, err)
	}
	return &resp, nil
}

// InstalledApps returns the authoritative list of installed app names.
func (c *HTTPClient) InstalledApps(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.getJSON(ctx, "/apps/installed", &names); err != nil {
		return nil, fmt.Errorf("installed apps: %w", err)
	}
	return names, nil
}

// getJSON issues a GET and decodes the response body into out.
func (c *HTTPClient) getJSON(ctx context.Context, path string, out interface{}) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

// doJSON issues a request with an optional JSON body and decodes the
// JSON response into out. Non-2xx responses come back as errors carrying
// the status code and response body.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if readErr != nil {
			return fmt.Errorf("status %d (failed to read body)", resp.StatusCode)
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
