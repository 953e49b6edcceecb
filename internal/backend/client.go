package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultHTTPTimeout = 300 * time.Second

// Client provides access to the remote analysis service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New creates an analysis service client.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("backend base url required")
	}
	client := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// Vision analysis can take minutes on cold models.
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Scan submits a packaged-food capture (barcode or label image) for analysis.
// The response is returned undecoded beyond JSON so the normalizer owns all
// shape decisions. A barcode the service cannot resolve yields the raw
// payload alongside ErrBarcodeNotFound.
func (c *Client) Scan(ctx context.Context, req ScanRequest) (map[string]any, error) {
	return c.analyze(ctx, "/scan", req)
}

// ScanFresh submits a fresh-food capture (fruit, prepared dishes) to the
// vision endpoint.
func (c *Client) ScanFresh(ctx context.Context, req ScanRequest) (map[string]any, error) {
	return c.analyze(ctx, "/food", req)
}

func (c *Client) analyze(ctx context.Context, path string, req ScanRequest) (map[string]any, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	payload, err := c.postJSON(ctx, path, req)
	if err != nil {
		return nil, err
	}

	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("decode analysis response: %w", err)
	}
	if message, _ := decoded["error"].(string); message == "barcode_not_found" {
		return decoded, ErrBarcodeNotFound
	}
	return decoded, nil
}

// LogFood records a confirmed scan in the user's remote history.
func (c *Client) LogFood(ctx context.Context, userID string, foodData map[string]any) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return errors.New("log food: user id required")
	}
	if foodData == nil {
		return errors.New("log food: food data required")
	}
	_, err := c.postJSON(ctx, "/log-food", logRequest{UserID: userID, FoodData: foodData})
	return err
}

// Dashboard fetches the remote history log and progress summary for the user.
func (c *Client) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("dashboard: user id required")
	}

	endpoint, err := url.JoinPath(c.baseURL, "/dashboard", userID)
	if err != nil {
		return nil, fmt.Errorf("build dashboard url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newServerError(resp)
	}

	var dashboard Dashboard
	if err := json.NewDecoder(resp.Body).Decode(&dashboard); err != nil {
		return nil, fmt.Errorf("decode dashboard response: %w", err)
	}
	return &dashboard, nil
}

// Ping reports whether the analysis service is reachable and healthy.
func (c *Client) Ping(ctx context.Context) bool {
	endpoint, err := url.JoinPath(c.baseURL, "/ping")
	if err != nil {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}

	var status pingResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return false
	}
	return status.Status == "success"
}

func (c *Client) postJSON(ctx context.Context, path string, body any) ([]byte, error) {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("build url for %s: %w", path, err)
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request for %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ServerError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(payload))}
	}
	return payload, nil
}

func newServerError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &ServerError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}
