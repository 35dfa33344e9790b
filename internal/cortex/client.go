package cortex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	completePath       = "/api/v2/cortex/inference:complete"
	searchServicesPath = "/api/v2/databases/%s/schemas/%s/cortex-search-services"
)

type Client struct {
	baseURL    string
	token      string
	tokenType  string
	database   string
	schema     string
	httpClient *http.Client
	logger     *logrus.Logger
}

type ClientConfig struct {
	AccountURL string
	Token      string
	TokenType  string
	Database   string
	Schema     string
	Timeout    time.Duration
}

func NewClient(cfg ClientConfig, logger *logrus.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.AccountURL, "/"),
		token:     cfg.Token,
		tokenType: cfg.TokenType,
		database:  cfg.Database,
		schema:    cfg.Schema,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// BaseURL is the account URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Complete sends a single-message prompt to the hosted completion endpoint and
// returns the generated text.
func (c *Client) Complete(ctx context.Context, model, prompt string) (string, error) {
	req := CompleteRequest{
		Model:    model,
		Messages: []PromptMessage{{Content: prompt}},
		Stream:   false,
	}

	var response CompleteResponse
	if err := c.makeRequest(ctx, http.MethodPost, completePath, req, &response); err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}

	if response.Usage != nil {
		c.logger.WithFields(logrus.Fields{
			"model":             model,
			"prompt_tokens":     response.Usage.PromptTokens,
			"completion_tokens": response.Usage.CompletionTokens,
		}).Debug("Completion usage")
	}

	return response.Choices[0].Message.Content, nil
}

func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if req.Service == "" {
		return nil, fmt.Errorf("search service name is required")
	}
	endpoint := c.servicesPath() + "/" + url.PathEscape(req.Service) + ":query"

	var response SearchResponse
	err := c.makeRequest(ctx, http.MethodPost, endpoint, req, &response)
	return &response, err
}

func (c *Client) ListSearchServices(ctx context.Context) ([]SearchService, error) {
	var services []SearchService
	err := c.makeRequest(ctx, http.MethodGet, c.servicesPath(), nil, &services)
	return services, err
}

func (c *Client) DescribeSearchService(ctx context.Context, name string) (*SearchService, error) {
	var service SearchService
	err := c.makeRequest(ctx, http.MethodGet, c.servicesPath()+"/"+url.PathEscape(name), nil, &service)
	if err != nil {
		return nil, err
	}
	return &service, nil
}

// Ping checks that the account endpoint answers at all.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.servicesPath(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) servicesPath() string {
	return fmt.Sprintf(searchServicesPath, url.PathEscape(c.database), url.PathEscape(c.schema))
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	if c.tokenType != "" {
		req.Header.Set("X-Snowflake-Authorization-Token-Type", c.tokenType)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

func (c *Client) makeRequest(ctx context.Context, method, endpoint string, payload interface{}, result interface{}) error {
	fullURL := c.baseURL + endpoint

	var body io.Reader
	var contentLength int

	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
		contentLength = len(jsonData)

		// Prompts can be long, only dump small payloads
		if contentLength < 1000 {
			c.logger.WithFields(logrus.Fields{
				"method":       method,
				"url":          fullURL,
				"payload_json": string(jsonData),
			}).Debug("Request payload")
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	c.logger.WithFields(logrus.Fields{
		"method":   method,
		"url":      fullURL,
		"has_body": payload != nil,
		"size":     contentLength,
	}).Debug("Making Cortex API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"status_code":   resp.StatusCode,
		"method":        method,
		"url":           fullURL,
		"response_size": len(responseBody),
	}).Debug("Cortex API response received")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(responseBody)}
	}

	if result != nil && len(responseBody) > 0 {
		if err := json.Unmarshal(responseBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

// APIError is returned for any non-2xx answer from the hosted services.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether repeating the request may succeed.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}
