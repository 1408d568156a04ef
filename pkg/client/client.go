// Package client provides a Go client for the Solverify API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client is a Solverify API client
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// New creates a new Solverify client
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Candidate is one compiler output to verify against. Output carries the raw
// solc standard JSON output.
type Candidate struct {
	CompilerVersion string          `json:"compilerVersion"`
	Output          json.RawMessage `json:"output"`
}

// VerifyRequest is the request for submitting a verification
type VerifyRequest struct {
	ContractName     string      `json:"contractName"`
	FilePath         string      `json:"filePath,omitempty"`
	CreationTxInput  string      `json:"creationTxInput"`
	DeployedBytecode string      `json:"deployedBytecode"`
	Candidates       []Candidate `json:"candidates"`
}

// VerifyResult is the classified outcome of a verification run
type VerifyResult struct {
	ID              string    `json:"id"`
	Status          string    `json:"status"`
	CompilerVersion string    `json:"compilerVersion,omitempty"`
	ConstructorArgs string    `json:"constructorArgs,omitempty"`
	Message         string    `json:"message,omitempty"`
	RuntimeDiff     *Diff     `json:"runtimeDiff,omitempty"`
	CreationDiff    *Diff     `json:"creationDiff,omitempty"`
	Attempts        []Attempt `json:"attempts,omitempty"`
}

// Diff carries the diverging byte regions of a mismatch, hex encoded
type Diff struct {
	Expected string `json:"expected,omitempty"`
	Found    string `json:"found,omitempty"`
}

// Attempt records how a single candidate fared
type Attempt struct {
	CompilerVersion string `json:"compilerVersion"`
	Status          string `json:"status"`
	Message         string `json:"message,omitempty"`
}

// Verification is a stored verification record
type Verification struct {
	ID               string `json:"id"`
	ContractName     string `json:"contractName"`
	FilePath         string `json:"filePath,omitempty"`
	CreationTxInput  string `json:"creationTxInput"`
	DeployedBytecode string `json:"deployedBytecode"`
	Status           string `json:"status"`
	CompilerVersion  string `json:"compilerVersion,omitempty"`
	ConstructorArgs  string `json:"constructorArgs,omitempty"`
	Message          string `json:"message,omitempty"`
	CreatedAt        string `json:"createdAt"`
}

// Summary is a condensed verification record for listings
type Summary struct {
	ID              string `json:"id"`
	ContractName    string `json:"contractName"`
	Status          string `json:"status"`
	CompilerVersion string `json:"compilerVersion,omitempty"`
	CreatedAt       string `json:"createdAt"`
}

// ListResponse is the response for listing verifications
type ListResponse struct {
	Data       []Summary  `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Pagination contains pagination info
type Pagination struct {
	Limit      int    `json:"limit"`
	HasMore    bool   `json:"hasMore"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// ListOptions filters a verification listing
type ListOptions struct {
	ContractName string
	Status       string
	Limit        int
	Cursor       string
}

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Verify submits a verification request and returns the classified outcome.
func (c *Client) Verify(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	var resp VerifyResult
	if err := c.post(ctx, "/api/v1/verify", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetVerification gets a stored verification by ID.
func (c *Client) GetVerification(ctx context.Context, id string) (*Verification, error) {
	var resp Verification
	if err := c.get(ctx, "/api/v1/verifications/"+url.PathEscape(id), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListVerifications lists stored verifications.
func (c *Client) ListVerifications(ctx context.Context, opts ListOptions) (*ListResponse, error) {
	q := url.Values{}
	if opts.ContractName != "" {
		q.Set("contract", opts.ContractName)
	}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}
	if opts.Cursor != "" {
		q.Set("cursor", opts.Cursor)
	}

	path := "/api/v1/verifications"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health checks server health.
func (c *Client) Health(ctx context.Context) error {
	return c.get(ctx, "/health", nil)
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	return c.do(req, result)
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result any) error {
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.parseError(resp)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
}

func (c *Client) parseError(resp *http.Response) error {
	var errResp struct {
		Error APIError `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	return &errResp.Error
}
