// Package client is a typed HTTP client for the AQL endpoints of the console
// backend. It satisfies services.AQLRepository so the plan editor can run
// against a remote server.
package client

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

	"fincheck/services"
)

const defaultTimeout = 30 * time.Second

// NetworkError is returned on transport failures and on error responses that
// carry no recognised kind.
type NetworkError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Err        error
}

func (e *NetworkError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
	}
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Client talks to the console backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ services.AQLRepository = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the timeout of the default transport.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New returns a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type updatesBody[T any] struct {
	Updates []T `json:"updates"`
}

// FetchSampleLetters returns every code letter row.
func (c *Client) FetchSampleLetters(ctx context.Context) ([]services.SampleSizeLetterRow, error) {
	var rows []services.SampleSizeLetterRow
	err := c.do(ctx, http.MethodGet, "/aql-sample-letters", nil, &rows)
	return rows, err
}

// FetchSamplingPlans returns every sampling plan row.
func (c *Client) FetchSamplingPlans(ctx context.Context) ([]services.SamplingPlanRow, error) {
	var rows []services.SamplingPlanRow
	err := c.do(ctx, http.MethodGet, "/aql-values", nil, &rows)
	return rows, err
}

// FetchBuyerConfigs returns every buyer configuration row.
func (c *Client) FetchBuyerConfigs(ctx context.Context) ([]services.BuyerAQLConfig, error) {
	var rows []services.BuyerAQLConfig
	err := c.do(ctx, http.MethodGet, "/aql-buyer-config", nil, &rows)
	return rows, err
}

// FetchBuyerConfig returns the configuration rows of one buyer.
func (c *Client) FetchBuyerConfig(ctx context.Context, buyer string) ([]services.BuyerAQLConfig, error) {
	var rows []services.BuyerAQLConfig
	err := c.do(ctx, http.MethodGet, "/aql-buyer-config?buyer="+url.QueryEscape(buyer), nil, &rows)
	return rows, err
}

// BulkUpdateSampleLetters replaces code letter rows by id.
func (c *Client) BulkUpdateSampleLetters(ctx context.Context, rows []services.SampleSizeLetterRow) ([]services.SampleSizeLetterRow, error) {
	var saved []services.SampleSizeLetterRow
	err := c.do(ctx, http.MethodPut, "/aql-sample-letters/bulk-update", updatesBody[services.SampleSizeLetterRow]{Updates: rows}, &saved)
	return saved, err
}

// BulkUpdateSamplingPlans replaces sampling plan rows by id.
func (c *Client) BulkUpdateSamplingPlans(ctx context.Context, rows []services.SamplingPlanRow) ([]services.SamplingPlanRow, error) {
	var saved []services.SamplingPlanRow
	err := c.do(ctx, http.MethodPut, "/aql-values/bulk-update", updatesBody[services.SamplingPlanRow]{Updates: rows}, &saved)
	return saved, err
}

// UpsertBuyerConfig replaces a buyer's configuration rows.
func (c *Client) UpsertBuyerConfig(ctx context.Context, rows []services.BuyerAQLConfig) ([]services.BuyerAQLConfig, error) {
	var saved []services.BuyerAQLConfig
	err := c.do(ctx, http.MethodPost, "/aql-buyer-config/upsert", rows, &saved)
	return saved, err
}

// Calculate resolves the sampling plan for a lot on the server.
func (c *Client) Calculate(ctx context.Context, req services.CalculationRequest) (services.CalculationResult, error) {
	var result services.CalculationResult
	err := c.do(ctx, http.MethodPost, "/aql/calculate", req, &result)
	return result, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &NetworkError{Method: method, Path: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Method: method, Path: path, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(method, path, resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &NetworkError{Method: method, Path: path, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// errorBody is the JSON error shape written by the backend handlers.
type errorBody struct {
	Kind    string          `json:"kind"`
	Message string          `json:"message"`
	Detail  json.RawMessage `json:"detail"`
}

// decodeError maps an error response onto the typed services errors.
func decodeError(method, path string, status int, data []byte) error {
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return &NetworkError{Method: method, Path: path, StatusCode: status, Message: strings.TrimSpace(string(data))}
	}

	switch body.Kind {
	case "validation":
		ve := &services.ValidationError{}
		if !decodeDetail(body.Detail, ve) {
			ve.Message = body.Message
		}
		return ve
	case "not_found":
		nf := &services.NotFoundError{}
		if !decodeDetail(body.Detail, nf) {
			nf.What, nf.Key = "resource", body.Message
		}
		return nf
	case "schema_mismatch":
		sm := &services.SchemaMismatchError{}
		decodeDetail(body.Detail, sm)
		return sm
	default:
		return &NetworkError{Method: method, Path: path, StatusCode: status, Message: body.Message}
	}
}

func decodeDetail(raw json.RawMessage, dst any) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}
