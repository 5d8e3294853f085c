package matchctl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/tutormatch/internal/domain/model"
	"github.com/okian/tutormatch/internal/domain/types"
)

// Client talks to a running match server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

// apiError mirrors the server's error body.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusError carries a non-success response.
type StatusError struct {
	Status int
	Code   string
	Msg    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Msg)
}

func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, "", http.StatusOK, nil)
}

// PutProfile posts p with requestID as the idempotency key.
func (c *Client) PutProfile(ctx context.Context, p model.Profile, requestID string) (types.RecomputeStatus, error) {
	var st types.RecomputeStatus
	err := c.do(ctx, http.MethodPost, "/profiles", p, requestID, http.StatusAccepted, &st)
	return st, err
}

// Rank fetches the live ranking for id.
func (c *Client) Rank(ctx context.Context, id string, limit int) ([]types.Entry, error) {
	path := "/rank/" + url.PathEscape(id)
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out []types.Entry
	err := c.do(ctx, http.MethodGet, path, nil, "", http.StatusOK, &out)
	return out, err
}

// Suggestions fetches decayed stored suggestions for id.
func (c *Client) Suggestions(ctx context.Context, id string, minScore float64, topics []string) ([]types.Suggestion, error) {
	q := url.Values{}
	if minScore > 0 {
		q.Set("min_score", strconv.FormatFloat(minScore, 'f', -1, 64))
	}
	for _, t := range topics {
		q.Add("topic", t)
	}
	path := "/suggestions/" + url.PathEscape(id)
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []types.Suggestion
	err := c.do(ctx, http.MethodGet, path, nil, "", http.StatusOK, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body any, requestID string, want int, out any) error {
	var r io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requestID != "" {
		req.Header.Set("Idempotency-Key", requestID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode != want {
		var e apiError
		_ = json.Unmarshal(data, &e)
		return &StatusError{Status: resp.StatusCode, Code: e.Code, Msg: e.Message}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
