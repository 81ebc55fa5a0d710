// Package api is the HTTP client for the remote catalog/video service.
// It characterises every remote operation only by success or failure plus,
// for uploads, a progress signal; transport details stay inside this
// package.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Error is a failed remote call. Message carries the server-provided text
// when the response body had one.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	uploader   *http.Client // longer timeout for transfers
	token      string

	// view recording is best-effort; never hammer the endpoint
	viewLimiter *rate.Limiter
}

func NewClient(baseURL string, requestTimeout, uploadTimeout time.Duration) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: requestTimeout},
		uploader:    &http.Client{Timeout: uploadTimeout},
		viewLimiter: rate.NewLimiter(rate.Every(2*time.Second), 5),
	}
}

// SetToken attaches a bearer token to subsequent requests. An empty token
// clears it.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// doJSON issues the request and decodes a JSON response into out (which
// may be nil). Non-2xx responses become *Error with the server message
// when one was supplied.
func (c *Client) doJSON(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return responseError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(req, out)
}

// decodeLoose decodes JSON into out but tolerates an empty body.
func decodeLoose(r io.Reader, out interface{}) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(out); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func responseError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err == nil {
		apiErr.Message = body.Message
	}
	return apiErr
}
