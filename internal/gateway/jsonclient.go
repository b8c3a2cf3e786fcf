package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxErrorBody = 4 << 10

// JSONClient sends JSON requests to one upstream base URL.
type JSONClient struct {
	BaseURL string
	HTTP    *http.Client
}

// NewJSONClient builds a JSONClient with a request timeout.
func NewJSONClient(baseURL string, timeout time.Duration) JSONClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return JSONClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Response carries the upstream status and, for non-2xx answers, a bounded
// copy of the body for diagnostics.
type Response struct {
	Status int
	Body   string
}

func (r Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Do sends in as JSON and decodes a 2xx body into out. Non-2xx statuses are
// not errors here; callers decide how to classify them.
func (c JSONClient) Do(ctx context.Context, method, path, bearer string, in, out any) (Response, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return Response{}, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return Response{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	result := Response{Status: resp.StatusCode}
	if !result.OK() {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		result.Body = string(raw)
		return result, nil
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return result, fmt.Errorf("decode response: %w", err)
		}
	}
	return result, nil
}
