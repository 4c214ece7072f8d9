// File: services/http.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// NewHTTPClient returns the client used for all backend calls.
// With tracing on, outbound requests are recorded as X-Ray subsegments.
// No timeout is set; timeouts belong to the backend and transport.
func NewHTTPClient(tracing bool) *http.Client {
	c := &http.Client{}
	if tracing {
		return xray.Client(c)
	}
	return c
}

// restClient holds what every backend endpoint call shares.
type restClient struct {
	baseURL string
	anonKey string
	http    *http.Client
}

func newRestClient(baseURL, anonKey string, httpClient *http.Client) *restClient {
	if httpClient == nil {
		httpClient = NewHTTPClient(false)
	}
	return &restClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		http:    httpClient,
	}
}

// doJSON sends body as JSON and decodes a 2xx response into out (if non-nil).
// An empty bearer falls back to the anon key, as an unauthenticated client does.
func (r *restClient) doJSON(ctx context.Context, method, path string, query url.Values, bearer string, body, out interface{}) error {
	u := r.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if bearer == "" {
		bearer = r.anonKey
	}
	req.Header.Set("apikey", r.anonKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return &BackendError{Message: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &BackendError{Status: resp.StatusCode, Message: err.Error()}
	}
	if resp.StatusCode >= 400 {
		return decodeBackendError(resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
