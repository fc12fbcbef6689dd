// Package e2e drives a running curp API with godog scenarios. Point
// CURP_E2E_BASE_URL at the server; the suite is skipped when it is unset.
// CURP_E2E_TOKEN, when set, is sent as the bearer token of every request.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TestContext holds the HTTP client and the last response of a scenario.
type TestContext struct {
	baseURL      string
	client       *http.Client
	defaultToken string
	accessToken  string

	lastStatus  int
	lastHeaders http.Header
	lastBody    []byte
}

func NewTestContext(baseURL, token string) *TestContext {
	return &TestContext{
		baseURL:      strings.TrimRight(baseURL, "/"),
		client:       &http.Client{Timeout: 10 * time.Second},
		defaultToken: token,
		accessToken:  token,
	}
}

func (tc *TestContext) reset() {
	tc.accessToken = tc.defaultToken
	tc.lastStatus = 0
	tc.lastHeaders = nil
	tc.lastBody = nil
}

func (tc *TestContext) SetAccessToken(token string) { tc.accessToken = token }

func (tc *TestContext) POST(path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}
	return tc.do(http.MethodPost, path, bytes.NewReader(payload))
}

func (tc *TestContext) GET(path string) error {
	return tc.do(http.MethodGet, path, nil)
}

func (tc *TestContext) do(method, path string, body io.Reader) error {
	req, err := http.NewRequestWithContext(context.Background(), method, tc.baseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tc.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+tc.accessToken)
	}
	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastHeaders = resp.Header
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) GetLastResponseStatus() int { return tc.lastStatus }

func (tc *TestContext) GetLastResponseHeader(name string) string {
	return tc.lastHeaders.Get(name)
}

// GetResponseField returns a top-level field of the last JSON body.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var body map[string]any
	if err := json.Unmarshal(tc.lastBody, &body); err != nil {
		return nil, fmt.Errorf("decode response: %w (body %q)", err, tc.lastBody)
	}
	v, ok := body[field]
	if !ok {
		return nil, fmt.Errorf("field %q missing from response %s", field, tc.lastBody)
	}
	return v, nil
}
