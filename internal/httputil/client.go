// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across retrieval clients.
package httputil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pdiddy/trialscout/pkg/types"
)

// defaultTimeout bounds requests when the configuration leaves Timeout unset.
const defaultTimeout = 30 * time.Second

// NewClient returns an *http.Client bounded by the configured per-request
// timeout. Retrieval makes exactly one attempt per request: failures surface
// immediately and re-attempts are user-triggered.
func NewClient(cfg types.HTTPConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// GetJSON issues a GET for rawURL, checks for HTTP 200, and decodes the JSON
// body into v. The User-Agent header is set from cfg when non-empty. The
// response body of non-200 replies is drained and closed before returning.
func GetJSON(ctx context.Context, client *http.Client, cfg types.HTTPConfig, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, req.URL.Host)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}
