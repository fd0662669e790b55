package runner

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

func (c *Client) postJSON(ctx context.Context, endpoint, path string, payload any, timeout time.Duration) ([]byte, error) {
	body, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		return nil, fmt.Errorf("marshal payload: %w", marshalErr)
	}
	return c.do(ctx, http.MethodPost, joinURL(endpoint, path), body, timeout)
}

func (c *Client) getJSON(ctx context.Context, endpoint, path string, timeout time.Duration) ([]byte, error) {
	return c.do(ctx, http.MethodGet, joinURL(endpoint, path), nil, timeout)
}

// do performs one HTTP call under its own deadline. A deadline hit on the
// call while the parent context is still live is reported as ErrLocalTimeout;
// parent cancellation propagates as the context error.
func (c *Client) do(ctx context.Context, method, url string, body []byte, timeout time.Duration) ([]byte, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, reqErr := http.NewRequestWithContext(callCtx, method, url, reader)
	if reqErr != nil {
		return nil, fmt.Errorf("create request: %w", reqErr)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		if errors.Is(doErr, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: %s %s exceeded %s", ErrLocalTimeout, method, url, timeout)
		}
		return nil, fmt.Errorf("send request: %w", doErr)
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, fmt.Errorf("read response body: %w", readErr)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, newRemoteError(resp.StatusCode, resp.Status, respBody)
	}

	return respBody, nil
}

func joinURL(endpoint, path string) string {
	return strings.TrimRight(endpoint, "/") + path
}
