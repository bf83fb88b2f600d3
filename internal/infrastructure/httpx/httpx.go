package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Client wraps an http.Client with the retry policy and default headers
// shared by every upstream fetcher.
type Client struct {
	HTTP      *http.Client
	UserAgent string
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func (c *Client) setHeaders(req *http.Request) {
	if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
}

func retryPolicy(ctx context.Context) backoff.BackOffContext {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 200 * time.Millisecond
	exp.MaxInterval = 1 * time.Second
	exp.MaxElapsedTime = 3 * time.Second
	return backoff.WithContext(exp, ctx)
}

// DoJSON performs the request and decodes the JSON body into out.
// Transport errors and 5xx responses are retried with exponential
// backoff; other non-200 statuses and decode failures fail immediately.
func (c *Client) DoJSON(ctx context.Context, req *http.Request, out any) error {
	c.setHeaders(req)
	httpc := c.httpClient()

	op := func() error {
		resp, err := httpc.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 500 {
			return fmt.Errorf("server error %d", resp.StatusCode)
		}
		if resp.StatusCode != 200 {
			return backoff.Permanent(fmt.Errorf("status %d", resp.StatusCode))
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode: %w", err))
		}
		return nil
	}
	return backoff.Retry(op, retryPolicy(ctx))
}

// DoJSONOnce is the single-attempt variant for periodic fetches, where
// the polling cadence is the retry. Cancellation comes from the
// request's own context.
func (c *Client) DoJSONOnce(req *http.Request, out any) error {
	c.setHeaders(req)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// DoBody performs a single attempt and returns the raw response body.
// Used for HTML pages.
func (c *Client) DoBody(req *http.Request) ([]byte, error) {
	c.setHeaders(req)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
