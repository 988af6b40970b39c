package spotify

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultMaxRetries = 3
	defaultBackoff    = 500 * time.Millisecond
	// maxBackoff bounds one wait, including server supplied Retry-After values.
	maxBackoff = 30 * time.Second
)

// do sends a body-less request, retrying transport errors, 429 and 5xx
// responses with exponential backoff. Any other response is returned as is.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	attempts := c.maxRetries
	if attempts <= 0 {
		attempts = defaultMaxRetries
	}
	ctx := req.Context()

	var lastErr error
	for attempt := range attempts {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("spotify adapter: request canceled: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if !retryable(resp, err) {
			return resp, err
		}

		wait := c.backoff(attempt, resp)
		if err != nil {
			lastErr = err
			c.logger.Warn().Err(err).Int("attempt", attempt+1).Int("max_attempts", attempts).Msg("spotify request failed")
		} else {
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			c.logger.Warn().Int("status", resp.StatusCode).Int("attempt", attempt+1).Int("max_attempts", attempts).Dur("wait", wait).Msg("spotify request throttled")
			_ = resp.Body.Close()
		}

		if attempt == attempts-1 {
			break
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("spotify adapter: request canceled: %w", ctx.Err())
		case <-timer.C:
		}
	}

	return nil, fmt.Errorf("spotify adapter: request failed after %d attempts: %w", attempts, lastErr)
}

func retryable(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}
	return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError
}

// backoff doubles the base delay per attempt. A Retry-After header on resp
// replaces the computed delay.
func (c *Client) backoff(attempt int, resp *http.Response) time.Duration {
	if d := retryAfter(resp); d > 0 {
		return min(d, maxBackoff)
	}
	base := c.baseBackoff
	if base <= 0 {
		base = defaultBackoff
	}
	if attempt >= 16 {
		return maxBackoff
	}
	return min(base<<attempt, maxBackoff)
}

// retryAfter reads Retry-After as delay-seconds or an HTTP date.
func retryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(max(secs, 0)) * time.Second
	}
	if when, err := http.ParseTime(v); err == nil {
		return max(time.Until(when), 0)
	}
	return 0
}
