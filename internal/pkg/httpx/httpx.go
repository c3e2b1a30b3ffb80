package httpx

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// HTTPStatusCoder lets client error types expose the status that produced
// them without the caller knowing the concrete type.
type HTTPStatusCoder interface {
	HTTPStatusCode() int
}

func IsRetryableStatus(code int) bool {
	if code == http.StatusRequestTimeout || code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code <= 599
}

// IsRetryable reports whether an outbound HTTP failure is worth another
// attempt: timeouts, transport errors, and retryable statuses.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var sc HTTPStatusCoder
	if errors.As(err, &sc) {
		return IsRetryableStatus(sc.HTTPStatusCode())
	}
	return false
}

// NextDelay computes the pause before retry number attempt (0-based). A
// Retry-After header wins over the exponential schedule; either way the
// result is capped at max and jittered ±20% so stampedes spread out.
func NextDelay(resp *http.Response, attempt int, base, max time.Duration) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	delay := base << uint(attempt)
	if resp != nil {
		if ra := strings.TrimSpace(resp.Header.Get("Retry-After")); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
				delay = time.Duration(secs) * time.Second
			}
		}
	}
	if max > 0 && delay > max {
		delay = max
	}
	return jitter(delay)
}

func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	spread := 0.2
	low := d.Seconds() * (1 - spread)
	high := d.Seconds() * (1 + spread)
	v := low + rand.Float64()*(high-low)
	return time.Duration(v * float64(time.Second))
}
