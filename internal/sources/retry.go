package sources

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Epistemic-Technology/pdf-organizer/internal/logger"
)

const (
	defaultRequestsPerSecond = 2
	defaultBurst             = 4
	defaultBaseRetryDelay    = 1 * time.Second
	defaultMaxRetryDelay     = 30 * time.Second
)

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Temporary reports whether the request may succeed when repeated.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Limiter throttles remote fetches with a token bucket and retries
// throttled or failing requests with exponential backoff. It is safe for
// concurrent use and is meant to be shared by every fetch of a process.
type Limiter struct {
	limiter        *rate.Limiter
	maxRetries     int
	baseRetryDelay time.Duration
	maxRetryDelay  time.Duration
}

type LimiterConfig struct {
	RequestsPerSecond float64
	Burst             int
	// MaxRetries of zero disables retries; the config layer defaults it to 3.
	MaxRetries        int
	BaseRetryDelay    time.Duration
	MaxRetryDelay     time.Duration
}

func NewLimiter(conf LimiterConfig) *Limiter {
	if conf.RequestsPerSecond <= 0 {
		conf.RequestsPerSecond = defaultRequestsPerSecond
	}
	if conf.Burst < 1 {
		conf.Burst = defaultBurst
	}
	if conf.MaxRetries < 0 {
		conf.MaxRetries = 0
	}
	if conf.BaseRetryDelay <= 0 {
		conf.BaseRetryDelay = defaultBaseRetryDelay
	}
	if conf.MaxRetryDelay <= 0 {
		conf.MaxRetryDelay = defaultMaxRetryDelay
	}

	return &Limiter{
		limiter:        rate.NewLimiter(rate.Limit(conf.RequestsPerSecond), conf.Burst),
		maxRetries:     conf.MaxRetries,
		baseRetryDelay: conf.BaseRetryDelay,
		maxRetryDelay:  conf.MaxRetryDelay,
	}
}

// backoff returns the delay before retry attempt n (1-based).
func (l *Limiter) backoff(attempt int) time.Duration {
	delay := time.Duration(float64(l.baseRetryDelay) * math.Pow(2, float64(attempt-1)))
	if delay > l.maxRetryDelay {
		delay = l.maxRetryDelay
	}
	return delay
}

// Do runs fn once the limiter admits it, retrying temporary failures.
// Every attempt, retries included, consumes a token.
func Do[T any](ctx context.Context, l *Limiter, log logger.Logger, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	var lastErr error
	for attempt := 0; attempt <= l.maxRetries; attempt++ {
		if attempt > 0 {
			delay := l.backoff(attempt)
			log.Info("Retry attempt %d/%d after %v delay", attempt, l.maxRetries, delay)

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}

		if err := l.limiter.Wait(ctx); err != nil {
			return zero, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		result, err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				log.Info("Retry succeeded on attempt %d", attempt)
			}
			return result, nil
		}

		lastErr = err
		if !isTemporary(err) {
			return zero, err
		}

		log.Warn("Temporary fetch failure on attempt %d/%d: %v", attempt+1, l.maxRetries+1, err)
	}

	return zero, fmt.Errorf("max retries (%d) exceeded, last error: %w", l.maxRetries, lastErr)
}

// isTemporary recognises retryable failures. Errors from the Zotero client
// carry the HTTP status only in their message.
func isTemporary(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}

	msg := err.Error()
	for _, marker := range []string{"429", "Too Many Requests", "rate limit", "503", "502"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
