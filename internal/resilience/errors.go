package resilience

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
)

// StatusError carries an HTTP status from an external API so the retry
// policy can classify it.
type StatusError struct {
	Service string
	Status  int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: http status %d", e.Service, e.Status)
}

// IsTransient reports whether an error is worth retrying: network timeouts,
// connection resets/refusals, and rate-limit or server-side HTTP statuses.
// Anything else (bad request, auth failure, parse error) is permanent.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.Status == http.StatusTooManyRequests:
			return true
		case statusErr.Status >= 500:
			return true
		default:
			return false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	// Unwrapped transport failures (DNS, dial) arrive as *net.OpError.
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
