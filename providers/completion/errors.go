package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrAuth reports missing or rejected credentials. Fatal.
	ErrAuth = errors.New("completion: authentication failed")

	// ErrConfig reports a request the backend will never accept (unknown model,
	// unknown tier, malformed request). Fatal.
	ErrConfig = errors.New("completion: invalid configuration")

	// ErrRateLimited reports throttling by the backend. Transient.
	ErrRateLimited = errors.New("completion: rate limited")

	// ErrTimeout reports a call that did not finish in time. Transient.
	ErrTimeout = errors.New("completion: timed out")

	// ErrUnavailable reports any other service-side or transport failure. Transient.
	ErrUnavailable = errors.New("completion: service unavailable")
)

// Error is a classified completion failure. Kind is one of the package
// sentinels; Err is the underlying cause, if any.
type Error struct {
	Kind       error
	StatusCode int
	Provider   string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Provider != "" {
		b.WriteString(e.Provider)
		b.WriteString(": ")
	}
	if e.Kind != nil {
		b.WriteString(strings.TrimPrefix(e.Kind.Error(), "completion: "))
	} else {
		b.WriteString("request failed")
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the sentinel kind and the underlying cause.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// FromStatus classifies a non-2xx HTTP response.
//
//	401, 403           -> ErrAuth
//	400, 404, 422      -> ErrConfig
//	429                -> ErrRateLimited
//	408, 504           -> ErrTimeout
//	other 5xx, 529     -> ErrUnavailable
//
// Any other status is treated as a configuration problem.
func FromStatus(provider string, status int, body string) error {
	var kind error
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = ErrAuth
	case status == http.StatusTooManyRequests:
		kind = ErrRateLimited
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		kind = ErrTimeout
	case status >= 500:
		kind = ErrUnavailable
	default:
		kind = ErrConfig
	}

	var cause error
	if body = strings.TrimSpace(body); body != "" {
		cause = errors.New(truncate(body, 300))
	}
	return &Error{Kind: kind, StatusCode: status, Provider: provider, Err: cause}
}

// Classify returns err unchanged when it already carries a sentinel, and
// otherwise wraps it: an expired deadline becomes ErrTimeout, anything else
// ErrUnavailable. Cancellation by the caller is returned as is.
func Classify(provider string, err error) error {
	switch {
	case err == nil:
		return nil
	case classified(err):
		return err
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: ErrTimeout, Provider: provider, Err: err}
	default:
		return &Error{Kind: ErrUnavailable, Provider: provider, Err: err}
	}
}

// IsFatal reports whether err must abort a repair session.
func IsFatal(err error) bool {
	return errors.Is(err, ErrAuth) || errors.Is(err, ErrConfig)
}

// IsTransient reports whether err may be retried within the attempt budget.
func IsTransient(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTimeout) || errors.Is(err, ErrUnavailable)
}

func classified(err error) bool {
	return IsFatal(err) || IsTransient(err)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
