package google

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/domain"
)

// Common Google API errors.
var (
	// ErrUnauthorized indicates invalid or expired credentials.
	ErrUnauthorized = errors.New("google: unauthorised (invalid credentials)")

	// ErrForbidden indicates insufficient permissions.
	ErrForbidden = errors.New("google: forbidden (insufficient permissions)")

	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = errors.New("google: resource not found")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("google: rate limit exceeded")
)

// IsUnauthorized returns true if the error indicates invalid credentials.
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, domain.ErrAuthInvalid) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusUnauthorized
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) || errors.Is(err, domain.ErrRateLimited) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests
	}
	return false
}

// WrapError converts a Google API error to a more specific error type.
// Auth and throttling failures additionally carry the domain sentinel so
// the pipeline's failure taxonomy applies to fetching too.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	switch gerr.Code {
	case http.StatusUnauthorized:
		return errors.Join(ErrUnauthorized, domain.ErrAuthInvalid)
	case http.StatusForbidden:
		return errors.Join(ErrForbidden, domain.ErrAuthInvalid)
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return errors.Join(ErrRateLimited, domain.ErrRateLimited)
	default:
		return err
	}
}
