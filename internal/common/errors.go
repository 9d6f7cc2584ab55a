// Package common defines shared constants and sentinel errors used across
// the pawhub client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository/cache-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
)
