package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrTimeout marks a request that exceeded the gateway deadline.
	// Retryable by the user, never retried automatically.
	ErrTimeout = errors.New("request timed out")

	// ErrSessionExpired is the canonical mapping of any 401, regardless of
	// payload. The gateway never attempts a silent token refresh; refresh is
	// an explicit session operation.
	ErrSessionExpired = errors.New("session expired")

	// ErrUnknown covers responses that do not parse as JSON (HTML error
	// pages included). The raw body is never surfaced to the user.
	ErrUnknown = errors.New("unexpected server error")
)

// ValidationError is a 4xx whose payload keys error-message lists by field.
type ValidationError struct {
	Fields map[string][]string
}

// Error composes one clause per offending field, fields in stable order.
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]string, 0, len(keys))
	for _, k := range keys {
		clauses = append(clauses, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], ", ")))
	}
	return strings.Join(clauses, "; ")
}

// DomainError is any other non-2xx carrying a human-readable string under
// one of the conventional keys. Detail is surfaced to the user verbatim.
type DomainError struct {
	StatusCode int
	Detail     string
}

func (e *DomainError) Error() string { return e.Detail }

// flatKeys are tried in priority order when normalizing an error payload.
var flatKeys = []string{"detail", "message", "error"}

// NormalizeError converts a non-2xx response body into one error from the
// taxonomy. The payload shape varies between endpoints, so each known shape
// is tried in order:
//
//  1. a flat object with a detail/message/error string,
//  2. a field-keyed map of validation-message arrays,
//  3. anything else (HTML pages, empty bodies) becomes ErrUnknown.
//
// The result is always a single non-empty, markup-free message.
func NormalizeError(statusCode int, body []byte) error {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil || len(payload) == 0 {
		return fmt.Errorf("status %d: %w", statusCode, ErrUnknown)
	}

	for _, key := range flatKeys {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		var detail string
		if err := json.Unmarshal(raw, &detail); err == nil && detail != "" {
			return &DomainError{StatusCode: statusCode, Detail: detail}
		}
	}

	fields := make(map[string][]string)
	for key, raw := range payload {
		var msgs []string
		if err := json.Unmarshal(raw, &msgs); err == nil && len(msgs) > 0 {
			fields[key] = msgs
			continue
		}
		var msg string
		if err := json.Unmarshal(raw, &msg); err == nil && msg != "" {
			fields[key] = []string{msg}
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	return fmt.Errorf("status %d: %w", statusCode, ErrUnknown)
}
