package models

import "time"

// User is the identity snapshot returned by the user-check endpoint.
// IsStaff gates the admin surfaces (moderation of requests and reports).
type User struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	IsStaff    bool      `json:"is_staff"`
	DateJoined time.Time `json:"date_joined"`
}
