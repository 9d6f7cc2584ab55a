package models

import "time"

// Notification is created server-side whenever an admin or owner decides a
// request or report. The client never fabricates one; it only renders,
// marks read, and deletes.
type Notification struct {
	ID        int64     `json:"id"`
	Recipient int64     `json:"recipient"`
	Verb      string    `json:"verb"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
