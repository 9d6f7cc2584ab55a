package models

import "time"

// Pet is a server-owned listing. The client caches it for display only;
// ModifiedAt is shown to the user and never used for conflict detection.
type Pet struct {
	ID          int64     `json:"id"`
	Owner       int64     `json:"owner"`
	Name        string    `json:"name"`
	Species     string    `json:"species"`
	Breed       string    `json:"breed"`
	Age         int       `json:"age"`
	Gender      string    `json:"gender"`
	Description string    `json:"description"`
	Status      PetStatus `json:"status"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	ModifiedAt  time.Time `json:"modified_at"`
}
