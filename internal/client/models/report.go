package models

import "time"

// PetReport is a lost/found/adoption report filed by a user. Moderation
// (Status) gates visibility on the platform; IsResolved marks the real-world
// outcome. The axes are orthogonal: a rejected report can still be resolved,
// an approved one can stay open.
type PetReport struct {
	ID          int64            `json:"id"`
	Reporter    int64            `json:"reporter"`
	PetName     string           `json:"pet_name"`
	Species     string           `json:"species"`
	Breed       string           `json:"breed"`
	Description string           `json:"description"`
	Location    string           `json:"location"`
	Status      ModerationStatus `json:"status"`
	PetStatus   PetStatus        `json:"pet_status"`
	IsResolved  bool             `json:"is_resolved"`
	ImageURL    string           `json:"image_url"`
	CreatedAt   time.Time        `json:"created_at"`
	ModifiedAt  time.Time        `json:"modified_at"`
}
