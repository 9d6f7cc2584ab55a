package models

import "time"

// AdoptionRequest carries two independent decision axes: Status is set by a
// platform admin (moderation), OwnerDecision by the pet owner (the adoption
// outcome). The two must never be collapsed into one field.
type AdoptionRequest struct {
	ID            int64            `json:"id"`
	Pet           int64            `json:"pet"`
	PetName       string           `json:"pet_name"`
	Requester     int64            `json:"requester"`
	RequesterName string           `json:"requester_name"`
	Message       string           `json:"message"`
	Status        ModerationStatus `json:"status"`
	OwnerDecision OwnerDecision    `json:"owner_decision"`
	CreatedAt     time.Time        `json:"created_at"`
	ModifiedAt    time.Time        `json:"modified_at"`
}
