// Package models defines the resource types cached by the client and the
// status vocabulary shared with the platform API.
package models

import "errors"

// ModerationStatus is the platform-admin decision axis on adoption requests
// and pet reports.
type ModerationStatus string

const (
	StatusPending  ModerationStatus = "pending"
	StatusApproved ModerationStatus = "approved"
	StatusRejected ModerationStatus = "rejected"
)

// OwnerDecision is the pet-owner decision axis on an adoption request.
// It is independent of moderation: an admin approves the request for the
// platform, the owner accepts or declines the adoption itself.
type OwnerDecision string

const (
	DecisionNone     OwnerDecision = ""
	DecisionAccepted OwnerDecision = "accepted"
	DecisionRejected OwnerDecision = "rejected"
)

// PetStatus describes the real-world situation of the animal on a report
// or listing. Orthogonal to moderation and to resolution.
type PetStatus string

const (
	PetLost  PetStatus = "lost"
	PetFound PetStatus = "found"
	PetAdopt PetStatus = "adopt"
)

var ErrIllegalTransition = errors.New("illegal status transition")

// adminTransitions lists the legal moderation edges. Approved and rejected
// are terminal; only delete (an orthogonal lifecycle operation) touches a
// decided record.
var adminTransitions = map[ModerationStatus][]ModerationStatus{
	StatusPending: {StatusApproved, StatusRejected},
}

// CanTransition reports whether a moderation change from one status to
// another is legal. Callers must check this before dispatching a mutation;
// an illegal edge must never reach the network.
func CanTransition(from, to ModerationStatus) bool {
	for _, allowed := range adminTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CheckTransition is CanTransition with an error result, for call sites that
// propagate the failure to the user.
func CheckTransition(from, to ModerationStatus) error {
	if !CanTransition(from, to) {
		return ErrIllegalTransition
	}
	return nil
}
