package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from ModerationStatus
		to   ModerationStatus
		want bool
	}{
		{"pending to approved", StatusPending, StatusApproved, true},
		{"pending to rejected", StatusPending, StatusRejected, true},
		{"approved is terminal", StatusApproved, StatusRejected, false},
		{"rejected is terminal", StatusRejected, StatusApproved, false},
		{"no way back to pending", StatusApproved, StatusPending, false},
		{"self transition", StatusPending, StatusPending, false},
		{"unknown status", ModerationStatus("archived"), StatusApproved, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestCheckTransition(t *testing.T) {
	require.NoError(t, CheckTransition(StatusPending, StatusApproved))

	err := CheckTransition(StatusApproved, StatusRejected)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrIllegalTransition))
}
