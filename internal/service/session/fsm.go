package session

import (
	"fmt"

	"github.com/salonhq/admin-api/internal/model"
)

// TransitionInput is the context a transition is guarded on.
type TransitionInput struct {
	LineCount             int
	DistinctSpecificStaff int
	// NoneUnassigned: every line carries either a concrete staff member or
	// the "any" choice. "any" lines are auto-assigned when the date is
	// picked; fully unassigned lines block progression.
	NoneUnassigned bool
	// ComboOffered: at least two lines were selected, so the VIP Combo
	// prompt applies before staff selection.
	ComboOffered bool
	// RemovalOffered: a selected service's category prompts for removal
	// add-ons (manicure/pedicure).
	RemovalOffered bool
	Simultaneous   bool
	HasDateTime    bool
	Verified       bool
}

// TransitionError reports a transition rejected by a guard.
type TransitionError struct {
	From   model.SessionState
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot advance from %q: %s", e.From, e.Reason)
}

func rejected(from model.SessionState, reason string) (model.SessionState, error) {
	return from, &TransitionError{From: from, Reason: reason}
}

// NextState is the booking-creation workflow: customer → services →
// optional VIP-combo prompt → optional removal prompt → staff → datetime
// → confirm → done. It is a pure function; callers persist the result.
func NextState(current model.SessionState, in TransitionInput) (model.SessionState, error) {
	switch current {
	case model.StateCustomer:
		return model.StateServices, nil

	case model.StateServices:
		if in.LineCount == 0 {
			return rejected(current, "select at least one service")
		}
		if in.ComboOffered {
			return model.StateComboPrompt, nil
		}
		if in.RemovalOffered {
			return model.StateRemovalPrompt, nil
		}
		return model.StateStaff, nil

	case model.StateComboPrompt:
		if in.RemovalOffered {
			return model.StateRemovalPrompt, nil
		}
		return model.StateStaff, nil

	case model.StateRemovalPrompt:
		return model.StateStaff, nil

	case model.StateStaff:
		if !in.NoneUnassigned {
			return rejected(current, "choose a staff member (or \"any\") for every service")
		}
		if in.Simultaneous && in.DistinctSpecificStaff < 2 {
			return rejected(current, "VIP Combo requires two distinct staff members")
		}
		return model.StateDateTime, nil

	case model.StateDateTime:
		if !in.HasDateTime {
			return rejected(current, "pick a date and start time")
		}
		if !in.Verified {
			return rejected(current, "verify the chosen slot first")
		}
		return model.StateConfirm, nil

	case model.StateConfirm:
		if !in.Verified {
			return rejected(current, "verification is stale, re-verify the slot")
		}
		return model.StateDone, nil

	case model.StateDone:
		return rejected(current, "workflow already finished")
	}

	return rejected(current, "unknown state")
}
