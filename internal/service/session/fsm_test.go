package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonhq/admin-api/internal/model"
)

func advance(t *testing.T, from model.SessionState, in TransitionInput) model.SessionState {
	t.Helper()
	next, err := NextState(from, in)
	require.NoError(t, err)
	return next
}

func TestWorkflowHappyPathSequential(t *testing.T) {
	in := TransitionInput{
		LineCount:             1,
		DistinctSpecificStaff: 1,
		NoneUnassigned:        true,
		HasDateTime:           true,
		Verified:              true,
	}

	state := advance(t, model.StateCustomer, in)
	assert.Equal(t, model.StateServices, state)
	state = advance(t, state, in)
	assert.Equal(t, model.StateStaff, state, "single line skips combo and removal prompts")
	state = advance(t, state, in)
	assert.Equal(t, model.StateDateTime, state)
	state = advance(t, state, in)
	assert.Equal(t, model.StateConfirm, state)
	state = advance(t, state, in)
	assert.Equal(t, model.StateDone, state)
}

func TestWorkflowOffersComboAndRemovalPrompts(t *testing.T) {
	in := TransitionInput{
		LineCount:      2,
		ComboOffered:   true,
		RemovalOffered: true,
	}

	state := advance(t, model.StateServices, in)
	assert.Equal(t, model.StateComboPrompt, state)
	state = advance(t, state, in)
	assert.Equal(t, model.StateRemovalPrompt, state)
	state = advance(t, state, TransitionInput{NoneUnassigned: true})
	assert.Equal(t, model.StateStaff, state)
}

func TestWorkflowGuards(t *testing.T) {
	_, err := NextState(model.StateServices, TransitionInput{LineCount: 0})
	var te *TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, model.StateServices, te.From)

	// staff step requires concrete assignments
	_, err = NextState(model.StateStaff, TransitionInput{LineCount: 1})
	assert.Error(t, err)

	// VIP Combo needs two distinct staff
	_, err = NextState(model.StateStaff, TransitionInput{
		LineCount:             2,
		NoneUnassigned:        true,
		Simultaneous:          true,
		DistinctSpecificStaff: 1,
	})
	assert.Error(t, err)

	// datetime step requires a verified slot
	_, err = NextState(model.StateDateTime, TransitionInput{HasDateTime: true, Verified: false})
	assert.Error(t, err)

	// stale verification blocks confirmation
	_, err = NextState(model.StateConfirm, TransitionInput{Verified: false})
	assert.Error(t, err)

	_, err = NextState(model.StateDone, TransitionInput{})
	assert.Error(t, err)
}
