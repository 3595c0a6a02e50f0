package model

import (
	"time"

	"github.com/google/uuid"
)

// AssignmentKind discriminates StaffAssignment. A line must reach
// AssignmentSpecific before availability can be resolved or the plan
// submitted.
type AssignmentKind string

const (
	AssignmentUnassigned AssignmentKind = "unassigned"
	AssignmentAny        AssignmentKind = "any"
	AssignmentSpecific   AssignmentKind = "specific"
)

// StaffAssignment is the staff choice for one service line: not chosen
// yet, "any" (auto-assign at slot selection), or a concrete member.
type StaffAssignment struct {
	Kind    AssignmentKind `json:"kind"`
	StaffID uuid.UUID      `json:"staff_id,omitempty"`
}

func UnassignedStaff() StaffAssignment {
	return StaffAssignment{Kind: AssignmentUnassigned}
}

func AnyStaff() StaffAssignment {
	return StaffAssignment{Kind: AssignmentAny}
}

func SpecificStaff(id uuid.UUID) StaffAssignment {
	return StaffAssignment{Kind: AssignmentSpecific, StaffID: id}
}

// IsSpecific reports whether a concrete staff member has been resolved.
func (a StaffAssignment) IsSpecific() bool {
	return a.Kind == AssignmentSpecific && a.StaffID != uuid.Nil
}

// SelectedServiceLine is one service chosen during a booking-creation
// session, with its add-ons and staff assignment. The service and add-on
// records are snapshotted into the session so the scheduling engine works
// on consistent data for the whole workflow.
type SelectedServiceLine struct {
	Service Service         `json:"service"`
	AddOns  []AddOn         `json:"addons,omitempty"`
	Staff   StaffAssignment `json:"staff"`
}

// SessionState names a step of the booking-creation workflow.
type SessionState string

const (
	StateCustomer      SessionState = "customer"
	StateServices      SessionState = "services"
	StateComboPrompt   SessionState = "combo_prompt"
	StateRemovalPrompt SessionState = "removal_prompt"
	StateStaff         SessionState = "staff"
	StateDateTime      SessionState = "datetime"
	StateConfirm       SessionState = "confirm"
	StateDone          SessionState = "done"
)

// BookingSession holds one booking-creation workflow's state. It lives in
// Redis with a TTL and is discarded on cancel or expiry; only successful
// submission turns its drafts into persisted bookings.
type BookingSession struct {
	ID           uuid.UUID             `json:"id"`
	State        SessionState          `json:"state"`
	CustomerID   uuid.UUID             `json:"customer_id"`
	Lines        []SelectedServiceLine `json:"lines,omitempty"`
	RemovalIDs   []uuid.UUID           `json:"removal_ids,omitempty"`
	Simultaneous bool                  `json:"simultaneous"`
	Date         time.Time             `json:"date,omitempty"`
	StartTime    time.Time             `json:"start_time,omitempty"`
	Notes        string                `json:"notes,omitempty"`
	// Verified is set by a successful overlap check and cleared by any
	// change to date, time, staff, services or mode. Submission requires it.
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RemovalSet returns the selected removal add-on IDs as a set.
func (s *BookingSession) RemovalSet() map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(s.RemovalIDs))
	for _, id := range s.RemovalIDs {
		set[id] = struct{}{}
	}
	return set
}

// DistinctSpecificStaff counts distinct concrete staff members across the
// session's lines. VIP Combo requires at least two.
func (s *BookingSession) DistinctSpecificStaff() int {
	seen := make(map[uuid.UUID]struct{})
	for _, line := range s.Lines {
		if line.Staff.IsSpecific() {
			seen[line.Staff.StaffID] = struct{}{}
		}
	}
	return len(seen)
}

// AllStaffSpecific reports whether every line carries a concrete staff
// member.
func (s *BookingSession) AllStaffSpecific() bool {
	for _, line := range s.Lines {
		if !line.Staff.IsSpecific() {
			return false
		}
	}
	return len(s.Lines) > 0
}
