package scheduling

import (
	"github.com/google/uuid"

	"github.com/salonhq/admin-api/internal/model"
)

// Totals is the aggregate time and price of a whole booking plan.
type Totals struct {
	Duration int     `json:"duration"` // minutes, buffers excluded
	Price    float64 `json:"price"`
}

// ComputeTotals sums service time and price across the selected lines,
// their add-ons, and the selected removal add-ons. Pure and
// order-independent; unset add-on times and prices count as zero.
func ComputeTotals(lines []model.SelectedServiceLine, removalAddOns []model.AddOn, selectedRemovalIDs map[uuid.UUID]struct{}) Totals {
	var t Totals
	for _, line := range lines {
		t.Duration += LineDuration(line)
		t.Price += LinePrice(line)
	}
	for _, addOn := range removalAddOns {
		if _, ok := selectedRemovalIDs[addOn.ID]; ok {
			t.Duration += addOn.ExtraMinutes()
			t.Price += addOn.Price
		}
	}
	return t
}

// LineDuration is a single line's service time plus its add-on times, in
// minutes. Buffer time is not part of it.
func LineDuration(line model.SelectedServiceLine) int {
	d := line.Service.Duration
	for _, addOn := range line.AddOns {
		d += addOn.ExtraMinutes()
	}
	return d
}

// LinePrice is a single line's service price plus its add-on prices.
func LinePrice(line model.SelectedServiceLine) float64 {
	p := line.Service.Price
	for _, addOn := range line.AddOns {
		p += addOn.Price
	}
	return p
}

// RemovalMinutes sums the additional time of the selected removal
// add-ons. Removals attach only to the first line of a plan.
func RemovalMinutes(removalAddOns []model.AddOn, selectedRemovalIDs map[uuid.UUID]struct{}) int {
	var m int
	for _, addOn := range removalAddOns {
		if _, ok := selectedRemovalIDs[addOn.ID]; ok {
			m += addOn.ExtraMinutes()
		}
	}
	return m
}
