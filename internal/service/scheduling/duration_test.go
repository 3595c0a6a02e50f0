package scheduling

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/salonhq/admin-api/internal/model"
)

func intPtr(v int) *int { return &v }

func testService(name string, duration int, price float64, buffer *int) model.Service {
	svc := model.Service{
		Name:       name,
		Duration:   duration,
		Price:      price,
		BufferTime: buffer,
		Status:     model.ServiceStatusActive,
	}
	svc.ID = uuid.New()
	return svc
}

func testAddOn(name string, price float64, extra *int, removal bool) model.AddOn {
	addOn := model.AddOn{
		Name:           name,
		Price:          price,
		AdditionalTime: extra,
		IsActive:       true,
		Removal:        removal,
	}
	addOn.ID = uuid.New()
	return addOn
}

func TestComputeTotals(t *testing.T) {
	gelAddOn := testAddOn("Gel Finish", 10, intPtr(10), false)
	artAddOn := testAddOn("Nail Art", 15, intPtr(20), false)

	lines := []model.SelectedServiceLine{
		{Service: testService("Manicure", 30, 25, nil), AddOns: []model.AddOn{gelAddOn}},
		{Service: testService("Pedicure", 45, 35, nil), AddOns: []model.AddOn{artAddOn}},
	}

	removal := testAddOn("Gel Removal", 5, intPtr(15), true)
	selected := map[uuid.UUID]struct{}{removal.ID: {}}

	totals := ComputeTotals(lines, []model.AddOn{removal}, selected)
	assert.Equal(t, 30+10+45+20+15, totals.Duration)
	assert.Equal(t, 25.0+10+35+15+5, totals.Price)
}

func TestComputeTotalsMissingValuesTreatedAsZero(t *testing.T) {
	lines := []model.SelectedServiceLine{
		{
			Service: testService("Manicure", 30, 25, nil),
			AddOns:  []model.AddOn{testAddOn("Polish Change", 8, nil, false)},
		},
	}

	totals := ComputeTotals(lines, nil, nil)
	assert.Equal(t, 30, totals.Duration)
	assert.Equal(t, 33.0, totals.Price)
}

func TestComputeTotalsUnselectedRemovalsIgnored(t *testing.T) {
	lines := []model.SelectedServiceLine{
		{Service: testService("Manicure", 30, 25, nil)},
	}
	removal := testAddOn("Acrylic Removal", 12, intPtr(25), true)

	totals := ComputeTotals(lines, []model.AddOn{removal}, map[uuid.UUID]struct{}{})
	assert.Equal(t, 30, totals.Duration)
	assert.Equal(t, 25.0, totals.Price)
}

func TestComputeTotalsAddRemoveAddHasNoDrift(t *testing.T) {
	base := model.SelectedServiceLine{Service: testService("Manicure", 30, 25, nil)}
	addOn := testAddOn("Gel Finish", 10, intPtr(10), false)

	before := ComputeTotals([]model.SelectedServiceLine{base}, nil, nil)

	withAddOn := base
	withAddOn.AddOns = []model.AddOn{addOn}
	during := ComputeTotals([]model.SelectedServiceLine{withAddOn}, nil, nil)
	assert.Greater(t, during.Duration, before.Duration)
	assert.Greater(t, during.Price, before.Price)

	after := ComputeTotals([]model.SelectedServiceLine{base}, nil, nil)
	assert.Equal(t, before, after)
}

func TestComputeTotalsOrderIndependent(t *testing.T) {
	a := model.SelectedServiceLine{Service: testService("Manicure", 30, 25, nil)}
	b := model.SelectedServiceLine{Service: testService("Pedicure", 45, 35, nil)}

	assert.Equal(t,
		ComputeTotals([]model.SelectedServiceLine{a, b}, nil, nil),
		ComputeTotals([]model.SelectedServiceLine{b, a}, nil, nil),
	)
}
