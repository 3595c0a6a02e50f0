package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/salonhq/admin-api/internal/model"
)

func intPtr(v int) *int { return &v }

func TestBookingTotals(t *testing.T) {
	svc := &model.Service{
		Name:     "Gel Manicure",
		Duration: 45,
		Price:    40,
	}
	french := &model.AddOn{Name: "French Tips", Price: 10, AdditionalTime: intPtr(15)}
	art := &model.AddOn{Name: "Nail Art", Price: 12}

	duration, price := bookingTotals(svc, []*model.AddOn{french, art})

	// 45 + 15 add-on minutes + default buffer; both add-on prices counted.
	assert.Equal(t, 45+15+model.DefaultBufferTime, duration)
	assert.InDelta(t, 40+10+12, price, 0.001)
}

func TestBookingTotalsNoAddOns(t *testing.T) {
	svc := &model.Service{
		Name:       "Pedicure",
		Duration:   60,
		Price:      55,
		BufferTime: intPtr(0),
	}

	duration, price := bookingTotals(svc, nil)

	assert.Equal(t, 60, duration)
	assert.InDelta(t, 55, price, 0.001)
}
