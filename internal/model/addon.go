package model

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// AddOn is an optional extra attached to a service line. Removal add-ons
// (taking off prior product) are a special kind applied only to the first
// service of a plan.
type AddOn struct {
	Base
	Name           string  `db:"name" json:"name"`
	Price          float64 `db:"price" json:"price"`
	AdditionalTime *int    `db:"additional_time" json:"additional_time,omitempty"` // minutes, nil = 0
	IsActive       bool    `db:"is_active" json:"is_active"`
	Removal        bool    `db:"removal" json:"removal"`
	// CompatibleServiceIDs restricts which services this add-on can attach
	// to. Empty or nil means compatible with every service.
	CompatibleServiceIDs pq.StringArray `db:"compatible_service_ids" json:"compatible_service_ids,omitempty"`
}

// ExtraMinutes returns the add-on's additional time, treating an unset
// value as zero.
func (a *AddOn) ExtraMinutes() int {
	if a.AdditionalTime != nil {
		return *a.AdditionalTime
	}
	return 0
}

// CompatibleWith reports whether the add-on can attach to the given service.
func (a *AddOn) CompatibleWith(serviceID uuid.UUID) bool {
	if len(a.CompatibleServiceIDs) == 0 {
		return true
	}
	for _, id := range a.CompatibleServiceIDs {
		if id == serviceID.String() {
			return true
		}
	}
	return false
}

type CreateAddOnRequest struct {
	Name                 string   `json:"name" binding:"required,max=255"`
	Price                float64  `json:"price" binding:"gte=0"`
	AdditionalTime       *int     `json:"additional_time" binding:"omitempty,gte=0"`
	Removal              bool     `json:"removal"`
	CompatibleServiceIDs []string `json:"compatible_service_ids" binding:"omitempty,dive,uuid"`
}

type UpdateAddOnRequest struct {
	Name                 *string  `json:"name"`
	Price                *float64 `json:"price"`
	AdditionalTime       *int     `json:"additional_time"`
	IsActive             *bool    `json:"is_active"`
	CompatibleServiceIDs []string `json:"compatible_service_ids"`
}

type AddOnFilters struct {
	Removal    *bool
	ActiveOnly bool
	ServiceID  uuid.UUID
}
