package model

import (
	"github.com/google/uuid"
)

// DefaultBufferTime is the cleanup/prep time, in minutes, appended after a
// service when the service does not specify its own buffer. Confirmed as a
// business default, not a placeholder.
const DefaultBufferTime = 15

type ServiceStatus string

const (
	ServiceStatusActive   ServiceStatus = "active"
	ServiceStatusInactive ServiceStatus = "inactive"
)

// Service is a bookable salon service (manicure, pedicure, ...).
type Service struct {
	Base
	CategoryID  uuid.UUID     `db:"category_id" json:"category_id"`
	Name        string        `db:"name" json:"name"`
	Description string        `db:"description" json:"description"`
	Duration    int           `db:"duration" json:"duration"` // in minutes
	Price       float64       `db:"price" json:"price"`
	BufferTime  *int          `db:"buffer_time" json:"buffer_time,omitempty"` // minutes, nil = DefaultBufferTime
	Status      ServiceStatus `db:"status" json:"status"`
}

// EffectiveBuffer returns the buffer time in minutes, applying the
// default when the service does not carry one.
func (s *Service) EffectiveBuffer() int {
	if s.BufferTime != nil {
		return *s.BufferTime
	}
	return DefaultBufferTime
}

// ServiceCategory groups services. RequiresRemovalPrompt marks categories
// (manicure/pedicure) whose booking flow offers removal add-ons.
type ServiceCategory struct {
	Base
	Name                  string `db:"name" json:"name"`
	RequiresRemovalPrompt bool   `db:"requires_removal_prompt" json:"requires_removal_prompt"`
}

type CreateServiceRequest struct {
	CategoryID  string  `json:"category_id" binding:"required,uuid"`
	Name        string  `json:"name" binding:"required,max=255"`
	Description string  `json:"description" binding:"max=1000"`
	Duration    int     `json:"duration" binding:"required,gt=0"`
	Price       float64 `json:"price" binding:"required,gte=0"`
	BufferTime  *int    `json:"buffer_time" binding:"omitempty,gte=0"`
}

type UpdateServiceRequest struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Duration    *int           `json:"duration"`
	Price       *float64       `json:"price"`
	BufferTime  *int           `json:"buffer_time"`
	Status      *ServiceStatus `json:"status"`
}

type ServiceFilters struct {
	CategoryID uuid.UUID
	Status     ServiceStatus
	SearchTerm string
}
