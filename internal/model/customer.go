package model

type Customer struct {
	Base
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email,omitempty"`
	Phone     string `db:"phone" json:"phone"`
	Notes     string `db:"notes" json:"notes,omitempty"`
}

type CreateCustomerRequest struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"max=100"`
	Email     string `json:"email" binding:"omitempty,email"`
	Phone     string `json:"phone" binding:"required,max=20"`
	Notes     string `json:"notes" binding:"max=1000"`
}

type UpdateCustomerRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Notes     *string `json:"notes"`
}

type CustomerFilters struct {
	SearchTerm string
}
