package models

import "time"

// LeadStatus values track a marketing lead through the funnel.
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusQualified = "qualified"
	LeadStatusConverted = "converted"
	LeadStatusLost      = "lost"
)

// LeadNumberFormat renders the human-readable sequence identifier.
const LeadNumberFormat = "LEAD-%04d"

// Lead represents a marketing enquiry that may convert into a student.
type Lead struct {
	ID         string    `db:"id" json:"id"`
	LeadNumber string    `db:"lead_number" json:"lead_number"`
	FullName   string    `db:"full_name" json:"full_name"`
	Email      string    `db:"email" json:"email"`
	Phone      string    `db:"phone" json:"phone"`
	Source     string    `db:"source" json:"source"`
	Status     string    `db:"status" json:"status"`
	AssignedTo *string   `db:"assigned_to" json:"assigned_to,omitempty"`
	Notes      string    `db:"notes" json:"notes"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// LeadFilter encapsulates search parameters for listing leads.
type LeadFilter struct {
	Search   string
	Status   string
	Source   string
	Page     int
	PageSize int
}
