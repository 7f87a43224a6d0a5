package models

import "time"

// Referral represents a referral partner sending candidates our way.
type Referral struct {
	ID             string    `db:"id" json:"id"`
	PartnerName    string    `db:"partner_name" json:"partner_name"`
	ContactName    string    `db:"contact_name" json:"contact_name"`
	Email          string    `db:"email" json:"email"`
	Phone          string    `db:"phone" json:"phone"`
	CommissionRate float64   `db:"commission_rate" json:"commission_rate"`
	Active         bool      `db:"active" json:"active"`
	Notes          string    `db:"notes" json:"notes"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// ReferralFilter encapsulates search parameters for listing referral partners.
type ReferralFilter struct {
	Search   string
	Active   *bool
	Page     int
	PageSize int
}
