package models

import "time"

// PaymentStatus values for tuition payments.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

// Payment represents a tuition payment made by a student.
type Payment struct {
	ID          string     `db:"id" json:"id"`
	StudentID   string     `db:"student_id" json:"student_id"`
	AmountCents int64      `db:"amount_cents" json:"amount_cents"`
	Currency    string     `db:"currency" json:"currency"`
	Method      string     `db:"method" json:"method"`
	Status      string     `db:"status" json:"status"`
	Reference   string     `db:"reference" json:"reference"`
	PaidAt      *time.Time `db:"paid_at" json:"paid_at,omitempty"`
	Notes       string     `db:"notes" json:"notes"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// PaymentFilter encapsulates search parameters for listing payments.
type PaymentFilter struct {
	StudentID string
	Status    string
	Page      int
	PageSize  int
}

// PaymentStatusTotal aggregates payment amounts per status.
type PaymentStatusTotal struct {
	Status     string `db:"status" json:"status"`
	Count      int    `db:"count" json:"count"`
	TotalCents int64  `db:"total_cents" json:"total_cents"`
}

// PaymentMonthlyTotal aggregates paid amounts per calendar month.
type PaymentMonthlyTotal struct {
	Month      string `db:"month" json:"month"`
	TotalCents int64  `db:"total_cents" json:"total_cents"`
}
