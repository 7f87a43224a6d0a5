package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionCreate  = "CREATE"
	AuditActionUpdate  = "UPDATE"
	AuditActionDelete  = "DELETE"
	AuditActionRestore = "RESTORE"
	AuditActionPurge   = "PURGE"
	AuditActionLogin   = "LOGIN"
	AuditActionLogout  = "LOGOUT"
)

// AuditSeverity levels for log entries.
const (
	AuditSeverityInfo     = "info"
	AuditSeverityWarning  = "warning"
	AuditSeverityCritical = "critical"
)

// ScrubbedUserEmail replaces the email of entries whose user has been
// deleted, so the trail stays readable without a dangling reference.
const ScrubbedUserEmail = "<deleted user>"

// AuditLog represents an audit trail record. Entries are append-only; the
// only permitted mutation is the user scrub performed before a user account
// is deleted.
type AuditLog struct {
	ID        string    `db:"id" json:"id"`
	UserID    *string   `db:"user_id" json:"user_id,omitempty"`
	UserEmail string    `db:"user_email" json:"user_email"`
	Action    string    `db:"action" json:"action"`
	TableName string    `db:"table_name" json:"table_name"`
	RecordID  *string   `db:"record_id" json:"record_id,omitempty"`
	OldValues []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress string    `db:"ip_address" json:"ip_address"`
	UserAgent string    `db:"user_agent" json:"user_agent"`
	Severity  string    `db:"severity" json:"severity"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AuditLogFilter captures the query surface for audit listings.
type AuditLogFilter struct {
	TableName string
	Action    string
	Severity  string
	Page      int
	PageSize  int
}
