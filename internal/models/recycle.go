package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Collection names that participate in the recycle bin. The set is closed:
// restore dispatch refuses anything outside it.
const (
	TableStudents  = "students"
	TableCourses   = "courses"
	TableLeads     = "leads"
	TableReferrals = "referrals"
	TablePayments  = "payments"
)

// KnownTable reports whether a collection is soft-deletable.
func KnownTable(name string) bool {
	switch name {
	case TableStudents, TableCourses, TableLeads, TableReferrals, TablePayments:
		return true
	}
	return false
}

// RecycleBinRecord is a holding-area entry capturing a deleted row.
// It is mutated at most twice: restored_at or permanently_deleted_at is set
// exactly once, and the two are mutually exclusive terminal states.
type RecycleBinRecord struct {
	ID                   string          `db:"id" json:"id"`
	OriginalTable        string          `db:"original_table" json:"original_table"`
	OriginalID           string          `db:"original_id" json:"original_id"`
	RecordData           json.RawMessage `db:"record_data" json:"record_data"`
	DeletedAt            time.Time       `db:"deleted_at" json:"deleted_at"`
	DeletedBy            *string         `db:"deleted_by" json:"deleted_by,omitempty"`
	RestoredAt           *time.Time      `db:"restored_at" json:"restored_at,omitempty"`
	PermanentlyDeletedAt *time.Time      `db:"permanently_deleted_at" json:"permanently_deleted_at,omitempty"`
}

// Active reports whether the record is still restorable.
func (r *RecycleBinRecord) Active() bool {
	return r.RestoredAt == nil && r.PermanentlyDeletedAt == nil
}

// RecordSnapshot is a tagged union over the soft-deletable collections.
// Exactly one variant is non-nil and matches Table. At the persistence
// boundary the snapshot is stored as the plain row JSON of the original
// collection; the tag travels in the original_table column.
type RecordSnapshot struct {
	Table    string
	Student  *Student
	Course   *Course
	Lead     *Lead
	Referral *Referral
	Payment  *Payment
}

// SnapshotOfStudent wraps a student row.
func SnapshotOfStudent(s *Student) *RecordSnapshot {
	return &RecordSnapshot{Table: TableStudents, Student: s}
}

// SnapshotOfCourse wraps a course row.
func SnapshotOfCourse(c *Course) *RecordSnapshot {
	return &RecordSnapshot{Table: TableCourses, Course: c}
}

// SnapshotOfLead wraps a lead row.
func SnapshotOfLead(l *Lead) *RecordSnapshot {
	return &RecordSnapshot{Table: TableLeads, Lead: l}
}

// SnapshotOfReferral wraps a referral row.
func SnapshotOfReferral(r *Referral) *RecordSnapshot {
	return &RecordSnapshot{Table: TableReferrals, Referral: r}
}

// SnapshotOfPayment wraps a payment row.
func SnapshotOfPayment(p *Payment) *RecordSnapshot {
	return &RecordSnapshot{Table: TablePayments, Payment: p}
}

// EntityID returns the identifier of the wrapped row.
func (s *RecordSnapshot) EntityID() string {
	switch s.Table {
	case TableStudents:
		return s.Student.ID
	case TableCourses:
		return s.Course.ID
	case TableLeads:
		return s.Lead.ID
	case TableReferrals:
		return s.Referral.ID
	case TablePayments:
		return s.Payment.ID
	}
	return ""
}

// DisplayName extracts a human-readable label for recycle bin listings.
// This is the only field the system ever interprets inside a snapshot.
func (s *RecordSnapshot) DisplayName() string {
	switch s.Table {
	case TableStudents:
		return s.Student.FullName
	case TableCourses:
		return s.Course.Name
	case TableLeads:
		return s.Lead.FullName
	case TableReferrals:
		return s.Referral.PartnerName
	case TablePayments:
		return s.Payment.Reference
	}
	return ""
}

// Encode serialises the wrapped row to its storage JSON.
func (s *RecordSnapshot) Encode() (json.RawMessage, error) {
	var v interface{}
	switch s.Table {
	case TableStudents:
		v = s.Student
	case TableCourses:
		v = s.Course
	case TableLeads:
		v = s.Lead
	case TableReferrals:
		v = s.Referral
	case TablePayments:
		v = s.Payment
	default:
		return nil, fmt.Errorf("encode snapshot: unknown table %q", s.Table)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot for %s: %w", s.Table, err)
	}
	return raw, nil
}

// DecodeSnapshot parses stored row JSON back into the typed variant selected
// by the original_table tag.
func DecodeSnapshot(table string, raw json.RawMessage) (*RecordSnapshot, error) {
	snapshot := &RecordSnapshot{Table: table}
	var dest interface{}
	switch table {
	case TableStudents:
		snapshot.Student = &Student{}
		dest = snapshot.Student
	case TableCourses:
		snapshot.Course = &Course{}
		dest = snapshot.Course
	case TableLeads:
		snapshot.Lead = &Lead{}
		dest = snapshot.Lead
	case TableReferrals:
		snapshot.Referral = &Referral{}
		dest = snapshot.Referral
	case TablePayments:
		snapshot.Payment = &Payment{}
		dest = snapshot.Payment
	default:
		return nil, fmt.Errorf("decode snapshot: unknown table %q", table)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return nil, fmt.Errorf("decode snapshot for %s: %w", table, err)
	}
	return snapshot, nil
}

// RecycleBinListItem augments a holding record with the display name
// extracted from its snapshot.
type RecycleBinListItem struct {
	RecycleBinRecord
	DisplayName string `json:"display_name"`
}
