package models

import "time"

// StudentStatus tracks a student's progress through a programme.
const (
	StudentStatusEnrolled  = "enrolled"
	StudentStatusCompleted = "completed"
	StudentStatusWithdrawn = "withdrawn"
)

// Student represents a learner registered with the training provider.
type Student struct {
	ID             string     `db:"id" json:"id"`
	FullName       string     `db:"full_name" json:"full_name"`
	Email          string     `db:"email" json:"email"`
	Phone          string     `db:"phone" json:"phone"`
	DateOfBirth    *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Address        string     `db:"address" json:"address"`
	CourseID       *string    `db:"course_id" json:"course_id,omitempty"`
	Status         string     `db:"status" json:"status"`
	EnrollmentDate *time.Time `db:"enrollment_date" json:"enrollment_date,omitempty"`
	Notes          string     `db:"notes" json:"notes"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search   string
	Status   string
	CourseID string
	Page     int
	PageSize int
}
