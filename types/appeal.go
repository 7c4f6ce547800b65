package types

import "time"

// Appeal statuses.
const (
	AppealPending  = "pending"
	AppealApproved = "approved"
	AppealRejected = "rejected"
)

// Appeal is a student's challenge of a recorded grade.
type Appeal struct {
	ID         string     `json:"id" db:"id"`
	GradeID    string     `json:"grade_id" db:"grade_id"`
	StudentID  string     `json:"student_id" db:"student_id"`
	Reason     string     `json:"reason" db:"reason"`
	Status     string     `json:"status" db:"status"`
	ReviewerID string     `json:"reviewer_id,omitempty" db:"reviewer_id"`
	ReviewNote string     `json:"review_note,omitempty" db:"review_note"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}
