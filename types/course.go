package types

import "time"

// Course is a taught unit owned by a teacher.
type Course struct {
	ID          string    `json:"id" db:"id"`
	Code        string    `json:"code" db:"code"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	Credits     int       `json:"credits" db:"credits"`
	Semester    string    `json:"semester,omitempty" db:"semester"`
	TeacherID   string    `json:"teacher_id,omitempty" db:"teacher_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
