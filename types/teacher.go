package types

import "time"

// Teacher is the staff profile linked to a teacher-role account.
type Teacher struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"user_id" db:"user_id"`
	TeacherNumber string    `json:"teacher_id" db:"teacher_number"`
	Name          string    `json:"name" db:"name"`
	Title         string    `json:"title,omitempty" db:"title"`
	College       string    `json:"college,omitempty" db:"college"`
	Phone         string    `json:"phone,omitempty" db:"phone"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
