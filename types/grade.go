package types

import "time"

// Grade records a student's score in a course.
type Grade struct {
	ID        string    `json:"id" db:"id"`
	StudentID string    `json:"student_id" db:"student_id"`
	CourseID  string    `json:"course_id" db:"course_id"`
	Score     float64   `json:"score" db:"score"`
	Semester  string    `json:"semester,omitempty" db:"semester"`
	Remark    string    `json:"remark,omitempty" db:"remark"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// GradeRow is a grade joined with its student and course for reporting.
type GradeRow struct {
	Grade
	StudentNumber string `json:"student_number" db:"student_number"`
	StudentName   string `json:"student_name" db:"student_name"`
	CourseCode    string `json:"course_code" db:"course_code"`
	CourseName    string `json:"course_name" db:"course_name"`
}
