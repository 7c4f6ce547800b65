package types

import "time"

// Student is the academic profile linked to a student-role account.
type Student struct {
	ID            string     `json:"id" db:"id"`
	UserID        string     `json:"user_id" db:"user_id"`
	StudentNumber string     `json:"student_id" db:"student_number"`
	Name          string     `json:"name" db:"name"`
	Gender        string     `json:"gender,omitempty" db:"gender"`
	DateOfBirth   *time.Time `json:"date_of_birth,omitempty" db:"date_of_birth"`
	College       string     `json:"college,omitempty" db:"college"`
	Major         string     `json:"major,omitempty" db:"major"`
	Phone         string     `json:"phone,omitempty" db:"phone"`
	HomeAddress   string     `json:"home_address,omitempty" db:"home_address"`
	AdmissionDate *time.Time `json:"admission_date,omitempty" db:"admission_date"`
	Status        string     `json:"status" db:"status"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// StudentFilter narrows student listings.
type StudentFilter struct {
	College string
	Major   string
	Status  string
}
