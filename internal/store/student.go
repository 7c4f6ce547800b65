package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shuyan0723/study--student-mangement/types"
)

const studentColumns = `
	id, user_id, student_number, name, COALESCE(gender, ''), date_of_birth,
	COALESCE(college, ''), COALESCE(major, ''), COALESCE(phone, ''),
	COALESCE(home_address, ''), admission_date, status, created_at, updated_at`

// StudentRepository handles persistence for student profiles.
type StudentRepository struct {
	db *sql.DB
}

func NewStudentRepository(db *sql.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

func (r *StudentRepository) GetByID(ctx context.Context, id string) (types.Student, error) {
	const query = `
		SELECT` + studentColumns + `
		FROM students
		WHERE id = $1`
	return scanStudent(r.db.QueryRowContext(ctx, query, id))
}

func (r *StudentRepository) GetByUserID(ctx context.Context, userID string) (types.Student, error) {
	const query = `
		SELECT` + studentColumns + `
		FROM students
		WHERE user_id = $1`
	return scanStudent(r.db.QueryRowContext(ctx, query, userID))
}

// List returns a filtered page of students plus the unfiltered-page total.
func (r *StudentRepository) List(ctx context.Context, filter types.StudentFilter, offset, limit int) ([]types.Student, int, error) {
	where := "WHERE 1=1"
	args := []any{}
	if filter.College != "" {
		args = append(args, filter.College)
		where += fmt.Sprintf(" AND college = $%d", len(args))
	}
	if filter.Major != "" {
		args = append(args, filter.Major)
		where += fmt.Sprintf(" AND major = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM students " + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	listQuery := fmt.Sprintf(
		"SELECT%s FROM students %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		studentColumns, where, len(args)-1, len(args),
	)
	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var students []types.Student
	for rows.Next() {
		student, err := scanStudentRows(rows)
		if err != nil {
			return nil, 0, err
		}
		students = append(students, student)
	}
	return students, total, rows.Err()
}

func (r *StudentRepository) Create(ctx context.Context, student types.Student) (types.Student, error) {
	now := time.Now()
	student.CreatedAt = now
	student.UpdatedAt = now

	const query = `
		INSERT INTO students (id, user_id, student_number, name, gender, date_of_birth,
			college, major, phone, home_address, admission_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, NULLIF($7, ''), NULLIF($8, ''),
			NULLIF($9, ''), NULLIF($10, ''), $11, $12, $13, $14)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		student.ID,
		student.UserID,
		student.StudentNumber,
		student.Name,
		student.Gender,
		student.DateOfBirth,
		student.College,
		student.Major,
		student.Phone,
		student.HomeAddress,
		student.AdmissionDate,
		student.Status,
		student.CreatedAt,
		student.UpdatedAt,
	)
	if err != nil {
		return types.Student{}, mapError(err)
	}
	return student, nil
}

func (r *StudentRepository) Update(ctx context.Context, student types.Student) (types.Student, error) {
	student.UpdatedAt = time.Now()

	const query = `
		UPDATE students
		SET name = $1,
			gender = NULLIF($2, ''),
			date_of_birth = $3,
			college = NULLIF($4, ''),
			major = NULLIF($5, ''),
			phone = NULLIF($6, ''),
			home_address = NULLIF($7, ''),
			admission_date = $8,
			status = $9,
			updated_at = $10
		WHERE id = $11`
	result, err := r.db.ExecContext(
		ctx,
		query,
		student.Name,
		student.Gender,
		student.DateOfBirth,
		student.College,
		student.Major,
		student.Phone,
		student.HomeAddress,
		student.AdmissionDate,
		student.Status,
		student.UpdatedAt,
		student.ID,
	)
	if err != nil {
		return types.Student{}, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Student{}, err
	}
	if affected == 0 {
		return types.Student{}, ErrNotFound
	}
	return student, nil
}

func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM students WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanStudent(row *sql.Row) (types.Student, error) {
	var s types.Student
	err := row.Scan(
		&s.ID, &s.UserID, &s.StudentNumber, &s.Name, &s.Gender, &s.DateOfBirth,
		&s.College, &s.Major, &s.Phone, &s.HomeAddress, &s.AdmissionDate,
		&s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, ErrNotFound
		}
		return types.Student{}, err
	}
	return s, nil
}

func scanStudentRows(rows *sql.Rows) (types.Student, error) {
	var s types.Student
	err := rows.Scan(
		&s.ID, &s.UserID, &s.StudentNumber, &s.Name, &s.Gender, &s.DateOfBirth,
		&s.College, &s.Major, &s.Phone, &s.HomeAddress, &s.AdmissionDate,
		&s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}
