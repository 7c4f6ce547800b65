package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shuyan0723/study--student-mangement/types"
)

const teacherColumns = `
	id, user_id, teacher_number, name, COALESCE(title, ''), COALESCE(college, ''),
	COALESCE(phone, ''), created_at, updated_at`

// TeacherRepository handles persistence for teacher profiles.
type TeacherRepository struct {
	db *sql.DB
}

func NewTeacherRepository(db *sql.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

func (r *TeacherRepository) GetByID(ctx context.Context, id string) (types.Teacher, error) {
	const query = `
		SELECT` + teacherColumns + `
		FROM teachers
		WHERE id = $1`
	return scanTeacher(r.db.QueryRowContext(ctx, query, id))
}

func (r *TeacherRepository) GetByUserID(ctx context.Context, userID string) (types.Teacher, error) {
	const query = `
		SELECT` + teacherColumns + `
		FROM teachers
		WHERE user_id = $1`
	return scanTeacher(r.db.QueryRowContext(ctx, query, userID))
}

func (r *TeacherRepository) List(ctx context.Context, offset, limit int) ([]types.Teacher, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM teachers`).Scan(&total); err != nil {
		return nil, 0, err
	}

	const query = `
		SELECT` + teacherColumns + `
		FROM teachers
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var teachers []types.Teacher
	for rows.Next() {
		var t types.Teacher
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.TeacherNumber, &t.Name, &t.Title, &t.College,
			&t.Phone, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		teachers = append(teachers, t)
	}
	return teachers, total, rows.Err()
}

func (r *TeacherRepository) Create(ctx context.Context, teacher types.Teacher) (types.Teacher, error) {
	now := time.Now()
	teacher.CreatedAt = now
	teacher.UpdatedAt = now

	const query = `
		INSERT INTO teachers (id, user_id, teacher_number, name, title, college, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8, $9)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		teacher.ID,
		teacher.UserID,
		teacher.TeacherNumber,
		teacher.Name,
		teacher.Title,
		teacher.College,
		teacher.Phone,
		teacher.CreatedAt,
		teacher.UpdatedAt,
	)
	if err != nil {
		return types.Teacher{}, mapError(err)
	}
	return teacher, nil
}

func (r *TeacherRepository) Update(ctx context.Context, teacher types.Teacher) (types.Teacher, error) {
	teacher.UpdatedAt = time.Now()

	const query = `
		UPDATE teachers
		SET name = $1,
			title = NULLIF($2, ''),
			college = NULLIF($3, ''),
			phone = NULLIF($4, ''),
			updated_at = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		teacher.Name,
		teacher.Title,
		teacher.College,
		teacher.Phone,
		teacher.UpdatedAt,
		teacher.ID,
	)
	if err != nil {
		return types.Teacher{}, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Teacher{}, err
	}
	if affected == 0 {
		return types.Teacher{}, ErrNotFound
	}
	return teacher, nil
}

func (r *TeacherRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM teachers WHERE id = $1`
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

func scanTeacher(row *sql.Row) (types.Teacher, error) {
	var t types.Teacher
	err := row.Scan(
		&t.ID, &t.UserID, &t.TeacherNumber, &t.Name, &t.Title, &t.College,
		&t.Phone, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Teacher{}, ErrNotFound
		}
		return types.Teacher{}, err
	}
	return t, nil
}
