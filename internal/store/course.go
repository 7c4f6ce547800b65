package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shuyan0723/study--student-mangement/types"
)

const courseColumns = `
	id, code, name, COALESCE(description, ''), credits, COALESCE(semester, ''),
	COALESCE(teacher_id::text, ''), created_at, updated_at`

// CourseRepository handles persistence for courses.
type CourseRepository struct {
	db *sql.DB
}

func NewCourseRepository(db *sql.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) GetByID(ctx context.Context, id string) (types.Course, error) {
	const query = `
		SELECT` + courseColumns + `
		FROM courses
		WHERE id = $1`
	var c types.Course
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Code, &c.Name, &c.Description, &c.Credits, &c.Semester,
		&c.TeacherID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Course{}, ErrNotFound
		}
		return types.Course{}, err
	}
	return c, nil
}

func (r *CourseRepository) List(ctx context.Context, offset, limit int) ([]types.Course, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&total); err != nil {
		return nil, 0, err
	}

	const query = `
		SELECT` + courseColumns + `
		FROM courses
		ORDER BY code
		LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var courses []types.Course
	for rows.Next() {
		var c types.Course
		if err := rows.Scan(
			&c.ID, &c.Code, &c.Name, &c.Description, &c.Credits, &c.Semester,
			&c.TeacherID, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		courses = append(courses, c)
	}
	return courses, total, rows.Err()
}

func (r *CourseRepository) Create(ctx context.Context, course types.Course) (types.Course, error) {
	now := time.Now()
	course.CreatedAt = now
	course.UpdatedAt = now

	const query = `
		INSERT INTO courses (id, code, name, description, credits, semester, teacher_id, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), NULLIF($7, '')::uuid, $8, $9)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		course.ID,
		course.Code,
		course.Name,
		course.Description,
		course.Credits,
		course.Semester,
		course.TeacherID,
		course.CreatedAt,
		course.UpdatedAt,
	)
	if err != nil {
		return types.Course{}, mapError(err)
	}
	return course, nil
}

func (r *CourseRepository) Update(ctx context.Context, course types.Course) (types.Course, error) {
	course.UpdatedAt = time.Now()

	const query = `
		UPDATE courses
		SET name = $1,
			description = NULLIF($2, ''),
			credits = $3,
			semester = NULLIF($4, ''),
			teacher_id = NULLIF($5, '')::uuid,
			updated_at = $6
		WHERE id = $7`
	result, err := r.db.ExecContext(
		ctx,
		query,
		course.Name,
		course.Description,
		course.Credits,
		course.Semester,
		course.TeacherID,
		course.UpdatedAt,
		course.ID,
	)
	if err != nil {
		return types.Course{}, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Course{}, err
	}
	if affected == 0 {
		return types.Course{}, ErrNotFound
	}
	return course, nil
}

func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM courses WHERE id = $1`
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
