package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shuyan0723/study--student-mangement/types"
)

const gradeColumns = `
	g.id, g.student_id, g.course_id, g.score, COALESCE(g.semester, ''),
	COALESCE(g.remark, ''), g.created_at, g.updated_at`

// GradeRepository handles persistence for grades.
type GradeRepository struct {
	db *sql.DB
}

func NewGradeRepository(db *sql.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

func (r *GradeRepository) GetByID(ctx context.Context, id string) (types.Grade, error) {
	const query = `
		SELECT` + gradeColumns + `
		FROM grades g
		WHERE g.id = $1`
	var g types.Grade
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&g.ID, &g.StudentID, &g.CourseID, &g.Score, &g.Semester, &g.Remark,
		&g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Grade{}, ErrNotFound
		}
		return types.Grade{}, err
	}
	return g, nil
}

// ListByStudent returns the grades recorded for one student.
func (r *GradeRepository) ListByStudent(ctx context.Context, studentID string) ([]types.Grade, error) {
	const query = `
		SELECT` + gradeColumns + `
		FROM grades g
		WHERE g.student_id = $1
		ORDER BY g.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grades []types.Grade
	for rows.Next() {
		var g types.Grade
		if err := rows.Scan(
			&g.ID, &g.StudentID, &g.CourseID, &g.Score, &g.Semester, &g.Remark,
			&g.CreatedAt, &g.UpdatedAt,
		); err != nil {
			return nil, err
		}
		grades = append(grades, g)
	}
	return grades, rows.Err()
}

// ListRows returns grades joined with student and course identifiers,
// used for listings and CSV report exports.
func (r *GradeRepository) ListRows(ctx context.Context, offset, limit int) ([]types.GradeRow, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM grades`).Scan(&total); err != nil {
		return nil, 0, err
	}

	const query = `
		SELECT` + gradeColumns + `,
			s.student_number, s.name, c.code, c.name
		FROM grades g
		JOIN students s ON s.id = g.student_id
		JOIN courses c ON c.id = g.course_id
		ORDER BY g.created_at DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []types.GradeRow
	for rows.Next() {
		var row types.GradeRow
		if err := rows.Scan(
			&row.ID, &row.StudentID, &row.CourseID, &row.Score, &row.Semester,
			&row.Remark, &row.CreatedAt, &row.UpdatedAt,
			&row.StudentNumber, &row.StudentName, &row.CourseCode, &row.CourseName,
		); err != nil {
			return nil, 0, err
		}
		result = append(result, row)
	}
	return result, total, rows.Err()
}

func (r *GradeRepository) Create(ctx context.Context, grade types.Grade) (types.Grade, error) {
	now := time.Now()
	grade.CreatedAt = now
	grade.UpdatedAt = now

	const query = `
		INSERT INTO grades (id, student_id, course_id, score, semester, remark, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		grade.ID,
		grade.StudentID,
		grade.CourseID,
		grade.Score,
		grade.Semester,
		grade.Remark,
		grade.CreatedAt,
		grade.UpdatedAt,
	)
	if err != nil {
		return types.Grade{}, mapError(err)
	}
	return grade, nil
}

func (r *GradeRepository) Update(ctx context.Context, grade types.Grade) (types.Grade, error) {
	grade.UpdatedAt = time.Now()

	const query = `
		UPDATE grades
		SET score = $1,
			semester = NULLIF($2, ''),
			remark = NULLIF($3, ''),
			updated_at = $4
		WHERE id = $5`
	result, err := r.db.ExecContext(
		ctx,
		query,
		grade.Score,
		grade.Semester,
		grade.Remark,
		grade.UpdatedAt,
		grade.ID,
	)
	if err != nil {
		return types.Grade{}, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Grade{}, err
	}
	if affected == 0 {
		return types.Grade{}, ErrNotFound
	}
	return grade, nil
}

func (r *GradeRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM grades WHERE id = $1`
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
