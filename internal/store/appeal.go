package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shuyan0723/study--student-mangement/types"
)

const appealColumns = `
	id, grade_id, student_id, reason, status, COALESCE(reviewer_id::text, ''),
	COALESCE(review_note, ''), reviewed_at, created_at, updated_at`

// AppealRepository handles persistence for grade appeals.
type AppealRepository struct {
	db *sql.DB
}

func NewAppealRepository(db *sql.DB) *AppealRepository {
	return &AppealRepository{db: db}
}

func (r *AppealRepository) GetByID(ctx context.Context, id string) (types.Appeal, error) {
	const query = `
		SELECT` + appealColumns + `
		FROM appeals
		WHERE id = $1`
	var a types.Appeal
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.GradeID, &a.StudentID, &a.Reason, &a.Status, &a.ReviewerID,
		&a.ReviewNote, &a.ReviewedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Appeal{}, ErrNotFound
		}
		return types.Appeal{}, err
	}
	return a, nil
}

// List returns appeals, optionally narrowed to one student.
func (r *AppealRepository) List(ctx context.Context, studentID string, offset, limit int) ([]types.Appeal, int, error) {
	where := ""
	countArgs := []any{}
	listArgs := []any{limit, offset}
	if studentID != "" {
		where = "WHERE student_id = $1"
		countArgs = append(countArgs, studentID)
		listArgs = []any{studentID, limit, offset}
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM appeals "+where, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT" + appealColumns + " FROM appeals ORDER BY created_at DESC LIMIT $1 OFFSET $2"
	if studentID != "" {
		query = "SELECT" + appealColumns + " FROM appeals WHERE student_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3"
	}
	rows, err := r.db.QueryContext(ctx, query, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var appeals []types.Appeal
	for rows.Next() {
		var a types.Appeal
		if err := rows.Scan(
			&a.ID, &a.GradeID, &a.StudentID, &a.Reason, &a.Status, &a.ReviewerID,
			&a.ReviewNote, &a.ReviewedAt, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		appeals = append(appeals, a)
	}
	return appeals, total, rows.Err()
}

func (r *AppealRepository) Create(ctx context.Context, appeal types.Appeal) (types.Appeal, error) {
	now := time.Now()
	appeal.CreatedAt = now
	appeal.UpdatedAt = now

	const query = `
		INSERT INTO appeals (id, grade_id, student_id, reason, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		appeal.ID,
		appeal.GradeID,
		appeal.StudentID,
		appeal.Reason,
		appeal.Status,
		appeal.CreatedAt,
		appeal.UpdatedAt,
	)
	if err != nil {
		return types.Appeal{}, mapError(err)
	}
	return appeal, nil
}

// Review records the reviewer's decision on a pending appeal.
func (r *AppealRepository) Review(ctx context.Context, appeal types.Appeal) (types.Appeal, error) {
	now := time.Now()
	appeal.UpdatedAt = now
	appeal.ReviewedAt = &now

	const query = `
		UPDATE appeals
		SET status = $1,
			reviewer_id = NULLIF($2, '')::uuid,
			review_note = NULLIF($3, ''),
			reviewed_at = $4,
			updated_at = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		appeal.Status,
		appeal.ReviewerID,
		appeal.ReviewNote,
		appeal.ReviewedAt,
		appeal.UpdatedAt,
		appeal.ID,
	)
	if err != nil {
		return types.Appeal{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Appeal{}, err
	}
	if affected == 0 {
		return types.Appeal{}, ErrNotFound
	}
	return appeal, nil
}
