package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/shuyan0723/study--student-mangement/types"
)

// GradeRepository defines persistence operations for grades.
type GradeRepository interface {
	GetByID(ctx context.Context, id string) (types.Grade, error)
	ListByStudent(ctx context.Context, studentID string) ([]types.Grade, error)
	ListRows(ctx context.Context, offset, limit int) ([]types.GradeRow, int, error)
	Create(ctx context.Context, grade types.Grade) (types.Grade, error)
	Update(ctx context.Context, grade types.Grade) (types.Grade, error)
	Delete(ctx context.Context, id string) error
}

// GradeService encapsulates grade use-cases.
type GradeService struct {
	repo GradeRepository
}

func NewGradeService(repo GradeRepository) *GradeService {
	return &GradeService{repo: repo}
}

func (s *GradeService) Get(ctx context.Context, id string) (types.Grade, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *GradeService) ListByStudent(ctx context.Context, studentID string) ([]types.Grade, error) {
	return s.repo.ListByStudent(ctx, studentID)
}

func (s *GradeService) ListRows(ctx context.Context, offset, limit int) ([]types.GradeRow, int, error) {
	return s.repo.ListRows(ctx, offset, limit)
}

func (s *GradeService) Create(ctx context.Context, grade types.Grade) (types.Grade, error) {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	if grade.Score < 0 || grade.Score > 100 {
		return types.Grade{}, types.ErrValidation("Score must be between 0 and 100")
	}
	return s.repo.Create(ctx, grade)
}

func (s *GradeService) Update(ctx context.Context, grade types.Grade) (types.Grade, error) {
	if grade.Score < 0 || grade.Score > 100 {
		return types.Grade{}, types.ErrValidation("Score must be between 0 and 100")
	}
	return s.repo.Update(ctx, grade)
}

func (s *GradeService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
