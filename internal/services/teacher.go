package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/shuyan0723/study--student-mangement/types"
)

// TeacherRepository defines persistence operations for teacher profiles.
type TeacherRepository interface {
	GetByID(ctx context.Context, id string) (types.Teacher, error)
	GetByUserID(ctx context.Context, userID string) (types.Teacher, error)
	List(ctx context.Context, offset, limit int) ([]types.Teacher, int, error)
	Create(ctx context.Context, teacher types.Teacher) (types.Teacher, error)
	Update(ctx context.Context, teacher types.Teacher) (types.Teacher, error)
	Delete(ctx context.Context, id string) error
}

// TeacherService encapsulates teacher use-cases.
type TeacherService struct {
	repo TeacherRepository
}

func NewTeacherService(repo TeacherRepository) *TeacherService {
	return &TeacherService{repo: repo}
}

func (s *TeacherService) Get(ctx context.Context, id string) (types.Teacher, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *TeacherService) GetByUserID(ctx context.Context, userID string) (types.Teacher, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *TeacherService) List(ctx context.Context, offset, limit int) ([]types.Teacher, int, error) {
	return s.repo.List(ctx, offset, limit)
}

func (s *TeacherService) Create(ctx context.Context, teacher types.Teacher) (types.Teacher, error) {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	return s.repo.Create(ctx, teacher)
}

func (s *TeacherService) Update(ctx context.Context, teacher types.Teacher) (types.Teacher, error) {
	return s.repo.Update(ctx, teacher)
}

func (s *TeacherService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
