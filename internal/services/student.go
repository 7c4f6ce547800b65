package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/shuyan0723/study--student-mangement/types"
)

// StudentRepository defines persistence operations for student profiles.
type StudentRepository interface {
	GetByID(ctx context.Context, id string) (types.Student, error)
	GetByUserID(ctx context.Context, userID string) (types.Student, error)
	List(ctx context.Context, filter types.StudentFilter, offset, limit int) ([]types.Student, int, error)
	Create(ctx context.Context, student types.Student) (types.Student, error)
	Update(ctx context.Context, student types.Student) (types.Student, error)
	Delete(ctx context.Context, id string) error
}

// StudentService encapsulates student use-cases.
type StudentService struct {
	repo StudentRepository
}

func NewStudentService(repo StudentRepository) *StudentService {
	return &StudentService{repo: repo}
}

func (s *StudentService) Get(ctx context.Context, id string) (types.Student, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *StudentService) GetByUserID(ctx context.Context, userID string) (types.Student, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *StudentService) List(ctx context.Context, filter types.StudentFilter, offset, limit int) ([]types.Student, int, error) {
	return s.repo.List(ctx, filter, offset, limit)
}

func (s *StudentService) Create(ctx context.Context, student types.Student) (types.Student, error) {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.Status == "" {
		student.Status = "enrolled"
	}
	return s.repo.Create(ctx, student)
}

func (s *StudentService) Update(ctx context.Context, student types.Student) (types.Student, error) {
	return s.repo.Update(ctx, student)
}

func (s *StudentService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
