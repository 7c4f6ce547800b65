package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/shuyan0723/study--student-mangement/types"
)

// CourseRepository defines persistence operations for courses.
type CourseRepository interface {
	GetByID(ctx context.Context, id string) (types.Course, error)
	List(ctx context.Context, offset, limit int) ([]types.Course, int, error)
	Create(ctx context.Context, course types.Course) (types.Course, error)
	Update(ctx context.Context, course types.Course) (types.Course, error)
	Delete(ctx context.Context, id string) error
}

// CourseService encapsulates course use-cases.
type CourseService struct {
	repo CourseRepository
}

func NewCourseService(repo CourseRepository) *CourseService {
	return &CourseService{repo: repo}
}

func (s *CourseService) Get(ctx context.Context, id string) (types.Course, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CourseService) List(ctx context.Context, offset, limit int) ([]types.Course, int, error) {
	return s.repo.List(ctx, offset, limit)
}

func (s *CourseService) Create(ctx context.Context, course types.Course) (types.Course, error) {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	return s.repo.Create(ctx, course)
}

func (s *CourseService) Update(ctx context.Context, course types.Course) (types.Course, error) {
	return s.repo.Update(ctx, course)
}

func (s *CourseService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
