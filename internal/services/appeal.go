package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/shuyan0723/study--student-mangement/types"
)

// AppealRepository defines persistence operations for grade appeals.
type AppealRepository interface {
	GetByID(ctx context.Context, id string) (types.Appeal, error)
	List(ctx context.Context, studentID string, offset, limit int) ([]types.Appeal, int, error)
	Create(ctx context.Context, appeal types.Appeal) (types.Appeal, error)
	Review(ctx context.Context, appeal types.Appeal) (types.Appeal, error)
}

// AppealService encapsulates appeal use-cases.
type AppealService struct {
	repo AppealRepository
}

func NewAppealService(repo AppealRepository) *AppealService {
	return &AppealService{repo: repo}
}

func (s *AppealService) Get(ctx context.Context, id string) (types.Appeal, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AppealService) List(ctx context.Context, studentID string, offset, limit int) ([]types.Appeal, int, error) {
	return s.repo.List(ctx, studentID, offset, limit)
}

// Submit files a new appeal in pending state.
func (s *AppealService) Submit(ctx context.Context, gradeID, studentID, reason string) (types.Appeal, error) {
	if reason == "" {
		return types.Appeal{}, types.ErrValidation("Reason is required")
	}
	return s.repo.Create(ctx, types.Appeal{
		ID:        uuid.NewString(),
		GradeID:   gradeID,
		StudentID: studentID,
		Reason:    reason,
		Status:    types.AppealPending,
	})
}

// Review records a decision on a pending appeal.
func (s *AppealService) Review(ctx context.Context, id, reviewerID, status, note string) (types.Appeal, error) {
	if status != types.AppealApproved && status != types.AppealRejected {
		return types.Appeal{}, types.ErrValidation("Status must be approved or rejected")
	}
	appeal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.Appeal{}, err
	}
	appeal.Status = status
	appeal.ReviewerID = reviewerID
	appeal.ReviewNote = note
	return s.repo.Review(ctx, appeal)
}
