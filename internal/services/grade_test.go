package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuyan0723/study--student-mangement/internal/store"
	"github.com/shuyan0723/study--student-mangement/types"
)

type fakeGradeRepo struct {
	grades map[string]types.Grade
}

func newFakeGradeRepo() *fakeGradeRepo {
	return &fakeGradeRepo{grades: make(map[string]types.Grade)}
}

func (r *fakeGradeRepo) GetByID(_ context.Context, id string) (types.Grade, error) {
	grade, ok := r.grades[id]
	if !ok {
		return types.Grade{}, store.ErrNotFound
	}
	return grade, nil
}

func (r *fakeGradeRepo) ListByStudent(_ context.Context, studentID string) ([]types.Grade, error) {
	var out []types.Grade
	for _, grade := range r.grades {
		if grade.StudentID == studentID {
			out = append(out, grade)
		}
	}
	return out, nil
}

func (r *fakeGradeRepo) ListRows(context.Context, int, int) ([]types.GradeRow, int, error) {
	return nil, 0, nil
}

func (r *fakeGradeRepo) Create(_ context.Context, grade types.Grade) (types.Grade, error) {
	for _, existing := range r.grades {
		if existing.StudentID == grade.StudentID &&
			existing.CourseID == grade.CourseID &&
			existing.Semester == grade.Semester {
			return types.Grade{}, store.ErrDuplicate
		}
	}
	r.grades[grade.ID] = grade
	return grade, nil
}

func (r *fakeGradeRepo) Update(_ context.Context, grade types.Grade) (types.Grade, error) {
	if _, ok := r.grades[grade.ID]; !ok {
		return types.Grade{}, store.ErrNotFound
	}
	r.grades[grade.ID] = grade
	return grade, nil
}

func (r *fakeGradeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.grades[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.grades, id)
	return nil
}

func TestGradeCreate(t *testing.T) {
	svc := NewGradeService(newFakeGradeRepo())

	grade, err := svc.Create(context.Background(), types.Grade{
		StudentID: "student-1",
		CourseID:  "course-1",
		Semester:  "2026-spring",
		Score:     87.5,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, grade.ID)
}

func TestGradeScoreBounds(t *testing.T) {
	svc := NewGradeService(newFakeGradeRepo())

	for _, score := range []float64{-0.5, 100.5} {
		_, err := svc.Create(context.Background(), types.Grade{
			StudentID: "student-1",
			CourseID:  "course-1",
			Semester:  "2026-spring",
			Score:     score,
		})
		var apiErr *types.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, types.CodeValidationError, apiErr.Code)
	}

	// Both endpoints of the range are valid scores.
	for i, score := range []float64{0, 100} {
		_, err := svc.Create(context.Background(), types.Grade{
			StudentID: "student-1",
			CourseID:  "course-" + string(rune('a'+i)),
			Semester:  "2026-spring",
			Score:     score,
		})
		assert.NoError(t, err)
	}
}

func TestGradeDuplicateEnrollment(t *testing.T) {
	svc := NewGradeService(newFakeGradeRepo())

	record := types.Grade{
		StudentID: "student-1",
		CourseID:  "course-1",
		Semester:  "2026-spring",
		Score:     70,
	}
	_, err := svc.Create(context.Background(), record)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), record)
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

type fakeAppealRepo struct {
	appeals map[string]types.Appeal
}

func (r *fakeAppealRepo) GetByID(_ context.Context, id string) (types.Appeal, error) {
	appeal, ok := r.appeals[id]
	if !ok {
		return types.Appeal{}, store.ErrNotFound
	}
	return appeal, nil
}

func (r *fakeAppealRepo) List(context.Context, string, int, int) ([]types.Appeal, int, error) {
	return nil, 0, nil
}

func (r *fakeAppealRepo) Create(_ context.Context, appeal types.Appeal) (types.Appeal, error) {
	r.appeals[appeal.ID] = appeal
	return appeal, nil
}

func (r *fakeAppealRepo) Review(_ context.Context, appeal types.Appeal) (types.Appeal, error) {
	if _, ok := r.appeals[appeal.ID]; !ok {
		return types.Appeal{}, store.ErrNotFound
	}
	r.appeals[appeal.ID] = appeal
	return appeal, nil
}

func TestAppealLifecycle(t *testing.T) {
	repo := &fakeAppealRepo{appeals: make(map[string]types.Appeal)}
	svc := NewAppealService(repo)

	appeal, err := svc.Submit(context.Background(), "grade-1", "student-1", "score looks wrong")
	require.NoError(t, err)
	assert.Equal(t, types.AppealPending, appeal.Status)

	_, err = svc.Submit(context.Background(), "grade-1", "student-1", "")
	var apiErr *types.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, types.CodeValidationError, apiErr.Code)

	_, err = svc.Review(context.Background(), appeal.ID, "teacher-1", "pending", "")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, types.CodeValidationError, apiErr.Code)

	reviewed, err := svc.Review(context.Background(), appeal.ID, "teacher-1", types.AppealApproved, "recount confirmed")
	require.NoError(t, err)
	assert.Equal(t, types.AppealApproved, reviewed.Status)
	assert.Equal(t, "teacher-1", reviewed.ReviewerID)
}
