package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuyan0723/study--student-mangement/internal/storage"
	"github.com/shuyan0723/study--student-mangement/internal/store"
	"github.com/shuyan0723/study--student-mangement/types"
)

// memObjectStore keeps uploaded objects in a map.
type memObjectStore struct {
	objects map[string][]byte
}

func (s *memObjectStore) EnsureBucket(context.Context) error { return nil }

func (s *memObjectStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.objects[key] = data
	return nil
}

func (s *memObjectStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memObjectStore) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

func (s *memObjectStore) Bucket() string { return "test-bucket" }

type rowsGradeRepo struct {
	fakeGradeRepo
	rows []types.GradeRow
}

func (r *rowsGradeRepo) ListRows(_ context.Context, offset, limit int) ([]types.GradeRow, int, error) {
	if offset >= len(r.rows) {
		return nil, len(r.rows), nil
	}
	end := offset + limit
	if end > len(r.rows) {
		end = len(r.rows)
	}
	return r.rows[offset:end], len(r.rows), nil
}

type rosterStudentRepo struct {
	students []types.Student
}

func (r *rosterStudentRepo) GetByID(context.Context, string) (types.Student, error) {
	return types.Student{}, store.ErrNotFound
}

func (r *rosterStudentRepo) GetByUserID(context.Context, string) (types.Student, error) {
	return types.Student{}, store.ErrNotFound
}

func (r *rosterStudentRepo) List(_ context.Context, _ types.StudentFilter, offset, limit int) ([]types.Student, int, error) {
	if offset >= len(r.students) {
		return nil, len(r.students), nil
	}
	end := offset + limit
	if end > len(r.students) {
		end = len(r.students)
	}
	return r.students[offset:end], len(r.students), nil
}

func (r *rosterStudentRepo) Create(_ context.Context, student types.Student) (types.Student, error) {
	return student, nil
}

func (r *rosterStudentRepo) Update(_ context.Context, student types.Student) (types.Student, error) {
	return student, nil
}

func (r *rosterStudentRepo) Delete(context.Context, string) error { return nil }

func TestGradeReport(t *testing.T) {
	grades := &rowsGradeRepo{rows: []types.GradeRow{
		{
			Grade:         types.Grade{Score: 91.25, Semester: "2026-spring"},
			StudentNumber: "S001",
			StudentName:   "Alice",
			CourseCode:    "CS101",
			CourseName:    "Intro to CS",
		},
		{
			Grade:         types.Grade{Score: 78, Semester: "2026-spring"},
			StudentNumber: "S002",
			StudentName:   "Bob",
			CourseCode:    "CS101",
			CourseName:    "Intro to CS",
		},
	}}
	objects := &memObjectStore{objects: make(map[string][]byte)}
	svc := NewExportService(grades, &rosterStudentRepo{}, storage.NewStorage(objects))

	key, err := svc.GradeReport(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "reports/grades-"))
	assert.True(t, strings.HasSuffix(key, ".csv"))

	reader, err := svc.Open(context.Background(), key)
	require.NoError(t, err)
	defer reader.Close()

	records, err := csv.NewReader(reader).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"student_number", "student_name", "course_code", "course_name", "semester", "score"}, records[0])
	assert.Equal(t, []string{"S001", "Alice", "CS101", "Intro to CS", "2026-spring", "91.25"}, records[1])
	assert.Equal(t, "78.00", records[2][5])
}

func TestEnrollmentReport(t *testing.T) {
	students := &rosterStudentRepo{students: []types.Student{
		{StudentNumber: "S001", Name: "Alice", College: "Engineering", Major: "CS", Status: "enrolled"},
	}}
	objects := &memObjectStore{objects: make(map[string][]byte)}
	svc := NewExportService(&rowsGradeRepo{}, students, storage.NewStorage(objects))

	key, err := svc.EnrollmentReport(context.Background())
	require.NoError(t, err)

	reader, err := svc.Open(context.Background(), key)
	require.NoError(t, err)
	defer reader.Close()

	records, err := csv.NewReader(reader).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"S001", "Alice", "Engineering", "CS", "enrolled"}, records[1])
}

func TestExportDisabledWithoutStorage(t *testing.T) {
	svc := NewExportService(&rowsGradeRepo{}, &rosterStudentRepo{}, nil)

	assert.False(t, svc.Enabled())
	_, err := svc.GradeReport(context.Background())
	var apiErr *types.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, types.CodeValidationError, apiErr.Code)
}
