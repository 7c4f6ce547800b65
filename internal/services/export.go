package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shuyan0723/study--student-mangement/internal/storage"
	"github.com/shuyan0723/study--student-mangement/types"
)

const exportBatchSize = 500

// ExportService builds CSV report exports and stores them as objects.
type ExportService struct {
	grades   GradeRepository
	students StudentRepository
	store    *storage.Storage
}

func NewExportService(grades GradeRepository, students StudentRepository, store *storage.Storage) *ExportService {
	return &ExportService{grades: grades, students: students, store: store}
}

// Enabled reports whether an object store backend is configured.
func (s *ExportService) Enabled() bool {
	return s.store != nil
}

// GradeReport exports every recorded grade as CSV and uploads it.
// Returns the object key of the stored report.
func (s *ExportService) GradeReport(ctx context.Context) (string, error) {
	if s.store == nil {
		return "", types.ErrValidation("Export storage is not configured")
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write([]string{"student_number", "student_name", "course_code", "course_name", "semester", "score"}); err != nil {
		return "", err
	}

	for offset := 0; ; offset += exportBatchSize {
		rows, _, err := s.grades.ListRows(ctx, offset, exportBatchSize)
		if err != nil {
			return "", err
		}
		if len(rows) == 0 {
			break
		}
		for _, row := range rows {
			record := []string{
				row.StudentNumber,
				row.StudentName,
				row.CourseCode,
				row.CourseName,
				row.Semester,
				strconv.FormatFloat(row.Score, 'f', 2, 64),
			}
			if err := writer.Write(record); err != nil {
				return "", err
			}
		}
		if len(rows) < exportBatchSize {
			break
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	key := fmt.Sprintf("reports/grades-%s.csv", time.Now().Format("20060102-150405"))
	if err := s.store.Put(ctx, key, &buf, int64(buf.Len()), "text/csv"); err != nil {
		return "", err
	}
	return key, nil
}

// EnrollmentReport exports the student roster as CSV and uploads it.
func (s *ExportService) EnrollmentReport(ctx context.Context) (string, error) {
	if s.store == nil {
		return "", types.ErrValidation("Export storage is not configured")
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write([]string{"student_number", "name", "college", "major", "status"}); err != nil {
		return "", err
	}

	for offset := 0; ; offset += exportBatchSize {
		students, _, err := s.students.List(ctx, types.StudentFilter{}, offset, exportBatchSize)
		if err != nil {
			return "", err
		}
		if len(students) == 0 {
			break
		}
		for _, student := range students {
			record := []string{
				student.StudentNumber,
				student.Name,
				student.College,
				student.Major,
				student.Status,
			}
			if err := writer.Write(record); err != nil {
				return "", err
			}
		}
		if len(students) < exportBatchSize {
			break
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	key := fmt.Sprintf("reports/enrollment-%s.csv", time.Now().Format("20060102-150405"))
	if err := s.store.Put(ctx, key, &buf, int64(buf.Len()), "text/csv"); err != nil {
		return "", err
	}
	return key, nil
}

// Open streams a previously exported report back to the caller.
func (s *ExportService) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if s.store == nil {
		return nil, types.ErrValidation("Export storage is not configured")
	}
	return s.store.Get(ctx, key)
}

// StoreAvatar uploads an avatar image and returns its object key.
func (s *ExportService) StoreAvatar(ctx context.Context, userID string, r io.Reader, size int64, contentType string) (string, error) {
	if s.store == nil {
		return "", types.ErrValidation("Avatar storage is not configured")
	}
	key := fmt.Sprintf("avatars/%s", userID)
	if err := s.store.Put(ctx, key, r, size, contentType); err != nil {
		return "", err
	}
	return key, nil
}
