package courses

import (
	"context"
	"errors"

	"github.com/vidya-vichar/backend/internal/models"
)

// ErrCourseNotFound is returned by GetByName for an unknown course.
var ErrCourseNotFound = errors.New("course not found")

// Store is the roster persistence contract. The Add* operations upsert the
// course row and append the email if it is not already listed.
type Store interface {
	GetByName(ctx context.Context, courseName string) (*models.CourseMapping, error)
	ListByStudent(ctx context.Context, email string) ([]models.CourseMapping, error)
	ListByInstructor(ctx context.Context, email string) ([]models.CourseMapping, error)
	ListByTA(ctx context.Context, email string) ([]models.CourseMapping, error)
	AddInstructor(ctx context.Context, courseName, courseDesc, email string) error
	AddTA(ctx context.Context, courseName, email string) error
	AddStudent(ctx context.Context, courseName, email string) error
}
