package questions

import (
	"context"
	"errors"
	"time"

	"github.com/vidya-vichar/backend/internal/models"
)

var (
	// ErrQuestionNotFound is returned when an operation targets a question id
	// that does not exist.
	ErrQuestionNotFound = errors.New("question not found")
)

// ValidationError reports a caller-fixable problem with a submission.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Store is the question persistence contract. Implementations must assign
// question ids from an atomic sequence and must write answered/answered_at
// together so readers never observe one without the other.
type Store interface {
	// Create inserts a question and fills QuestionID and AskedAt.
	Create(ctx context.Context, q *models.Question) error
	// GetByID returns a question or ErrQuestionNotFound.
	GetByID(ctx context.Context, id int64) (*models.Question, error)
	// ListByScope returns every question for (courseName, instructorEmail)
	// ordered by asked_at ascending, question id breaking ties.
	ListByScope(ctx context.Context, courseName, instructorEmail string) ([]models.Question, error)
	// ListClosedByInstructors returns non-live questions for the course whose
	// instructor is in instructorEmails, same ordering as ListByScope.
	ListClosedByInstructors(ctx context.Context, courseName string, instructorEmails []string) ([]models.Question, error)
	// MarkAnswered sets answered and answered_at in one write and returns the
	// updated question, or ErrQuestionNotFound. Calling it again re-stamps
	// answered_at.
	MarkAnswered(ctx context.Context, id int64, at time.Time) (*models.Question, error)
	// CloseSession flips live to false on every live question in the scope as
	// a single mutation and returns the number of questions affected.
	CloseSession(ctx context.Context, instructorEmail, courseName string) (int64, error)
}
