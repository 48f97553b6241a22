package questions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vidya-vichar/backend/internal/models"
)

// UnknownAskerName is reported when a question's asker has no registered
// account; the question itself is never dropped from a board.
const UnknownAskerName = "Unknown"

// Roster answers course-membership lookups for submission validation and TA
// scoping. An unknown course yields empty results, not an error.
type Roster interface {
	InstructorEmails(ctx context.Context, courseName string) ([]string, error)
	InstructorEmailsForTA(ctx context.Context, courseName, taEmail string) ([]string, error)
}

// Directory resolves a registered account's display name.
type Directory interface {
	DisplayName(ctx context.Context, email string) (string, bool, error)
}

// Service owns the question lifecycle and the role-scoped views over it.
type Service struct {
	store     Store
	roster    Roster
	directory Directory
	logger    *zap.Logger
}

// NewService creates a question service.
func NewService(store Store, roster Roster, directory Directory, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, roster: roster, directory: directory, logger: logger}
}

// SubmitParams are the inputs to Submit.
type SubmitParams struct {
	Text            string
	AskedByEmail    string
	CourseName      string
	InstructorEmail string
}

// Submit validates and stores a new question. The instructor must be on the
// course's roster; on any validation failure nothing is written.
func (s *Service) Submit(ctx context.Context, p SubmitParams) (*models.Question, error) {
	text := strings.TrimSpace(p.Text)
	if text == "" {
		return nil, &ValidationError{Reason: "question text is required"}
	}
	if p.AskedByEmail == "" {
		return nil, &ValidationError{Reason: "asker email is required"}
	}
	if p.CourseName == "" || p.InstructorEmail == "" {
		return nil, &ValidationError{Reason: "course name and instructor email are required"}
	}

	instructors, err := s.roster.InstructorEmails(ctx, p.CourseName)
	if err != nil {
		return nil, fmt.Errorf("roster lookup: %w", err)
	}
	if !containsString(instructors, p.InstructorEmail) {
		return nil, &ValidationError{
			Reason: fmt.Sprintf("instructor %s is not assigned to course %s", p.InstructorEmail, p.CourseName),
		}
	}

	q := &models.Question{
		Text:            text,
		AskedByEmail:    p.AskedByEmail,
		CourseName:      p.CourseName,
		InstructorEmail: p.InstructorEmail,
		Live:            true,
	}
	if err := s.store.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	s.logger.Debug("question submitted",
		zap.Int64("question_id", q.QuestionID),
		zap.String("course", q.CourseName),
		zap.String("instructor", q.InstructorEmail),
	)
	return q, nil
}

// MarkAnswered marks a question answered, stamping answered_at. Re-invoking
// on an answered question re-stamps the timestamp.
func (s *Service) MarkAnswered(ctx context.Context, id int64) (*models.Question, error) {
	q, err := s.store.MarkAnswered(ctx, id, time.Now().UTC())
	if err != nil {
		if err == ErrQuestionNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("mark answered: %w", err)
	}
	return q, nil
}

// CloseSession ends the live session for a course/instructor pair: every live
// question in the scope becomes non-live in one mutation. Returns the number
// of questions closed; zero when no session was open.
func (s *Service) CloseSession(ctx context.Context, instructorEmail, courseName string) (int64, error) {
	n, err := s.store.CloseSession(ctx, instructorEmail, courseName)
	if err != nil {
		return 0, fmt.Errorf("close session: %w", err)
	}
	s.logger.Info("session closed",
		zap.String("course", courseName),
		zap.String("instructor", instructorEmail),
		zap.Int64("closed", n),
	)
	return n, nil
}

// InstructorBoard returns every question in the instructor's own scope,
// regardless of live/answered state, first-asked first.
func (s *Service) InstructorBoard(ctx context.Context, courseName, instructorEmail string) ([]models.QuestionView, error) {
	list, err := s.store.ListByScope(ctx, courseName, instructorEmail)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return s.toViews(ctx, list)
}

// TABoard returns the closed-session backlog for the TA: non-live questions
// for the course, limited to instructors the TA is mapped to. Live questions
// never show here.
func (s *Service) TABoard(ctx context.Context, courseName, taEmail string) ([]models.QuestionView, error) {
	instructors, err := s.roster.InstructorEmailsForTA(ctx, courseName, taEmail)
	if err != nil {
		return nil, fmt.Errorf("roster lookup: %w", err)
	}
	if len(instructors) == 0 {
		return []models.QuestionView{}, nil
	}
	list, err := s.store.ListClosedByInstructors(ctx, courseName, instructors)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return s.toViews(ctx, list)
}

// StudentBoard returns all questions for the course/instructor pair the
// student is viewing, newest first so they can check whether theirs was
// answered.
func (s *Service) StudentBoard(ctx context.Context, courseName, instructorEmail string) ([]models.QuestionView, error) {
	list, err := s.store.ListByScope(ctx, courseName, instructorEmail)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	return s.toViews(ctx, list)
}

func (s *Service) toViews(ctx context.Context, list []models.Question) ([]models.QuestionView, error) {
	views := make([]models.QuestionView, 0, len(list))
	names := make(map[string]string, len(list))
	for _, q := range list {
		name, ok := names[q.AskedByEmail]
		if !ok {
			resolved, found, err := s.directory.DisplayName(ctx, q.AskedByEmail)
			if err != nil {
				return nil, fmt.Errorf("resolve asker: %w", err)
			}
			name = UnknownAskerName
			if found {
				name = resolved
			}
			names[q.AskedByEmail] = name
		}
		views = append(views, models.QuestionView{
			QuestionID: q.QuestionID,
			Text:       q.Text,
			AskerName:  name,
			Answered:   q.Answered,
			Live:       q.Live,
			AskedAt:    q.AskedAt,
		})
	}
	return views, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
