package courses

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vidya-vichar/backend/internal/models"
)

// Directory resolves a registered account's display name.
type Directory interface {
	DisplayName(ctx context.Context, email string) (string, bool, error)
}

// Service answers per-role course listings and course-membership queries.
type Service struct {
	store     Store
	directory Directory
	logger    *zap.Logger
}

// NewService creates a courses service.
func NewService(store Store, directory Directory, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, directory: directory, logger: logger}
}

// CoursesForStudent lists courses the student is enrolled in, with instructor
// display names resolved.
func (s *Service) CoursesForStudent(ctx context.Context, email string) ([]models.CourseInfo, error) {
	list, err := s.store.ListByStudent(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return s.toInfos(ctx, list)
}

// CoursesForInstructor lists courses the instructor teaches.
func (s *Service) CoursesForInstructor(ctx context.Context, email string) ([]models.CourseInfo, error) {
	list, err := s.store.ListByInstructor(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return s.toInfos(ctx, list)
}

// CoursesForTA lists courses the TA assists, with the associated instructor
// names resolved.
func (s *Service) CoursesForTA(ctx context.Context, email string) ([]models.CourseInfo, error) {
	list, err := s.store.ListByTA(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return s.toInfos(ctx, list)
}

// InstructorEmails returns the instructors on a course's roster. An unknown
// course yields an empty list, not an error.
func (s *Service) InstructorEmails(ctx context.Context, courseName string) ([]string, error) {
	m, err := s.store.GetByName(ctx, courseName)
	if err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get course: %w", err)
	}
	return m.InstructorEmails, nil
}

// InstructorEmailsForTA returns the instructors a TA is mapped to on a
// course: the course's full instructor list when the TA is on its roster,
// empty otherwise.
func (s *Service) InstructorEmailsForTA(ctx context.Context, courseName, taEmail string) ([]string, error) {
	m, err := s.store.GetByName(ctx, courseName)
	if err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get course: %w", err)
	}
	if !contains(m.TAEmails, taEmail) {
		return nil, nil
	}
	return m.InstructorEmails, nil
}

// toInfos resolves instructor emails to display names. Emails with no
// registered account are omitted; a roster may reference unregistered
// accounts transiently during bulk import.
func (s *Service) toInfos(ctx context.Context, list []models.CourseMapping) ([]models.CourseInfo, error) {
	infos := make([]models.CourseInfo, 0, len(list))
	for _, m := range list {
		names := make([]string, 0, len(m.InstructorEmails))
		for _, email := range m.InstructorEmails {
			name, found, err := s.directory.DisplayName(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("resolve instructor: %w", err)
			}
			if !found {
				continue
			}
			names = append(names, name)
		}
		infos = append(infos, models.CourseInfo{CourseName: m.CourseName, InstructorNames: names})
	}
	return infos, nil
}
