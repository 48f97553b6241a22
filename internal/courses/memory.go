package courses

import (
	"context"
	"sort"
	"sync"

	"github.com/vidya-vichar/backend/internal/models"
)

// MemoryStore is an in-memory roster store used by unit tests.
type MemoryStore struct {
	mu     sync.RWMutex
	byName map[string]*models.CourseMapping
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory roster store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byName: make(map[string]*models.CourseMapping)}
}

// GetByName returns a course mapping or ErrCourseNotFound.
func (s *MemoryStore) GetByName(_ context.Context, courseName string) (*models.CourseMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byName[courseName]
	if !ok {
		return nil, ErrCourseNotFound
	}
	cp := copyMapping(m)
	return &cp, nil
}

// ListByStudent returns courses whose student list contains email.
func (s *MemoryStore) ListByStudent(_ context.Context, email string) ([]models.CourseMapping, error) {
	return s.list(func(m *models.CourseMapping) bool { return contains(m.StudentEmails, email) }), nil
}

// ListByInstructor returns courses whose instructor list contains email.
func (s *MemoryStore) ListByInstructor(_ context.Context, email string) ([]models.CourseMapping, error) {
	return s.list(func(m *models.CourseMapping) bool { return contains(m.InstructorEmails, email) }), nil
}

// ListByTA returns courses whose TA list contains email.
func (s *MemoryStore) ListByTA(_ context.Context, email string) ([]models.CourseMapping, error) {
	return s.list(func(m *models.CourseMapping) bool { return contains(m.TAEmails, email) }), nil
}

// AddInstructor upserts the course and appends the instructor if absent.
func (s *MemoryStore) AddInstructor(_ context.Context, courseName, courseDesc, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.upsert(courseName)
	if courseDesc != "" {
		m.CourseDesc = courseDesc
	}
	if !contains(m.InstructorEmails, email) {
		m.InstructorEmails = append(m.InstructorEmails, email)
	}
	return nil
}

// AddTA upserts the course and appends the TA if absent.
func (s *MemoryStore) AddTA(_ context.Context, courseName, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.upsert(courseName)
	if !contains(m.TAEmails, email) {
		m.TAEmails = append(m.TAEmails, email)
	}
	return nil
}

// AddStudent upserts the course and appends the student if absent.
func (s *MemoryStore) AddStudent(_ context.Context, courseName, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.upsert(courseName)
	if !contains(m.StudentEmails, email) {
		m.StudentEmails = append(m.StudentEmails, email)
	}
	return nil
}

func (s *MemoryStore) upsert(courseName string) *models.CourseMapping {
	m, ok := s.byName[courseName]
	if !ok {
		m = &models.CourseMapping{CourseName: courseName}
		s.byName[courseName] = m
	}
	return m
}

func (s *MemoryStore) list(match func(*models.CourseMapping) bool) []models.CourseMapping {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.CourseMapping
	for _, m := range s.byName {
		if match(m) {
			out = append(out, copyMapping(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CourseName < out[j].CourseName })
	return out
}

func copyMapping(m *models.CourseMapping) models.CourseMapping {
	cp := *m
	cp.InstructorEmails = append([]string(nil), m.InstructorEmails...)
	cp.TAEmails = append([]string(nil), m.TAEmails...)
	cp.StudentEmails = append([]string(nil), m.StudentEmails...)
	return cp
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
