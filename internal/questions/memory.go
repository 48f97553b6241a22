package questions

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vidya-vichar/backend/internal/models"
)

// MemoryStore is an in-memory question store used by unit tests. The id
// counter is guarded by the store mutex, so ids stay unique and monotone
// under concurrent submissions.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*models.Question
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, byID: make(map[int64]*models.Question)}
}

// Create inserts a question and assigns the next id.
func (s *MemoryStore) Create(_ context.Context, q *models.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q.QuestionID = s.nextID
	s.nextID++
	q.Answered = false
	q.AnsweredAt = nil
	q.Live = true
	if q.AskedAt.IsZero() {
		q.AskedAt = time.Now().UTC()
	}
	cp := *q
	s.byID[cp.QuestionID] = &cp
	return nil
}

// GetByID returns a question or ErrQuestionNotFound.
func (s *MemoryStore) GetByID(_ context.Context, id int64) (*models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.byID[id]
	if !ok {
		return nil, ErrQuestionNotFound
	}
	cp := *q
	return &cp, nil
}

// ListByScope returns every question for the course/instructor pair, oldest first.
func (s *MemoryStore) ListByScope(_ context.Context, courseName, instructorEmail string) ([]models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []models.Question
	for _, q := range s.byID {
		if q.CourseName == courseName && q.InstructorEmail == instructorEmail {
			list = append(list, *q)
		}
	}
	sortAsked(list)
	return list, nil
}

// ListClosedByInstructors returns non-live questions scoped to the given instructors.
func (s *MemoryStore) ListClosedByInstructors(_ context.Context, courseName string, instructorEmails []string) ([]models.Question, error) {
	allowed := make(map[string]struct{}, len(instructorEmails))
	for _, e := range instructorEmails {
		allowed[e] = struct{}{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []models.Question
	for _, q := range s.byID {
		if q.CourseName != courseName || q.Live {
			continue
		}
		if _, ok := allowed[q.InstructorEmail]; ok {
			list = append(list, *q)
		}
	}
	sortAsked(list)
	return list, nil
}

// MarkAnswered sets answered and answered_at together under the lock.
func (s *MemoryStore) MarkAnswered(_ context.Context, id int64, at time.Time) (*models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.byID[id]
	if !ok {
		return nil, ErrQuestionNotFound
	}
	q.Answered = true
	stamp := at
	q.AnsweredAt = &stamp
	cp := *q
	return &cp, nil
}

// CloseSession flips every live question in the scope to non-live.
func (s *MemoryStore) CloseSession(_ context.Context, instructorEmail, courseName string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, q := range s.byID {
		if q.Live && q.InstructorEmail == instructorEmail && q.CourseName == courseName {
			q.Live = false
			n++
		}
	}
	return n, nil
}

func sortAsked(list []models.Question) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].AskedAt.Equal(list[j].AskedAt) {
			return list[i].QuestionID < list[j].QuestionID
		}
		return list[i].AskedAt.Before(list[j].AskedAt)
	})
}
