package questions

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidya-vichar/backend/internal/models"
)

// Repository is the Postgres-backed question store. Ids come from the
// questions.question_id sequence, so concurrent inserts never collide.
type Repository struct {
	pool *pgxpool.Pool
}

var _ Store = (*Repository)(nil)

// NewRepository creates a questions repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new question.
func (r *Repository) Create(ctx context.Context, q *models.Question) error {
	const query = `INSERT INTO questions (text, asked_by_email, course_name, instructor_email, answered, live)
		VALUES ($1, $2, $3, $4, FALSE, TRUE)
		RETURNING question_id, answered, live, asked_at`
	return r.pool.QueryRow(ctx, query, q.Text, q.AskedByEmail, q.CourseName, q.InstructorEmail).
		Scan(&q.QuestionID, &q.Answered, &q.Live, &q.AskedAt)
}

// GetByID returns a question by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Question, error) {
	const query = `SELECT question_id, text, asked_by_email, course_name, instructor_email, answered, live, asked_at, answered_at
		FROM questions WHERE question_id = $1`
	var q models.Question
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&q.QuestionID, &q.Text, &q.AskedByEmail, &q.CourseName, &q.InstructorEmail, &q.Answered, &q.Live, &q.AskedAt, &q.AnsweredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return &q, nil
}

// ListByScope returns every question for the course/instructor pair, oldest first.
func (r *Repository) ListByScope(ctx context.Context, courseName, instructorEmail string) ([]models.Question, error) {
	const query = `SELECT question_id, text, asked_by_email, course_name, instructor_email, answered, live, asked_at, answered_at
		FROM questions
		WHERE course_name = $1 AND instructor_email = $2
		ORDER BY asked_at, question_id`
	rows, err := r.pool.Query(ctx, query, courseName, instructorEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQuestions(rows)
}

// ListClosedByInstructors returns non-live questions for the course scoped to
// the given instructors, oldest first.
func (r *Repository) ListClosedByInstructors(ctx context.Context, courseName string, instructorEmails []string) ([]models.Question, error) {
	const query = `SELECT question_id, text, asked_by_email, course_name, instructor_email, answered, live, asked_at, answered_at
		FROM questions
		WHERE course_name = $1 AND NOT live AND instructor_email = ANY($2)
		ORDER BY asked_at, question_id`
	rows, err := r.pool.Query(ctx, query, courseName, instructorEmails)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQuestions(rows)
}

// MarkAnswered sets answered and answered_at in a single UPDATE.
func (r *Repository) MarkAnswered(ctx context.Context, id int64, at time.Time) (*models.Question, error) {
	const query = `UPDATE questions SET answered = TRUE, answered_at = $2
		WHERE question_id = $1
		RETURNING question_id, text, asked_by_email, course_name, instructor_email, answered, live, asked_at, answered_at`
	var q models.Question
	err := r.pool.QueryRow(ctx, query, id, at).
		Scan(&q.QuestionID, &q.Text, &q.AskedByEmail, &q.CourseName, &q.InstructorEmail, &q.Answered, &q.Live, &q.AskedAt, &q.AnsweredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return &q, nil
}

// CloseSession flips every live question in the scope to non-live.
func (r *Repository) CloseSession(ctx context.Context, instructorEmail, courseName string) (int64, error) {
	const query = `UPDATE questions SET live = FALSE
		WHERE instructor_email = $1 AND course_name = $2 AND live`
	tag, err := r.pool.Exec(ctx, query, instructorEmail, courseName)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanQuestions(rows pgx.Rows) ([]models.Question, error) {
	var list []models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.QuestionID, &q.Text, &q.AskedByEmail, &q.CourseName, &q.InstructorEmail, &q.Answered, &q.Live, &q.AskedAt, &q.AnsweredAt); err != nil {
			return nil, err
		}
		list = append(list, q)
	}
	return list, rows.Err()
}
