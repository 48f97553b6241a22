package courses

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidya-vichar/backend/internal/models"
)

// Repository is the Postgres-backed roster store. Email lists are text[]
// columns on a single row per course.
type Repository struct {
	pool *pgxpool.Pool
}

var _ Store = (*Repository)(nil)

// NewRepository creates a courses repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectColumns = `course_name, course_desc, instructor_emails, ta_emails, student_emails`

// GetByName returns a course mapping or ErrCourseNotFound.
func (r *Repository) GetByName(ctx context.Context, courseName string) (*models.CourseMapping, error) {
	var m models.CourseMapping
	err := r.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM course_mappings WHERE course_name = $1`, courseName).
		Scan(&m.CourseName, &m.CourseDesc, &m.InstructorEmails, &m.TAEmails, &m.StudentEmails)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ListByStudent returns every course whose student list contains email.
func (r *Repository) ListByStudent(ctx context.Context, email string) ([]models.CourseMapping, error) {
	return r.listWhere(ctx, `$1 = ANY(student_emails)`, email)
}

// ListByInstructor returns every course whose instructor list contains email.
func (r *Repository) ListByInstructor(ctx context.Context, email string) ([]models.CourseMapping, error) {
	return r.listWhere(ctx, `$1 = ANY(instructor_emails)`, email)
}

// ListByTA returns every course whose TA list contains email.
func (r *Repository) ListByTA(ctx context.Context, email string) ([]models.CourseMapping, error) {
	return r.listWhere(ctx, `$1 = ANY(ta_emails)`, email)
}

func (r *Repository) listWhere(ctx context.Context, cond, email string) ([]models.CourseMapping, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+selectColumns+` FROM course_mappings WHERE `+cond+` ORDER BY course_name`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.CourseMapping
	for rows.Next() {
		var m models.CourseMapping
		if err := rows.Scan(&m.CourseName, &m.CourseDesc, &m.InstructorEmails, &m.TAEmails, &m.StudentEmails); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// AddInstructor upserts the course and appends the instructor if absent. A
// non-empty description replaces the stored one.
func (r *Repository) AddInstructor(ctx context.Context, courseName, courseDesc, email string) error {
	const q = `INSERT INTO course_mappings (course_name, course_desc, instructor_emails)
		VALUES ($1, $2, ARRAY[$3::text])
		ON CONFLICT (course_name) DO UPDATE SET
			course_desc = CASE WHEN EXCLUDED.course_desc <> '' THEN EXCLUDED.course_desc ELSE course_mappings.course_desc END,
			instructor_emails = CASE WHEN $3 = ANY(course_mappings.instructor_emails)
				THEN course_mappings.instructor_emails
				ELSE array_append(course_mappings.instructor_emails, $3) END,
			updated_at = NOW()`
	_, err := r.pool.Exec(ctx, q, courseName, courseDesc, email)
	return err
}

// AddTA upserts the course and appends the TA if absent.
func (r *Repository) AddTA(ctx context.Context, courseName, email string) error {
	const q = `INSERT INTO course_mappings (course_name, ta_emails)
		VALUES ($1, ARRAY[$2::text])
		ON CONFLICT (course_name) DO UPDATE SET
			ta_emails = CASE WHEN $2 = ANY(course_mappings.ta_emails)
				THEN course_mappings.ta_emails
				ELSE array_append(course_mappings.ta_emails, $2) END,
			updated_at = NOW()`
	_, err := r.pool.Exec(ctx, q, courseName, email)
	return err
}

// AddStudent upserts the course and appends the student if absent.
func (r *Repository) AddStudent(ctx context.Context, courseName, email string) error {
	const q = `INSERT INTO course_mappings (course_name, student_emails)
		VALUES ($1, ARRAY[$2::text])
		ON CONFLICT (course_name) DO UPDATE SET
			student_emails = CASE WHEN $2 = ANY(course_mappings.student_emails)
				THEN course_mappings.student_emails
				ELSE array_append(course_mappings.student_emails, $2) END,
			updated_at = NOW()`
	_, err := r.pool.Exec(ctx, q, courseName, email)
	return err
}
