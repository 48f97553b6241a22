package questions

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vidya-vichar/backend/internal/middleware"
	"github.com/vidya-vichar/backend/pkg/response"
)

// SubmitRequest is the body for POST /questions.
type SubmitRequest struct {
	Text            string `json:"text" binding:"required"`
	CourseName      string `json:"course_name" binding:"required"`
	InstructorEmail string `json:"instructor_email" binding:"required,email"`
}

// EndSessionRequest is the body for POST /sessions/end.
type EndSessionRequest struct {
	CourseName string `json:"course_name" binding:"required"`
}

// Handler exposes question and session HTTP endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a questions handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Submit handles POST /questions (student asks a question).
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	email := c.MustGet(middleware.ContextUserEmail).(string)

	q, err := h.svc.Submit(c.Request.Context(), SubmitParams{
		Text:            req.Text,
		AskedByEmail:    email,
		CourseName:      req.CourseName,
		InstructorEmail: req.InstructorEmail,
	})
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			response.BadRequest(c, verr.Reason)
			return
		}
		response.ServiceUnavailable(c, "failed to submit question")
		return
	}
	response.Created(c, q)
}

// InstructorBoard handles GET /questions/instructor?course= (own scope).
func (h *Handler) InstructorBoard(c *gin.Context) {
	course := c.Query("course")
	if course == "" {
		response.BadRequest(c, "course is required")
		return
	}
	email := c.MustGet(middleware.ContextUserEmail).(string)

	views, err := h.svc.InstructorBoard(c.Request.Context(), course, email)
	if err != nil {
		response.ServiceUnavailable(c, "failed to list questions")
		return
	}
	response.OK(c, gin.H{"questions": views})
}

// TABoard handles GET /questions/ta?course= (closed-session backlog).
func (h *Handler) TABoard(c *gin.Context) {
	course := c.Query("course")
	if course == "" {
		response.BadRequest(c, "course is required")
		return
	}
	email := c.MustGet(middleware.ContextUserEmail).(string)

	views, err := h.svc.TABoard(c.Request.Context(), course, email)
	if err != nil {
		response.ServiceUnavailable(c, "failed to list questions")
		return
	}
	response.OK(c, gin.H{"questions": views})
}

// StudentBoard handles GET /questions/student?course=&instructor=.
func (h *Handler) StudentBoard(c *gin.Context) {
	course := c.Query("course")
	instructor := c.Query("instructor")
	if course == "" || instructor == "" {
		response.BadRequest(c, "course and instructor are required")
		return
	}

	views, err := h.svc.StudentBoard(c.Request.Context(), course, instructor)
	if err != nil {
		response.ServiceUnavailable(c, "failed to list questions")
		return
	}
	response.OK(c, gin.H{"questions": views})
}

// Answer handles PATCH /questions/:id/answer (instructor/TA marks answered).
func (h *Handler) Answer(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid question id")
		return
	}

	q, err := h.svc.MarkAnswered(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrQuestionNotFound) {
			response.NotFound(c, "question not found")
			return
		}
		response.ServiceUnavailable(c, "failed to mark question answered")
		return
	}
	response.OK(c, q)
}

// EndSession handles POST /sessions/end (instructor closes the live session).
func (h *Handler) EndSession(c *gin.Context) {
	var req EndSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	email := c.MustGet(middleware.ContextUserEmail).(string)

	n, err := h.svc.CloseSession(c.Request.Context(), email, req.CourseName)
	if err != nil {
		response.ServiceUnavailable(c, "failed to end session")
		return
	}
	response.OK(c, gin.H{"closed": n})
}
