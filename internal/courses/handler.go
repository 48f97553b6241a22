package courses

import (
	"bytes"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vidya-vichar/backend/internal/middleware"
	"github.com/vidya-vichar/backend/pkg/response"
	"github.com/vidya-vichar/backend/pkg/storage"
)

// Handler exposes course listing and roster import endpoints.
type Handler struct {
	svc      *Service
	importer *Importer
	s3       *storage.S3 // nil when archiving is not configured
	logger   *zap.Logger
}

// NewHandler creates a courses handler. s3 may be nil.
func NewHandler(svc *Service, importer *Importer, s3 *storage.S3, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, importer: importer, s3: s3, logger: logger}
}

// ListForStudent handles GET /courses/student.
func (h *Handler) ListForStudent(c *gin.Context) {
	email := c.MustGet(middleware.ContextUserEmail).(string)
	infos, err := h.svc.CoursesForStudent(c.Request.Context(), email)
	if err != nil {
		response.ServiceUnavailable(c, "failed to list courses")
		return
	}
	response.OK(c, gin.H{"courses": infos})
}

// ListForInstructor handles GET /courses/instructor.
func (h *Handler) ListForInstructor(c *gin.Context) {
	email := c.MustGet(middleware.ContextUserEmail).(string)
	infos, err := h.svc.CoursesForInstructor(c.Request.Context(), email)
	if err != nil {
		response.ServiceUnavailable(c, "failed to list courses")
		return
	}
	response.OK(c, gin.H{"courses": infos})
}

// ListForTA handles GET /courses/ta.
func (h *Handler) ListForTA(c *gin.Context) {
	email := c.MustGet(middleware.ContextUserEmail).(string)
	infos, err := h.svc.CoursesForTA(c.Request.Context(), email)
	if err != nil {
		response.ServiceUnavailable(c, "failed to list courses")
		return
	}
	response.OK(c, gin.H{"courses": infos})
}

// ImportRoster handles POST /admin/rosters/:kind (multipart field "file").
func (h *Handler) ImportRoster(c *gin.Context) {
	kind, ok := ParseKind(c.Param("kind"))
	if !ok {
		response.BadRequest(c, "unknown roster kind")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, storage.MaxRosterFileSize+1))
	if err != nil {
		response.Internal(c, "failed to read upload")
		return
	}
	if len(data) > storage.MaxRosterFileSize {
		response.BadRequest(c, "file too large")
		return
	}

	res, err := h.importer.Import(c.Request.Context(), kind, bytes.NewReader(data))
	if err != nil {
		response.ServiceUnavailable(c, "failed to import roster")
		return
	}

	// Raw upload is archived best-effort; a failed archive never fails the import.
	if h.s3 != nil {
		key := storage.RosterKey(string(kind), header.Filename)
		if _, err := h.s3.ArchiveRoster(c.Request.Context(), key, bytes.NewReader(data)); err != nil {
			h.logger.Warn("roster archive failed", zap.Error(err), zap.String("key", key))
		}
	}

	response.OK(c, res)
}
