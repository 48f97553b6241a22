package emaillogs

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vidya-vichar/backend/pkg/response"
)

// Handler exposes the email audit log.
type Handler struct {
	repo *Repository
}

// NewHandler creates an email logs handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /admin/email-logs?limit= (admin only).
func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	list, err := h.repo.List(c.Request.Context(), limit)
	if err != nil {
		response.ServiceUnavailable(c, "failed to list email logs")
		return
	}
	response.OK(c, gin.H{"email_logs": list})
}
