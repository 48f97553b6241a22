package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vidya-vichar/backend/internal/emaillogs"
	"github.com/vidya-vichar/backend/internal/models"
	"github.com/vidya-vichar/backend/pkg/queue"
	"github.com/vidya-vichar/backend/pkg/response"
	"github.com/vidya-vichar/backend/pkg/utils"
)

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"` // optional, defaults to student
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// OTPRequest is the body for POST /auth/otp and /auth/password/forgot.
type OTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// VerifyOTPRequest is the body for POST /auth/otp/verify.
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

// ResetPasswordRequest is the body for POST /auth/password/reset.
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo   *Repository
	jwt    *JWTService
	otp    *OTPStore
	queue  *queue.Queue
	logs   *emaillogs.Repository
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, jwt *JWTService, otp *OTPStore, q *queue.Queue, logs *emaillogs.Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, jwt: jwt, otp: otp, queue: q, logs: logs, logger: logger}
}

// Register handles POST /auth/register. Accounts start unverified; login is
// rejected until the OTP flow completes.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	role := models.RoleStudent
	if req.Role != "" {
		switch models.Role(req.Role) {
		case models.RoleStudent, models.RoleInstructor, models.RoleTA:
			role = models.Role(req.Role)
		default:
			response.BadRequest(c, "invalid role")
			return
		}
	}

	if _, err := h.repo.GetByEmail(c.Request.Context(), req.Email); err == nil {
		response.BadRequest(c, "email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	user, err := h.repo.Create(c.Request.Context(), req.Email, hash, req.Name, role)
	if err != nil {
		response.Internal(c, "failed to create user")
		return
	}
	response.Created(c, user.ToPublic())
}

// Login handles POST /auth/login. Unverified accounts get 403.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Unauthorized(c, "invalid email or password")
		return
	}
	if !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}
	if !user.Verified {
		response.Forbidden(c, "account not verified; request a verification code first")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	response.OK(c, TokenResponse{Token: token, User: user.ToPublic()})
}

// RequestOTP handles POST /auth/otp (email verification code).
func (h *Handler) RequestOTP(c *gin.Context) {
	var req OTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if _, err := h.repo.GetByEmail(c.Request.Context(), req.Email); err != nil {
		response.BadRequest(c, "no account for this email")
		return
	}
	if err := h.sendCode(c.Request.Context(), PurposeVerify, models.EmailTypeOTPVerification,
		req.Email, "Your verification code"); err != nil {
		h.logger.Error("send verification code", zap.Error(err), zap.String("email", req.Email))
		response.ServiceUnavailable(c, "failed to send verification code")
		return
	}
	response.OK(c, gin.H{"message": "verification code sent"})
}

// VerifyOTP handles POST /auth/otp/verify.
func (h *Handler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	ok, err := h.otp.Verify(c.Request.Context(), PurposeVerify, req.Email, req.Code)
	if err != nil {
		response.ServiceUnavailable(c, "failed to verify code")
		return
	}
	if !ok {
		response.BadRequest(c, "invalid or expired code")
		return
	}
	if err := h.repo.MarkVerified(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.BadRequest(c, "no account for this email")
			return
		}
		response.Internal(c, "failed to verify account")
		return
	}
	response.OK(c, gin.H{"message": "account verified"})
}

// ForgotPassword handles POST /auth/password/forgot.
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req OTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if _, err := h.repo.GetByEmail(c.Request.Context(), req.Email); err != nil {
		// Same response either way; do not leak which emails are registered.
		response.OK(c, gin.H{"message": "if the account exists, a reset code was sent"})
		return
	}
	if err := h.sendCode(c.Request.Context(), PurposeReset, models.EmailTypePasswordReset,
		req.Email, "Your password reset code"); err != nil {
		h.logger.Error("send reset code", zap.Error(err), zap.String("email", req.Email))
		response.ServiceUnavailable(c, "failed to send reset code")
		return
	}
	response.OK(c, gin.H{"message": "if the account exists, a reset code was sent"})
}

// ResetPassword handles POST /auth/password/reset.
func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	ok, err := h.otp.Verify(c.Request.Context(), PurposeReset, req.Email, req.Code)
	if err != nil {
		response.ServiceUnavailable(c, "failed to verify code")
		return
	}
	if !ok {
		response.BadRequest(c, "invalid or expired code")
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}
	if err := h.repo.UpdatePassword(c.Request.Context(), req.Email, hash); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.BadRequest(c, "no account for this email")
			return
		}
		response.Internal(c, "failed to reset password")
		return
	}
	response.OK(c, gin.H{"message": "password updated"})
}

// sendCode generates a code, records an email log, and hands delivery to the
// worker queue.
func (h *Handler) sendCode(ctx context.Context, purpose, emailType, email, subject string) error {
	code, err := h.otp.Generate(ctx, purpose, email)
	if err != nil {
		return err
	}
	log := &models.EmailLog{
		EmailType:      emailType,
		RecipientEmail: email,
		Subject:        subject,
		Status:         models.EmailLogStatusPending,
	}
	if err := h.logs.Create(ctx, log); err != nil {
		return fmt.Errorf("create email log: %w", err)
	}
	return h.queue.EnqueueEmail(ctx, queue.EmailPayload{
		EmailType:      emailType,
		EmailLogID:     log.ID,
		RecipientEmail: email,
		Subject:        subject,
		BodyHTML:       fmt.Sprintf("<p>Your code is: <strong>%s</strong>. It expires shortly.</p>", code),
	})
}
