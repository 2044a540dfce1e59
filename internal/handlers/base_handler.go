package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ctfground/ctf-service/internal/repositories"
	"github.com/ctfground/ctf-service/internal/services"
	"github.com/ctfground/ctf-service/internal/utils"
	"github.com/ctfground/ctf-service/internal/validator"
)

type ErrorResponse struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// BaseHandler carries the shared handler plumbing.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	args = append(args, "request_id", c.GetString("request_id"))
	h.logger.Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	args = append(args, "error", err, "request_id", c.GetString("request_id"))
	h.logger.Error(msg, args...)
}

// parseIDParam reads a positive integer path parameter; on failure it
// writes the 400 response and returns 0.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) uint {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name + " parameter",
		})
		return 0
	}
	return uint(id)
}

// parsePagination reads skip/limit query parameters with defaults.
func (h *BaseHandler) parsePagination(c *gin.Context) (skip, limit int) {
	skip, _ = strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = 100
	}
	return skip, limit
}

// handleServiceError maps service errors onto HTTP responses.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	var permissionErr *services.PermissionError

	switch {
	case errors.As(err, &validationErrs):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrs,
		})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Incorrect username or password"})
	case errors.As(err, &permissionErr):
		h.LogRequest(c, "permission denied",
			"user_id", permissionErr.UserID,
			"resource", permissionErr.Resource,
			"action", permissionErr.Action,
			"reason", permissionErr.Reason)
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Permission denied"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Permission denied"})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "User not found"})
	case errors.Is(err, services.ErrProblemNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Problem not found"})
	case errors.Is(err, services.ErrNameTaken):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Username already exists"})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Email already exists"})
	case errors.Is(err, services.ErrProblemNameTaken):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Problem name already exists"})
	case errors.Is(err, services.ErrConfirmationPending):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "A confirmation email was already sent"})
	case errors.Is(err, services.ErrBadEmailToken):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid or missing email token"})
	case errors.Is(err, services.ErrEmailUnbound):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "No email bound to this account"})
	case errors.Is(err, services.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed", Details: err.Error()})
	case repositories.IsDuplicateKeyError(err):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Resource already exists"})
	default:
		h.LogError(c, err, "internal error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	}
}
