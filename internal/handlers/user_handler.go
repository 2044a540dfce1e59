package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ctfground/ctf-service/internal/services"
	"github.com/ctfground/ctf-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	userService    services.UserService
	problemService services.ProblemService
}

func NewUserHandler(
	userService services.UserService,
	problemService services.ProblemService,
	logger utils.Logger,
) *UserHandler {
	return &UserHandler{
		BaseHandler:    NewBaseHandler(logger),
		userService:    userService,
		problemService: problemService,
	}
}

// CreateUser registers a new account
// @Summary Create user
// @Description Registers a user. Anonymous callers may only create player accounts; authenticated callers may create accounts strictly below their own tier.
// @Tags users
// @Accept json
// @Produce json
// @Param user body services.CreateUserRequest true "User data"
// @Success 201 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	user, err := h.userService.Create(c.Request.Context(), CurrentUser(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// GetUser retrieves a user by ID
// @Summary Get user
// @Tags users
// @Produce json
// @Param id path uint true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListUsers lists users
// @Summary List users
// @Tags users
// @Produce json
// @Param skip query int false "Offset"
// @Param limit query int false "Page size"
// @Success 200 {array} models.User
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	skip, limit := h.parsePagination(c)

	users, err := h.userService.List(c.Request.Context(), skip, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// UpdateUser updates an account
// @Summary Update user
// @Description Partial update. Email and password changes are owner-only and need confirmation codes in the email-token (and for rebinding email-token1) headers.
// @Tags users
// @Accept json
// @Produce json
// @Param id path uint true "User ID"
// @Param user body services.UpdateUserRequest true "Fields to change"
// @Param email-token header string false "Confirmation code"
// @Param email-token1 header string false "Second confirmation code"
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "updating user", "user_id", id)

	user, err := h.userService.Update(c.Request.Context(), CurrentUser(c), id, &req, confirmationCodes(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUser removes an account
// @Summary Delete user
// @Tags users
// @Produce json
// @Param id path uint true "User ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "deleting user", "user_id", id)

	if err := h.userService.Delete(c.Request.Context(), CurrentUser(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "User deleted"})
}

// GetRank returns the leaderboard
// @Summary Leaderboard
// @Description Users ordered by the summed current score of their solved problems, highest first
// @Tags users
// @Produce json
// @Param skip query int false "Offset"
// @Param limit query int false "Page size"
// @Success 200 {array} models.RankEntry
// @Router /users/rank [get]
func (h *UserHandler) GetRank(c *gin.Context) {
	skip, limit := h.parsePagination(c)

	entries, err := h.userService.Rank(c.Request.Context(), skip, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// ExportRank downloads the leaderboard as a spreadsheet
// @Summary Export leaderboard
// @Tags users
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Router /users/rank/export [get]
func (h *UserHandler) ExportRank(c *gin.Context) {
	data, err := h.userService.ExportRank(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("rank-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		data)
}

// SubmitAnswer scores an answer submission
// @Summary Submit answer
// @Description Checks the answer for the problem on behalf of the session user. A correct first solve decays the problem score for everyone.
// @Tags users
// @Accept json
// @Produce json
// @Param id path uint true "User ID"
// @Param problem_id path uint true "Problem ID"
// @Param answer body services.SubmitAnswerRequest true "Answer"
// @Success 200 {object} services.SubmitAnswerResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id}/problems/{problem_id} [post]
func (h *UserHandler) SubmitAnswer(c *gin.Context) {
	userID := h.parseIDParam(c, "id")
	if userID == 0 {
		return
	}
	problemID := h.parseIDParam(c, "problem_id")
	if problemID == 0 {
		return
	}

	var req services.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "answer submitted", "user_id", userID, "problem_id", problemID)

	status, err := h.problemService.SubmitAnswer(c.Request.Context(), CurrentUser(c), userID, problemID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, services.SubmitAnswerResponse{Status: status})
}

// confirmationCodes picks the confirmation headers off the request.
func confirmationCodes(c *gin.Context) services.ConfirmationCodes {
	var codes services.ConfirmationCodes
	if v := c.GetHeader("email-token"); v != "" {
		codes.Primary = &v
	}
	if v := c.GetHeader("email-token1"); v != "" {
		codes.Secondary = &v
	}
	return codes
}
