package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ctfground/ctf-service/internal/services"
	"github.com/ctfground/ctf-service/internal/utils"
	"github.com/ctfground/ctf-service/internal/validator"
)

type AuthHandler struct {
	BaseHandler
	authService         services.AuthService
	confirmationService services.ConfirmationService
	validator           *validator.Validator
}

func NewAuthHandler(
	authService services.AuthService,
	confirmationService services.ConfirmationService,
	validator *validator.Validator,
	logger utils.Logger,
) *AuthHandler {
	return &AuthHandler{
		BaseHandler:         NewBaseHandler(logger),
		authService:         authService,
		confirmationService: confirmationService,
		validator:           validator,
	}
}

// Login exchanges credentials for a bearer token
// @Summary Log in
// @Description Exchanges a username (or email) and password for a bearer token. An email paired with a live 6-digit login code also works.
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Username or email"
// @Param password formData string true "Password or login code"
// @Success 200 {object} services.TokenResponse
// @Failure 401 {object} ErrorResponse
// @Router /token [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `form:"username" binding:"required"`
		Password string `form:"password" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	user, err := h.authService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	token, err := h.authService.IssueToken(user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "user logged in", "user_id", user.ID)
	c.JSON(http.StatusOK, token)
}

// SendEmail issues a confirmation code
// @Summary Send confirmation email
// @Description Generates a 6-digit code for the given purpose and emails it to the address
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.SendEmailRequest true "Purpose and address"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /sendEmail [post]
func (h *AuthHandler) SendEmail(c *gin.Context) {
	var req services.SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	if err := h.confirmationService.Issue(c.Request.Context(), req.Email, req.Option); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Confirmation email sent"})
}

// Me returns the session user
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse
// @Router /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, CurrentUser(c))
}
