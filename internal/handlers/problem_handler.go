package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ctfground/ctf-service/internal/services"
	"github.com/ctfground/ctf-service/internal/utils"
)

type ProblemHandler struct {
	BaseHandler
	problemService services.ProblemService
}

func NewProblemHandler(problemService services.ProblemService, logger utils.Logger) *ProblemHandler {
	return &ProblemHandler{
		BaseHandler:    NewBaseHandler(logger),
		problemService: problemService,
	}
}

// CreateProblem creates a new problem
// @Summary Create problem
// @Description Creates a problem owned by the session user. Player accounts cannot author problems.
// @Tags problems
// @Accept json
// @Produce json
// @Param problem body services.CreateProblemRequest true "Problem data"
// @Success 201 {object} models.Problem
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /problems [post]
func (h *ProblemHandler) CreateProblem(c *gin.Context) {
	var req services.CreateProblemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	problem, err := h.problemService.Create(c.Request.Context(), CurrentUser(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, problem)
}

// GetProblem retrieves a problem by ID
// @Summary Get problem
// @Description Retrieves a problem. The answer field is hidden from anonymous viewers and players.
// @Tags problems
// @Produce json
// @Param id path uint true "Problem ID"
// @Success 200 {object} models.Problem
// @Failure 404 {object} ErrorResponse
// @Router /problems/{id} [get]
func (h *ProblemHandler) GetProblem(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	problem, err := h.problemService.GetByID(c.Request.Context(), CurrentUser(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, problem)
}

// ListProblems lists problems
// @Summary List problems
// @Tags problems
// @Produce json
// @Param skip query int false "Offset"
// @Param limit query int false "Page size"
// @Success 200 {array} models.Problem
// @Router /problems [get]
func (h *ProblemHandler) ListProblems(c *gin.Context) {
	skip, limit := h.parsePagination(c)

	problems, err := h.problemService.List(c.Request.Context(), CurrentUser(c), skip, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, problems)
}

// UpdateProblem updates a problem
// @Summary Update problem
// @Description Partial update. Setters may only touch their own problems; changing score_initial rescales the current score proportionally.
// @Tags problems
// @Accept json
// @Produce json
// @Param id path uint true "Problem ID"
// @Param problem body services.UpdateProblemRequest true "Fields to change"
// @Success 200 {object} models.Problem
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /problems/{id} [put]
func (h *ProblemHandler) UpdateProblem(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateProblemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "updating problem", "problem_id", id)

	problem, err := h.problemService.Update(c.Request.Context(), CurrentUser(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, problem)
}

// DeleteProblem removes a problem
// @Summary Delete problem
// @Tags problems
// @Produce json
// @Param id path uint true "Problem ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /problems/{id} [delete]
func (h *ProblemHandler) DeleteProblem(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "deleting problem", "problem_id", id)

	if err := h.problemService.Delete(c.Request.Context(), CurrentUser(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Problem deleted"})
}
