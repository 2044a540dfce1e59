package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ctfground/ctf-service/internal/services"
	"github.com/ctfground/ctf-service/internal/utils"
	"github.com/ctfground/ctf-service/internal/validator"
)

type HandlerManager struct {
	authHandler    *AuthHandler
	userHandler    *UserHandler
	problemHandler *ProblemHandler
	authMiddleware *AuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authHandler:    NewAuthHandler(serviceManager.Auth(), serviceManager.Confirmation(), validator, logger),
		userHandler:    NewUserHandler(serviceManager.User(), serviceManager.Problem(), logger),
		problemHandler: NewProblemHandler(serviceManager.Problem(), logger),
		authMiddleware: NewAuthMiddleware(serviceManager.Auth(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	router.POST("/token", hm.authHandler.Login)
	router.POST("/sendEmail", hm.authHandler.SendEmail)
	router.GET("/me", hm.authMiddleware.Session(SessionRequiredEmail), hm.authHandler.Me)

	users := router.Group("/users")
	{
		// Registration works anonymously; an authenticated caller may
		// create accounts below its own tier.
		users.POST("", hm.authMiddleware.Session(SessionOptional), hm.userHandler.CreateUser)
		users.GET("", hm.userHandler.ListUsers)
		users.GET("/rank", hm.userHandler.GetRank)
		users.GET("/rank/export", hm.userHandler.ExportRank)
		users.GET("/:id", hm.userHandler.GetUser)
		users.PUT("/:id", hm.authMiddleware.Session(SessionRequired), hm.userHandler.UpdateUser)
		users.DELETE("/:id", hm.authMiddleware.Session(SessionRequired), hm.userHandler.DeleteUser)
		users.POST("/:id/problems/:problem_id", hm.authMiddleware.Session(SessionRequired), hm.userHandler.SubmitAnswer)
	}

	problems := router.Group("/problems")
	{
		problems.POST("", hm.authMiddleware.Session(SessionRequiredEmail), hm.problemHandler.CreateProblem)
		problems.GET("", hm.authMiddleware.Session(SessionOptional), hm.problemHandler.ListProblems)
		problems.GET("/:id", hm.authMiddleware.Session(SessionOptional), hm.problemHandler.GetProblem)
		problems.PUT("/:id", hm.authMiddleware.Session(SessionRequiredEmail), hm.problemHandler.UpdateProblem)
		problems.DELETE("/:id", hm.authMiddleware.Session(SessionRequiredEmail), hm.problemHandler.DeleteProblem)
	}
}

// HealthCheck endpoint
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "ctf-service",
	})
}
