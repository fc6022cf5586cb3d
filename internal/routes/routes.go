package routes

import (
	"github.com/gin-gonic/gin"

	"physioplan/internal/handlers"
	"physioplan/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	verifyHandler *handlers.VerifyHandler,
	userHandler *handlers.UserHandler,
	intakeHandler *handlers.IntakeHandler,
	planHandler *handlers.PlanHandler,
	metaHandler *handlers.MetaDataHandler,
) *gin.Engine {

	// ---- public
	r.POST("/login", authHandler.Login)
	r.POST("/refresh", authHandler.RefreshToken)
	r.POST("/register", userHandler.Register)

	auth := r.Group("/auth")
	{
		auth.POST("/send-otp", verifyHandler.SendOTP)
		auth.POST("/verify-otp", verifyHandler.VerifyOTP)
	}

	meta := r.Group("/meta")
	{
		meta.GET("/pain-types", metaHandler.GetPainTypes)
		meta.GET("/injury-areas", metaHandler.GetInjuryAreas)
	}

	// ---- protected
	r.Use(middleware.AuthMiddleware())

	users := r.Group("/users")
	{
		users.GET("/me", userHandler.GetMe)
		users.PUT("/me", userHandler.UpdateMe)
		users.GET("/:id", userHandler.GetByID)
	}

	painData := r.Group("/paindata")
	{
		painData.POST("/", intakeHandler.Create)
		painData.GET("/", intakeHandler.ListMine)
		painData.GET("/:id", intakeHandler.GetByID)
		painData.POST("/:id/plan", intakeHandler.RegeneratePlan)
	}

	exercises := r.Group("/exercises")
	{
		exercises.GET("/", planHandler.ListMine)
		exercises.GET("/paindata/:painDataId", planHandler.GetBySubmission)
		exercises.GET("/id/:id", planHandler.GetByID)
		exercises.PATCH("/:id/items/:index/completion", planHandler.UpdateCompletion)
		exercises.GET("/:id/pdf", planHandler.DownloadPDF)
	}

	return r
}
