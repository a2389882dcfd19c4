package routes

import (
	"time"

	"pathcrafter/config"
	"pathcrafter/controllers"
	"pathcrafter/middleware"
	"pathcrafter/mlclient"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, logger *zap.SugaredLogger) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/users/register", authController.Register)
	app.Post("/api/users/login", authController.Login)

	authMiddleware := middleware.AuthMiddleware(cfg)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/users/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/users/settings", authMiddleware, userController.UpdateSettings)
	app.Delete("/api/users", authMiddleware, userController.DeleteAccount)

	// Learning path CRUD
	pathsController := controllers.NewPathsController(db, cfg)
	paths := app.Group("/api/learning-paths", authMiddleware)
	paths.Post("/", pathsController.CreateLearningPath)
	paths.Get("/", pathsController.GetLearningPaths)
	paths.Get("/:id", pathsController.GetLearningPath)
	paths.Put("/:id", pathsController.UpdateLearningPath)
	paths.Delete("/:id", pathsController.DeleteLearningPath)

	// Progress tracking sub-resources
	progressController := controllers.NewProgressController(db, cfg)
	paths.Post("/:id/track-activity", progressController.TrackActivity)
	paths.Put("/:id/weeks/:weekNumber/progress", progressController.UpdateWeekProgress)
	paths.Put("/:id/weeks/:weekNumber/complete", progressController.CompleteWeek)
	paths.Post("/:id/log-session", progressController.LogSession)
	paths.Get("/:id/analytics", progressController.GetAnalytics)

	// Generation gateway
	client := mlclient.New(
		cfg.MLServiceURL,
		time.Duration(cfg.MLServiceTimeoutSec)*time.Second,
		cfg.MLServiceMaxRetries,
		logger,
	)
	mlController := controllers.NewMLController(db, cfg, client)
	ml := app.Group("/api/ml", authMiddleware)
	ml.Post("/generate-path", mlController.GeneratePath)
	ml.Get("/health", mlController.HealthCheck)
}
