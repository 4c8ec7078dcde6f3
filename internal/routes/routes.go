package routes

import (
	"github.com/arnold/okrmaster-api/internal/config"
	"github.com/arnold/okrmaster-api/internal/handlers"
	"github.com/arnold/okrmaster-api/internal/metrics"
	"github.com/arnold/okrmaster-api/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
)

// NewApp builds the Fiber application with every route registered.
func NewApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "okrmaster-api",
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	handlers.Configure(cfg)
	Setup(app, cfg)
	return app
}

func Setup(app *fiber.App, cfg *config.Config) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handlers.Register)
	auth.Post("/login", handlers.Login)

	protected := api.Group("/", middleware.Protected(cfg.JWTSecret))

	protected.Get("/me", handlers.GetMe)
	protected.Put("/me", handlers.UpdateProfile)

	// Organizations & directory
	protected.Post("/organizations", handlers.CreateOrganization)

	org := protected.Group("/organization")
	org.Get("/people", handlers.GetPeople)
	org.Put("/people/:id", handlers.AssignPerson)
	org.Post("/invites", handlers.CreateInvite)

	// Join organization via invite code
	protected.Post("/invites/:code/join", handlers.JoinOrganization)

	objectives := protected.Group("/objectives")
	objectives.Get("/", handlers.GetObjectives)
	objectives.Post("/", handlers.CreateObjective)
	objectives.Get("/:id", handlers.GetObjective)
	objectives.Put("/:id", handlers.UpdateObjective)
	objectives.Delete("/:id", handlers.DeleteObjective)

	objectives.Post("/:id/key-results", handlers.CreateKeyResult)

	objectives.Post("/:id/coaching", handlers.RequestCoaching)
	objectives.Get("/:id/coaching", handlers.GetCoachingHistory)

	objectives.Post("/:id/comments", handlers.AddComment)
	objectives.Get("/:id/comments", handlers.GetComments)
	objectives.Delete("/:id/comments/:commentId", handlers.DeleteComment)

	keyResults := protected.Group("/key-results")
	keyResults.Put("/:id", handlers.UpdateKeyResult)
	keyResults.Delete("/:id", handlers.DeleteKeyResult)
	keyResults.Post("/:id/adopt", handlers.AdoptKeyResult)

	// AI collaborator
	protected.Post("/ai/suggestions", handlers.SuggestObjective)
	protected.Post("/reports/monthly", handlers.MonthlyReport)

	protected.Get("/activity", handlers.GetActivity)

	// Notifications
	notifications := protected.Group("/notifications")
	notifications.Get("/", handlers.GetNotifications)
	notifications.Put("/:id/read", handlers.MarkNotificationRead)
	notifications.Post("/read-all", handlers.MarkAllRead)

	// Device token for push notifications
	protected.Post("/device-token", handlers.RegisterDeviceToken)

	// WebSocket for real-time organization updates
	app.Use("/ws", handlers.WebSocketUpgrade())
	app.Get("/ws/organization", websocket.New(handlers.HandleWebSocket))
}
