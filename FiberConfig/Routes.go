package FiberConfig

import (
	"fmt"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/gorm"

	"github.com/flawiddsouza/streaks-and-todo-sub000/Controllers"
	"github.com/flawiddsouza/streaks-and-todo-sub000/Models"
	"github.com/flawiddsouza/streaks-and-todo-sub000/middleware"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize handlers
	groupController := Controllers.NewGroupController(db)
	streakController := Controllers.NewStreakController(db)
	taskController := Controllers.NewTaskController(db)
	pinGroupController := Controllers.NewPinGroupController(db)
	exportController := Controllers.NewExportController(db)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// API group
	api := app.Group("/api")

	// Auth routes
	api.Post("/Login", Controllers.Login)
	api.Post("/Logout", Controllers.Logout)
	api.Get("/User", middleware.Verify(0), Controllers.User)
	api.Get("/validate-token", Controllers.ValidateToken)
	api.Post("/RegisterUser", middleware.Verify(4), Controllers.RegisterUser)

	// Group routes
	groups := api.Group("/groups", middleware.Verify(0))
	groups.Get("/", groupController.GetGroups)
	groups.Post("/", groupController.CreateGroup)
	groups.Put("/reorder", groupController.ReorderGroups)
	groups.Put("/:id", groupController.UpdateGroup)
	groups.Delete("/:id", groupController.DeleteGroup)
	groups.Get("/:id/notes", groupController.GetGroupNotes)
	groups.Put("/:id/notes/:date", groupController.SetGroupNote)

	// Typed group views
	streakGroups := api.Group("/streak-groups", middleware.Verify(0))
	streakGroups.Get("/:id", groupController.GetStreakGroup)
	streakGroups.Post("/:id/streaks", streakController.AddStreakToGroup)
	streakGroups.Delete("/:id/streaks/:streakId", streakController.RemoveStreakFromGroup)
	api.Get("/task-groups/:id", middleware.Verify(0), groupController.GetTaskGroup)

	// Streak routes
	streaks := api.Group("/streaks", middleware.Verify(0))
	streaks.Post("/", streakController.CreateStreak)
	streaks.Put("/:id", streakController.UpdateStreak)
	streaks.Delete("/:id", streakController.DeleteStreak)
	streaks.Post("/:id/log", streakController.SetStreakLog)
	streaks.Delete("/:id/log/:date", streakController.DeleteStreakLog)
	streaks.Get("/:id/stats", streakController.GetStreakStats)

	// Task routes - fixed paths registered before the :id routes
	tasks := api.Group("/tasks", middleware.Verify(0))
	tasks.Post("/new/log", taskController.CreateTaskWithLog)
	tasks.Put("/reorder", taskController.ReorderTaskLogs)
	tasks.Post("/move-log", taskController.MoveTaskLog)
	tasks.Put("/log/:logId", taskController.UpdateTaskLog)
	tasks.Delete("/log/:logId", taskController.DeleteTaskLog)
	tasks.Post("/", taskController.CreateTask)
	tasks.Put("/:id", taskController.UpdateTask)
	tasks.Delete("/:id", taskController.DeleteTask)
	tasks.Post("/:id/log", taskController.AddTaskLog)

	// Pin group routes
	pinGroups := api.Group("/pin-groups", middleware.Verify(0))
	pinGroups.Get("/", pinGroupController.GetPinGroups)
	pinGroups.Post("/", pinGroupController.CreatePinGroup)
	pinGroups.Put("/:id", pinGroupController.UpdatePinGroup)
	pinGroups.Delete("/:id", pinGroupController.DeletePinGroup)
	pinGroups.Post("/:id/tasks", pinGroupController.AddTaskToPinGroup)
	pinGroups.Delete("/:id/tasks/:taskId", pinGroupController.RemoveTaskFromPinGroup)
	pinGroups.Put("/:id/tasks/reorder", pinGroupController.ReorderPinGroupTasks)

	// SSE event stream
	api.Get("/events", middleware.Verify(0), Controllers.StreamEvents)

	// Exports
	api.Get("/export/streaks", middleware.Verify(0), exportController.ExportStreaks)
	api.Get("/export/tasks", middleware.Verify(0), exportController.ExportTasks)

	// Request logs (admin)
	api.Get("/logs", middleware.Verify(4), Controllers.GetLogs)
	api.Get("/logs/stats", middleware.Verify(4), Controllers.GetLogStats)
}

func FiberConfig() {
	fmt.Println("Server Up...")
	app := fiber.New()
	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           300,
	}))

	SetupRoutes(app, Models.DB)
	app.Static("/static", "static/")

	port := os.Getenv("PORT")
	if port == "" {
		port = "9008"
	}
	log.Fatal(app.Listen(":" + port))
}
