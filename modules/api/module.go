package api

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/example/task-tracker/modules/auth"
	"github.com/example/task-tracker/modules/tracker"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// APIModule is the HTTP surface of the tracker.
type APIModule struct {
	app           *fiber.App
	authContainer mono.ServiceContainer
	authAdapter   auth.AuthPort
	trackerModule *tracker.TrackerModule
	port          int
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule.
func NewModule() *APIModule {
	port := 3000
	if p := os.Getenv("HTTP_PORT"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil {
			port = parsed
		}
	}
	return &APIModule{port: port}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"auth"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authContainer = container
		m.authAdapter = auth.NewAuthAdapter(container)
	}
}

// SetTrackerModule injects the tracker module so handlers can call its
// service directly instead of going through the service bus.
func (m *APIModule) SetTrackerModule(tm *tracker.TrackerModule) {
	m.trackerModule = tm
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.authContainer == nil {
		return fmt.Errorf("auth dependency not set")
	}
	if m.trackerModule == nil {
		return fmt.Errorf("tracker module not set")
	}
	trackerService := m.trackerModule.GetService()
	if trackerService == nil {
		return fmt.Errorf("tracker service not available")
	}

	m.app = fiber.New(fiber.Config{
		AppName:               "Task Tracker API",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	m.app.Use(recover.New())
	m.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	m.app.Use(cors.New())

	m.setupRoutes(NewHandlers(trackerService, m.authContainer))

	go func() {
		addr := fmt.Sprintf(":%d", m.port)
		if err := m.app.Listen(addr); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on :%d", m.port)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port": m.port,
		},
	}
}

// setupRoutes configures all API routes.
func (m *APIModule) setupRoutes(handlers *Handlers) {
	m.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"module": "api",
		})
	})

	// Public auth routes
	authRoutes := m.app.Group("/auth")
	authRoutes.Post("/register", handlers.Register)
	authRoutes.Post("/login", handlers.Login)
	authRoutes.Post("/refresh", handlers.Refresh)

	// Everything else requires an authenticated caller.
	protected := m.app.Group("")
	protected.Use(AuthMiddleware(m.authAdapter))
	protected.Post("/projects/", handlers.CreateProject)
	protected.Get("/projects/list/", handlers.ListProjects)
	protected.Post("/projects/:project_id/tasks/", handlers.CreateTask)
	protected.Get("/tasks/", handlers.ListTasks)
	protected.Get("/dashboard/", handlers.Dashboard)
}

// errorHandler turns Fiber-level failures, including wrong-verb requests,
// into the API's single-field error body.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{Error: message})
}

// GetApp returns the Fiber app (for testing).
func (m *APIModule) GetApp() *fiber.App {
	return m.app
}
