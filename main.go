package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/example/task-tracker/modules/api"
	"github.com/example/task-tracker/modules/auth"
	"github.com/example/task-tracker/modules/tracker"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/joho/godotenv"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Optional .env file for local development.
	_ = godotenv.Load()

	log.Println("=== Task Tracker ===")

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Registration order matters: auth migrates the users table the
	// tracker schema references, and api needs both running.
	authModule := auth.NewModule()
	trackerModule := tracker.NewModule()
	apiModule := api.NewModule()
	apiModule.SetTrackerModule(trackerModule)

	app.Register(authModule)
	app.Register(trackerModule)
	app.Register(apiModule)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("Public endpoints:")
	log.Println("  POST /auth/register  - Create an account")
	log.Println("  POST /auth/login     - Obtain access/refresh tokens")
	log.Println("  POST /auth/refresh   - Refresh tokens")
	log.Println("")
	log.Println("Protected endpoints (require Bearer token):")
	log.Println("  POST /projects/                               - Create a project")
	log.Println("  GET  /projects/list/?search=                  - List own projects")
	log.Println("  POST /projects/:project_id/tasks/             - Create a task in an owned project")
	log.Println("  GET  /tasks/?status=&project_id=&due_before=  - List visible tasks")
	log.Println("  GET  /dashboard/                              - Project/task summary")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
