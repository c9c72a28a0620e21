package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	domaintracker "github.com/example/task-tracker/domain/tracker"
	domainuser "github.com/example/task-tracker/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TrackerModule provides project, task and dashboard services backed by
// GORM + SQLite.
type TrackerModule struct {
	db      *gorm.DB
	repo    *Repository
	service *Service
	dbPath  string
}

// Compile-time interface checks.
var _ mono.Module = (*TrackerModule)(nil)
var _ mono.ServiceProviderModule = (*TrackerModule)(nil)
var _ mono.HealthCheckableModule = (*TrackerModule)(nil)

// NewModule creates a new TrackerModule. The database file is shared with
// the auth module so the foreign keys into the users table bind.
func NewModule() *TrackerModule {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "tracker.db"
	}
	return &TrackerModule{
		dbPath: dbPath,
	}
}

// Name returns the module name.
func (m *TrackerModule) Name() string {
	return "tracker"
}

// Start initializes the database connection and runs migrations.
func (m *TrackerModule) Start(_ context.Context) error {
	log.Printf("[tracker] Connecting to SQLite database: %s", m.dbPath)

	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "true" {
		logLevel = logger.Info
	}

	// TranslateError is required so a unique-index violation surfaces as
	// gorm.ErrDuplicatedKey instead of a raw driver error.
	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := m.db.AutoMigrate(
		&domainuser.User{},
		&domaintracker.Project{},
		&domaintracker.Task{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	m.repo = NewRepository(m.db)
	m.service = NewService(m.repo)

	log.Println("[tracker] Module started successfully")
	return nil
}

// Stop gracefully closes the database connection.
func (m *TrackerModule) Stop(_ context.Context) error {
	if m.db == nil {
		return nil
	}

	log.Println("[tracker] Closing database connection...")

	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	log.Println("[tracker] Database connection closed")
	return nil
}

// Health performs a health check on the tracker module.
func (m *TrackerModule) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get sql.DB: %v", err),
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver": "sqlite",
			"path":   m.dbPath,
		},
	}
}

// RegisterServices registers request-reply services in the service
// container. The framework prefixes service names with "services.tracker.".
func (m *TrackerModule) RegisterServices(container mono.ServiceContainer) error {
	services := map[string]func() error{
		"create-project": func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "create-project", json.Unmarshal, json.Marshal, m.createProject,
			)
		},
		"list-projects": func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "list-projects", json.Unmarshal, json.Marshal, m.listProjects,
			)
		},
		"create-task": func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "create-task", json.Unmarshal, json.Marshal, m.createTask,
			)
		},
		"list-tasks": func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "list-tasks", json.Unmarshal, json.Marshal, m.listTasks,
			)
		},
		"dashboard": func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "dashboard", json.Unmarshal, json.Marshal, m.getDashboard,
			)
		},
	}

	for name, register := range services {
		if err := register(); err != nil {
			return fmt.Errorf("failed to register %s service: %w", name, err)
		}
	}

	log.Printf("[tracker] Registered services: services.tracker.{create-project,list-projects,create-task,list-tasks,dashboard}")
	return nil
}

// GetService exposes the tracker service for in-process consumers such as
// the HTTP api module.
func (m *TrackerModule) GetService() *Service {
	return m.service
}
