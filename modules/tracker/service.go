package tracker

import (
	"context"
	"strings"
	"time"

	domain "github.com/example/task-tracker/domain/tracker"
	"github.com/google/uuid"
)

// upcomingLimit caps the dashboard's soonest-due task projection.
const upcomingLimit = 5

// UpcomingEmptyMessage is the notice returned alongside an empty
// upcoming-task list.
const UpcomingEmptyMessage = "No upcoming tasks!"

// CreateTaskInput carries the caller-supplied fields for a new task.
// Priority arrives already parsed; the range check happens in the entity so
// every write path re-runs it.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    int
	DueDate     *time.Time
	AssigneeID  *string
}

// Dashboard summarizes the requester's own projects and their tasks.
// Aggregates are scoped by project ownership only; the owner-or-assignee
// visibility rule applies to task listing, not to these counts.
type Dashboard struct {
	TotalProjects int64
	TotalTasks    int64
	TasksByStatus map[string]int64
	Upcoming      []*domain.Task
}

// Service implements the project, task and dashboard operations.
type Service struct {
	repo *Repository
}

// NewService creates a new tracker service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// CreateProject creates a project owned by ownerID. The name must be
// non-blank and unique among the owner's projects; other owners may reuse it.
func (s *Service) CreateProject(_ context.Context, ownerID, name, description string) (*domain.Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &domain.ValidationError{Message: "project name is required"}
	}

	// Fast-path duplicate check for a friendly error; the unique index
	// settles the check-then-create race.
	exists, err := s.repo.ProjectNameExists(ownerID, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateProject
	}

	project := &domain.Project{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
	}
	if err := s.repo.CreateProject(project); err != nil {
		return nil, err
	}
	return project, nil
}

// ListProjects returns the owner's projects, optionally filtered by a
// case-insensitive name substring. No matches is an empty result, not an
// error.
func (s *Service) ListProjects(_ context.Context, ownerID, search string) ([]*domain.Project, error) {
	return s.repo.FindProjectsByOwner(ownerID, search)
}

// CreateTask creates a task under a project the requester owns. A project
// owned by someone else resolves to ErrProjectNotFound, same as a missing
// one. The assignee id is stored without resolving it to a user; referential
// integrity for the weak reference lives in the schema.
func (s *Service) CreateTask(_ context.Context, requesterID, projectID string, in CreateTaskInput) (*domain.Task, error) {
	project, err := s.repo.FindProjectByOwner(projectID, requesterID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.Title) == "" {
		return nil, &domain.ValidationError{Message: "title is required"}
	}

	task := &domain.Task{
		ID:          uuid.New().String(),
		ProjectID:   project.ID,
		Title:       in.Title,
		Description: in.Description,
		Status:      domain.StatusTodo,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		AssigneeID:  in.AssigneeID,
	}
	if err := s.repo.CreateTask(task); err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasks returns every task visible to the requester (owner of the
// project or assignee of the task) matching the filter.
func (s *Service) ListTasks(_ context.Context, requesterID string, filter TaskFilter) ([]*domain.Task, error) {
	return s.repo.FindVisibleTasks(requesterID, filter)
}

// GetDashboard aggregates counts and the upcoming-task projection over the
// requester's own projects.
func (s *Service) GetDashboard(_ context.Context, requesterID string) (*Dashboard, error) {
	totalProjects, err := s.repo.CountProjectsByOwner(requesterID)
	if err != nil {
		return nil, err
	}

	totalTasks, err := s.repo.CountOwnedTasks(requesterID)
	if err != nil {
		return nil, err
	}

	byStatus, err := s.repo.CountOwnedTasksByStatus(requesterID)
	if err != nil {
		return nil, err
	}

	upcoming, err := s.repo.FindUpcomingTasks(requesterID, upcomingLimit)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		TotalProjects: totalProjects,
		TotalTasks:    totalTasks,
		TasksByStatus: byStatus,
		Upcoming:      upcoming,
	}, nil
}
