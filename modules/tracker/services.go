package tracker

import (
	"context"
	"fmt"
	"time"

	domain "github.com/example/task-tracker/domain/tracker"
	"github.com/go-monolith/mono"
)

// Typed request-reply handlers exposed through the service container. They
// mirror the HTTP surface for in-process and NATS callers; identity arrives
// in the request body because there is no HTTP middleware on this path.

func (m *TrackerModule) createProject(ctx context.Context, req CreateProjectRequest, _ *mono.Msg) (CreateProjectResponse, error) {
	if req.OwnerID == "" {
		return CreateProjectResponse{}, fmt.Errorf("owner_id is required")
	}

	project, err := m.service.CreateProject(ctx, req.OwnerID, req.Name, req.Description)
	if err != nil {
		return CreateProjectResponse{}, err
	}

	return CreateProjectResponse{ID: project.ID, Name: project.Name}, nil
}

func (m *TrackerModule) listProjects(ctx context.Context, req ListProjectsRequest, _ *mono.Msg) (ListProjectsResponse, error) {
	if req.OwnerID == "" {
		return ListProjectsResponse{}, fmt.Errorf("owner_id is required")
	}

	projects, err := m.service.ListProjects(ctx, req.OwnerID, req.Search)
	if err != nil {
		return ListProjectsResponse{}, err
	}

	resp := ListProjectsResponse{Projects: make([]ProjectResponse, 0, len(projects))}
	for _, p := range projects {
		resp.Projects = append(resp.Projects, ProjectResponse{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
		})
	}
	return resp, nil
}

func (m *TrackerModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (CreateTaskResponse, error) {
	if req.RequesterID == "" {
		return CreateTaskResponse{}, fmt.Errorf("requester_id is required")
	}

	var dueDate *time.Time
	if req.DueDate != "" {
		parsed, err := time.Parse(domain.DateLayout, req.DueDate)
		if err != nil {
			return CreateTaskResponse{}, &domain.ValidationError{Message: "due_date must be in YYYY-MM-DD format"}
		}
		dueDate = &parsed
	}

	task, err := m.service.CreateTask(ctx, req.RequesterID, req.ProjectID, CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     dueDate,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		return CreateTaskResponse{}, err
	}

	return CreateTaskResponse{ID: task.ID, Title: task.Title}, nil
}

func (m *TrackerModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	if req.RequesterID == "" {
		return ListTasksResponse{}, fmt.Errorf("requester_id is required")
	}

	filter := TaskFilter{
		Status:    req.Status,
		ProjectID: req.ProjectID,
	}
	if req.DueBefore != "" {
		parsed, err := time.Parse(domain.DateLayout, req.DueBefore)
		if err != nil {
			return ListTasksResponse{}, &domain.ValidationError{Message: "due_before date must be YYYY-MM-DD"}
		}
		filter.DueBefore = &parsed
	}

	tasks, err := m.service.ListTasks(ctx, req.RequesterID, filter)
	if err != nil {
		return ListTasksResponse{}, err
	}

	resp := ListTasksResponse{Tasks: make([]TaskResponse, 0, len(tasks))}
	for _, t := range tasks {
		resp.Tasks = append(resp.Tasks, TaskResponse{
			ID:       t.ID,
			Title:    t.Title,
			Priority: t.Priority,
		})
	}
	return resp, nil
}

func (m *TrackerModule) getDashboard(ctx context.Context, req DashboardRequest, _ *mono.Msg) (DashboardResponse, error) {
	if req.RequesterID == "" {
		return DashboardResponse{}, fmt.Errorf("requester_id is required")
	}

	dashboard, err := m.service.GetDashboard(ctx, req.RequesterID)
	if err != nil {
		return DashboardResponse{}, err
	}

	resp := DashboardResponse{
		TotalProjects: dashboard.TotalProjects,
		TotalTasks:    dashboard.TotalTasks,
		TasksByStatus: dashboard.TasksByStatus,
		UpcomingTasks: make([]UpcomingTaskResponse, 0, len(dashboard.Upcoming)),
	}
	for _, t := range dashboard.Upcoming {
		resp.UpcomingTasks = append(resp.UpcomingTasks, UpcomingTaskResponse{
			ID:      t.ID,
			Title:   t.Title,
			DueDate: t.DueDate.Format(domain.DateLayout),
		})
	}
	if len(resp.UpcomingTasks) == 0 {
		resp.UpcomingMessage = UpcomingEmptyMessage
	}
	return resp, nil
}
