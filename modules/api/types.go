package api

import (
	"encoding/json"
	"time"
)

// ErrorResponse is the single-field error body every failure returns.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents a newly registered user.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest represents a token refresh request.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse represents an authentication token response.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// CreateProjectRequest is the body of POST /projects/.
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ProjectCreatedResponse is returned with 201 on project creation.
type ProjectCreatedResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProjectResponse is an entry in the project list.
type ProjectResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateTaskRequest is the body of POST /projects/:project_id/tasks/.
// Priority is decoded as a raw number so a non-integer value can be rejected
// with a precise message instead of a generic body-parse failure.
type CreateTaskRequest struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Priority    json.Number `json:"priority"`
	DueDate     string      `json:"due_date"`
	AssigneeID  *string     `json:"assignee_id"`
}

// TaskCreatedResponse is returned with 201 on task creation.
type TaskCreatedResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// TaskResponse is the minimal projection returned by GET /tasks/.
type TaskResponse struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Priority int    `json:"priority"`
}

// UpcomingTask is an entry in the dashboard's soonest-due list.
type UpcomingTask struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	DueDate string `json:"due_date"`
}

// DashboardResponse is the body of GET /dashboard/.
type DashboardResponse struct {
	TotalProjects   int64            `json:"total_projects"`
	TotalTasks      int64            `json:"total_tasks"`
	TasksByStatus   map[string]int64 `json:"tasks_by_status"`
	UpcomingTasks   []UpcomingTask   `json:"upcoming_tasks"`
	UpcomingMessage string           `json:"upcoming_message,omitempty"`
}
