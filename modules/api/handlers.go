package api

import (
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	domaintracker "github.com/example/task-tracker/domain/tracker"
	domainuser "github.com/example/task-tracker/domain/user"
	"github.com/example/task-tracker/modules/auth"
	"github.com/example/task-tracker/modules/tracker"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/gofiber/fiber/v2"
)

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	tracker       *tracker.Service
	authContainer mono.ServiceContainer
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(trackerService *tracker.Service, authContainer mono.ServiceContainer) *Handlers {
	return &Handlers{
		tracker:       trackerService,
		authContainer: authContainer,
	}
}

// currentUserID extracts the authenticated caller set by AuthMiddleware.
func currentUserID(c *fiber.Ctx) (string, bool) {
	claims, ok := c.Locals(UserContextKey).(*domainuser.Claims)
	if !ok || claims.UserID == "" {
		return "", false
	}
	return claims.UserID, true
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: message})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "user not authenticated"})
}

// trackerError maps service failures to HTTP responses. Validation and
// duplicate failures are the caller's fault; everything unanticipated is a
// 500 and only the generic message leaves the process.
func trackerError(c *fiber.Ctx, err error) error {
	var verr *domaintracker.ValidationError
	switch {
	case errors.As(err, &verr):
		return badRequest(c, verr.Message)
	case errors.Is(err, tracker.ErrDuplicateProject):
		return badRequest(c, "project with same name already exists")
	case errors.Is(err, tracker.ErrProjectNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "project not found"})
	default:
		log.Printf("[api] tracker error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "database error"})
	}
}

// CreateProject handles POST /projects/.
func (h *Handlers) CreateProject(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	project, err := h.tracker.CreateProject(c.UserContext(), userID, req.Name, req.Description)
	if err != nil {
		return trackerError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(ProjectCreatedResponse{
		ID:   project.ID,
		Name: project.Name,
	})
}

// ListProjects handles GET /projects/list/.
func (h *Handlers) ListProjects(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	projects, err := h.tracker.ListProjects(c.UserContext(), userID, c.Query("search"))
	if err != nil {
		return trackerError(c, err)
	}

	resp := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		resp = append(resp, ProjectResponse{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
		})
	}
	return c.JSON(resp)
}

// CreateTask handles POST /projects/:project_id/tasks/.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if req.Priority == "" {
		return badRequest(c, "priority is required")
	}
	priority, err := req.Priority.Int64()
	if err != nil {
		return badRequest(c, "priority must be an integer between 1 and 5")
	}

	var dueDate *time.Time
	if req.DueDate != "" {
		parsed, err := time.Parse(domaintracker.DateLayout, req.DueDate)
		if err != nil {
			return badRequest(c, "due_date must be in YYYY-MM-DD format")
		}
		dueDate = &parsed
	}

	task, err := h.tracker.CreateTask(c.UserContext(), userID, c.Params("project_id"), tracker.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    int(priority),
		DueDate:     dueDate,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		return trackerError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(TaskCreatedResponse{
		ID:    task.ID,
		Title: task.Title,
	})
}

// ListTasks handles GET /tasks/.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	filter := tracker.TaskFilter{
		Status:    c.Query("status"),
		ProjectID: c.Query("project_id"),
	}
	if dueBefore := c.Query("due_before"); dueBefore != "" {
		parsed, err := time.Parse(domaintracker.DateLayout, dueBefore)
		if err != nil {
			return badRequest(c, "due_before date must be YYYY-MM-DD")
		}
		filter.DueBefore = &parsed
	}

	tasks, err := h.tracker.ListTasks(c.UserContext(), userID, filter)
	if err != nil {
		return trackerError(c, err)
	}

	resp := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, TaskResponse{
			ID:       t.ID,
			Title:    t.Title,
			Priority: t.Priority,
		})
	}
	return c.JSON(resp)
}

// Dashboard handles GET /dashboard/.
func (h *Handlers) Dashboard(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	dashboard, err := h.tracker.GetDashboard(c.UserContext(), userID)
	if err != nil {
		return trackerError(c, err)
	}

	resp := DashboardResponse{
		TotalProjects: dashboard.TotalProjects,
		TotalTasks:    dashboard.TotalTasks,
		TasksByStatus: dashboard.TasksByStatus,
		UpcomingTasks: make([]UpcomingTask, 0, len(dashboard.Upcoming)),
	}
	for _, t := range dashboard.Upcoming {
		resp.UpcomingTasks = append(resp.UpcomingTasks, UpcomingTask{
			ID:      t.ID,
			Title:   t.Title,
			DueDate: t.DueDate.Format(domaintracker.DateLayout),
		})
	}
	if len(resp.UpcomingTasks) == 0 {
		resp.UpcomingMessage = tracker.UpcomingEmptyMessage
	}
	return c.JSON(resp)
}

// Register handles POST /auth/register.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "email and password are required")
	}

	authReq := auth.RegisterRequest{Email: req.Email, Password: req.Password}
	var resp auth.RegisterResponse
	if err := helper.CallRequestReplyService(
		c.UserContext(), h.authContainer, "register",
		json.Marshal, json.Unmarshal, &authReq, &resp,
	); err != nil {
		return authError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(UserResponse{
		ID:        resp.ID,
		Email:     resp.Email,
		CreatedAt: resp.CreatedAt,
	})
}

// Login handles POST /auth/login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "email and password are required")
	}

	authReq := auth.LoginRequest{Email: req.Email, Password: req.Password}
	var resp auth.LoginResponse
	if err := helper.CallRequestReplyService(
		c.UserContext(), h.authContainer, "login",
		json.Marshal, json.Unmarshal, &authReq, &resp,
	); err != nil {
		return authError(c, err)
	}

	return c.JSON(TokenResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		TokenType:    resp.TokenType,
	})
}

// Refresh handles POST /auth/refresh.
func (h *Handlers) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.RefreshToken == "" {
		return badRequest(c, "refresh token is required")
	}

	authReq := auth.RefreshRequest{RefreshToken: req.RefreshToken}
	var resp auth.RefreshResponse
	if err := helper.CallRequestReplyService(
		c.UserContext(), h.authContainer, "refresh-token",
		json.Marshal, json.Unmarshal, &authReq, &resp,
	); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error: "invalid or expired refresh token",
		})
	}

	return c.JSON(TokenResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		TokenType:    resp.TokenType,
	})
}

// authError maps auth service failures crossing the service container, where
// typed errors flatten to messages, back to HTTP statuses.
func authError(c *fiber.Ctx, err error) error {
	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "invalid email or password"):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "invalid email or password"})
	case strings.Contains(errStr, "user with this email already exists"):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: "user with this email already exists"})
	case strings.Contains(errStr, "invalid email format"):
		return badRequest(c, "invalid email format")
	case strings.Contains(errStr, "password must be at least"):
		return badRequest(c, "password must be at least 8 characters")
	case strings.Contains(errStr, "password must be at most"):
		return badRequest(c, "password must be at most 72 characters")
	default:
		log.Printf("[api] auth error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "internal error"})
	}
}
