package tracker

// CreateProjectRequest is the request for creating a project.
type CreateProjectRequest struct {
	OwnerID     string `json:"owner_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateProjectResponse is the response after creating a project.
type CreateProjectResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListProjectsRequest is the request for listing an owner's projects.
type ListProjectsRequest struct {
	OwnerID string `json:"owner_id"`
	Search  string `json:"search,omitempty"`
}

// ProjectResponse represents a project in list responses.
type ProjectResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListProjectsResponse is the response containing an owner's projects.
type ListProjectsResponse struct {
	Projects []ProjectResponse `json:"projects"`
}

// CreateTaskRequest is the request for creating a task in an owned project.
type CreateTaskRequest struct {
	RequesterID string  `json:"requester_id"`
	ProjectID   string  `json:"project_id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Priority    int     `json:"priority"`
	DueDate     string  `json:"due_date,omitempty"`
	AssigneeID  *string `json:"assignee_id,omitempty"`
}

// CreateTaskResponse is the response after creating a task.
type CreateTaskResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ListTasksRequest is the request for listing tasks visible to a user.
type ListTasksRequest struct {
	RequesterID string `json:"requester_id"`
	Status      string `json:"status,omitempty"`
	ProjectID   string `json:"project_id,omitempty"`
	DueBefore   string `json:"due_before,omitempty"`
}

// TaskResponse is the minimal task projection used by list responses.
type TaskResponse struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Priority int    `json:"priority"`
}

// ListTasksResponse is the response containing visible tasks.
type ListTasksResponse struct {
	Tasks []TaskResponse `json:"tasks"`
}

// DashboardRequest is the request for a user's dashboard.
type DashboardRequest struct {
	RequesterID string `json:"requester_id"`
}

// UpcomingTaskResponse is an entry in the soonest-due task projection.
type UpcomingTaskResponse struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	DueDate string `json:"due_date"`
}

// DashboardResponse summarizes the requester's projects and tasks.
type DashboardResponse struct {
	TotalProjects   int64                  `json:"total_projects"`
	TotalTasks      int64                  `json:"total_tasks"`
	TasksByStatus   map[string]int64       `json:"tasks_by_status"`
	UpcomingTasks   []UpcomingTaskResponse `json:"upcoming_tasks"`
	UpcomingMessage string                 `json:"upcoming_message,omitempty"`
}
