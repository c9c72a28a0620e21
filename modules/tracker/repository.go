package tracker

import (
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/example/task-tracker/domain/tracker"
	"gorm.io/gorm"
)

var (
	// ErrProjectNotFound is returned when a project does not exist or is not
	// owned by the requester. The two cases are indistinguishable on purpose
	// so non-owners cannot probe for project existence.
	ErrProjectNotFound = errors.New("project not found")
	// ErrDuplicateProject is returned when an owner already has a project
	// with the same name.
	ErrDuplicateProject = errors.New("project with same name already exists")
)

// TaskFilter narrows a visible-task query. Zero values mean "no filter";
// filters combine with AND.
type TaskFilter struct {
	Status    string
	ProjectID string
	DueBefore *time.Time
}

// Repository provides access to project and task storage.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new tracker repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateProject saves a new project. A unique-index violation on
// (owner, name) maps to ErrDuplicateProject.
func (r *Repository) CreateProject(project *domain.Project) error {
	if err := r.db.Create(project).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateProject
		}
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// ProjectNameExists reports whether the owner already has a project with the
// given name. This is a fast-path check only; the unique index is what makes
// duplicate creation safe under concurrency.
func (r *Repository) ProjectNameExists(ownerID, name string) (bool, error) {
	var count int64
	if err := r.db.Model(&domain.Project{}).
		Where("owner_id = ? AND name = ?", ownerID, name).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check project name: %w", err)
	}
	return count > 0, nil
}

// FindProjectByOwner resolves a project by id under the given ownership.
func (r *Repository) FindProjectByOwner(id, ownerID string) (*domain.Project, error) {
	var project domain.Project
	err := r.db.First(&project, "id = ? AND owner_id = ?", id, ownerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return &project, nil
}

// FindProjectsByOwner returns the owner's projects, optionally restricted to
// names containing search as a case-insensitive substring.
func (r *Repository) FindProjectsByOwner(ownerID, search string) ([]*domain.Project, error) {
	q := r.db.Where("owner_id = ?", ownerID)
	if search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var projects []*domain.Project
	if err := q.Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// CountProjectsByOwner returns how many projects the owner has.
func (r *Repository) CountProjectsByOwner(ownerID string) (int64, error) {
	var count int64
	if err := r.db.Model(&domain.Project{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return count, nil
}

// CreateTask saves a new task. Validation runs in the entity's BeforeSave
// hook, so a ValidationError from here means nothing was persisted.
func (r *Repository) CreateTask(task *domain.Task) error {
	if err := r.db.Create(task).Error; err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return err
		}
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// FindVisibleTasks returns all tasks the user may see: tasks in projects the
// user owns plus tasks assigned to the user, with the filter applied on top.
// A task matching both visibility branches appears once.
func (r *Repository) FindVisibleTasks(userID string, filter TaskFilter) ([]*domain.Task, error) {
	q := r.db.Model(&domain.Task{}).
		Select("tasks.*").
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Where("projects.owner_id = ? OR tasks.assignee_id = ?", userID, userID)

	if filter.Status != "" {
		q = q.Where("tasks.status = ?", filter.Status)
	}
	if filter.ProjectID != "" {
		q = q.Where("tasks.project_id = ?", filter.ProjectID)
	}
	if filter.DueBefore != nil {
		q = q.Where("tasks.due_date < ?", *filter.DueBefore)
	}

	var tasks []*domain.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// CountOwnedTasks counts tasks across the owner's projects, regardless of
// assignee.
func (r *Repository) CountOwnedTasks(ownerID string) (int64, error) {
	var count int64
	if err := r.db.Model(&domain.Task{}).
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Where("projects.owner_id = ?", ownerID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

// CountOwnedTasksByStatus groups the owner's tasks by status. Statuses with
// no tasks do not appear in the map.
func (r *Repository) CountOwnedTasksByStatus(ownerID string) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := r.db.Model(&domain.Task{}).
		Select("tasks.status AS status, COUNT(tasks.id) AS count").
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Where("projects.owner_id = ?", ownerID).
		Group("tasks.status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count tasks by status: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// FindUpcomingTasks returns the soonest-due open tasks (todo or in_progress,
// with a due date) in the owner's projects, ordered by due date with id as a
// deterministic tie-breaker.
func (r *Repository) FindUpcomingTasks(ownerID string, limit int) ([]*domain.Task, error) {
	var tasks []*domain.Task
	if err := r.db.Model(&domain.Task{}).
		Select("tasks.*").
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Where("projects.owner_id = ?", ownerID).
		Where("tasks.status IN ?", []string{domain.StatusTodo, domain.StatusInProgress}).
		Where("tasks.due_date IS NOT NULL").
		Order("tasks.due_date ASC, tasks.id ASC").
		Limit(limit).
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list upcoming tasks: %w", err)
	}
	return tasks, nil
}
