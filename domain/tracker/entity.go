package tracker

import (
	"time"

	"github.com/example/task-tracker/domain/user"
	"gorm.io/gorm"
)

// DateLayout is the wire format for due dates.
const DateLayout = "2006-01-02"

// Task status values.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// ValidationError reports a business-rule violation that must abort a write.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Project is a named container for tasks, owned by exactly one user.
// The composite unique index makes (owner, name) uniqueness a storage-layer
// guarantee, so concurrent creations cannot both succeed.
type Project struct {
	ID          string    `gorm:"primaryKey;type:text" json:"id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex:idx_projects_owner_name" json:"name"`
	Description string    `gorm:"size:500" json:"description"`
	OwnerID     string    `gorm:"type:text;not null;uniqueIndex:idx_projects_owner_name" json:"owner_id"`
	Owner       user.User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the table name for the Project entity.
func (Project) TableName() string {
	return "projects"
}

// Task belongs to a project and may be assigned to any user. The assignee is
// a weak reference: removing the user clears it instead of cascading.
type Task struct {
	ID          string     `gorm:"primaryKey;type:text" json:"id"`
	ProjectID   string     `gorm:"type:text;not null;index" json:"project_id"`
	Project     Project    `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	Title       string     `gorm:"size:120;not null" json:"title"`
	Description string     `gorm:"size:500" json:"description"`
	Status      string     `gorm:"size:20;not null;default:todo" json:"status"`
	Priority    int        `gorm:"not null" json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	AssigneeID  *string    `gorm:"type:text" json:"assignee_id,omitempty"`
	Assignee    *user.User `gorm:"foreignKey:AssigneeID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName returns the table name for the Task entity.
func (Task) TableName() string {
	return "tasks"
}

// Validate checks the task invariants in order and fails fast on the first
// violation: priority must be in [1,5], and a task marked done cannot carry
// a due date after today.
func (t *Task) Validate() error {
	if t.Priority < 1 || t.Priority > 5 {
		return &ValidationError{Message: "priority must be between 1 (highest) and 5 (lowest)"}
	}
	if t.Status == StatusDone && t.DueDate != nil {
		// Calendar-date comparison, independent of the stored time of day.
		if t.DueDate.Format(DateLayout) > time.Now().Format(DateLayout) {
			return &ValidationError{Message: "a completed task cannot have a future due date"}
		}
	}
	return nil
}

// BeforeSave runs validation on every create and update so no write path
// can skip the invariants.
func (t *Task) BeforeSave(_ *gorm.DB) error {
	return t.Validate()
}
