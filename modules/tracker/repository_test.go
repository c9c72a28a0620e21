package tracker

import (
	"errors"
	"testing"
	"time"

	domain "github.com/example/task-tracker/domain/tracker"
	"github.com/example/task-tracker/domain/user"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&user.User{}, &domain.Project{}, &domain.Task{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *user.User {
	t.Helper()
	u := &user.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: "x",
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

func createTestProject(t *testing.T, db *gorm.DB, ownerID, name string) *domain.Project {
	t.Helper()
	p := &domain.Project{
		ID:      uuid.New().String(),
		Name:    name,
		OwnerID: ownerID,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("failed to create test project: %v", err)
	}
	return p
}

func createTestTask(t *testing.T, db *gorm.DB, projectID string, mutate func(*domain.Task)) *domain.Task {
	t.Helper()
	task := &domain.Task{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Title:     "task",
		Status:    domain.StatusTodo,
		Priority:  3,
	}
	if mutate != nil {
		mutate(task)
	}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("failed to create test task: %v", err)
	}
	return task
}

func dueIn(days int) *time.Time {
	d := time.Now().AddDate(0, 0, days)
	d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

func TestRepository_CreateProject_UniquePerOwner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	first := &domain.Project{ID: uuid.New().String(), Name: "Website", OwnerID: alice.ID}
	if err := repo.CreateProject(first); err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	t.Run("same name same owner fails at the storage layer", func(t *testing.T) {
		dup := &domain.Project{ID: uuid.New().String(), Name: "Website", OwnerID: alice.ID}
		err := repo.CreateProject(dup)
		if !errors.Is(err, ErrDuplicateProject) {
			t.Errorf("expected ErrDuplicateProject, got %v", err)
		}
	})

	t.Run("same name different owner succeeds", func(t *testing.T) {
		other := &domain.Project{ID: uuid.New().String(), Name: "Website", OwnerID: bob.ID}
		if err := repo.CreateProject(other); err != nil {
			t.Errorf("CreateProject() error = %v", err)
		}
	})
}

func TestRepository_FindProjectByOwner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")
	project := createTestProject(t, db, alice.ID, "Internal")

	t.Run("owner resolves own project", func(t *testing.T) {
		found, err := repo.FindProjectByOwner(project.ID, alice.ID)
		if err != nil {
			t.Fatalf("FindProjectByOwner() error = %v", err)
		}
		if found.ID != project.ID {
			t.Errorf("expected project %q, got %q", project.ID, found.ID)
		}
	})

	t.Run("someone else's project looks nonexistent", func(t *testing.T) {
		_, err := repo.FindProjectByOwner(project.ID, bob.ID)
		if !errors.Is(err, ErrProjectNotFound) {
			t.Errorf("expected ErrProjectNotFound, got %v", err)
		}
	})

	t.Run("missing project", func(t *testing.T) {
		_, err := repo.FindProjectByOwner("no-such-id", alice.ID)
		if !errors.Is(err, ErrProjectNotFound) {
			t.Errorf("expected ErrProjectNotFound, got %v", err)
		}
	})
}

func TestRepository_FindProjectsByOwner_Search(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	alice := createTestUser(t, db, "alice@example.com")
	createTestProject(t, db, alice.ID, "Website Redesign")
	createTestProject(t, db, alice.ID, "Mobile App")
	createTestProject(t, db, alice.ID, "Internal website tools")

	t.Run("no search returns all", func(t *testing.T) {
		projects, err := repo.FindProjectsByOwner(alice.ID, "")
		if err != nil {
			t.Fatalf("FindProjectsByOwner() error = %v", err)
		}
		if len(projects) != 3 {
			t.Errorf("expected 3 projects, got %d", len(projects))
		}
	})

	t.Run("search is a case-insensitive substring match", func(t *testing.T) {
		projects, err := repo.FindProjectsByOwner(alice.ID, "WEBSITE")
		if err != nil {
			t.Fatalf("FindProjectsByOwner() error = %v", err)
		}
		if len(projects) != 2 {
			t.Errorf("expected 2 projects, got %d", len(projects))
		}
	})

	t.Run("no matches is an empty result", func(t *testing.T) {
		projects, err := repo.FindProjectsByOwner(alice.ID, "payroll")
		if err != nil {
			t.Fatalf("FindProjectsByOwner() error = %v", err)
		}
		if len(projects) != 0 {
			t.Errorf("expected 0 projects, got %d", len(projects))
		}
	})
}

func TestRepository_CreateTask_ValidationBlocksWrite(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	alice := createTestUser(t, db, "alice@example.com")
	project := createTestProject(t, db, alice.ID, "Website")

	task := &domain.Task{
		ID:        uuid.New().String(),
		ProjectID: project.ID,
		Title:     "out of range",
		Status:    domain.StatusTodo,
		Priority:  9,
	}
	err := repo.CreateTask(task)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	var count int64
	if err := db.Model(&domain.Task{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count tasks: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no persisted tasks, got %d", count)
	}
}

func TestRepository_UpdatePathRunsValidation(t *testing.T) {
	db := setupTestDB(t)

	alice := createTestUser(t, db, "alice@example.com")
	project := createTestProject(t, db, alice.ID, "Website")
	task := createTestTask(t, db, project.ID, func(task *domain.Task) {
		task.DueDate = dueIn(7)
	})

	// Marking the task done while its due date is still in the future must
	// fail even though this write bypasses the service layer entirely.
	task.Status = domain.StatusDone
	err := db.Save(task).Error
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError on update, got %v", err)
	}

	var stored domain.Task
	if err := db.First(&stored, "id = ?", task.ID).Error; err != nil {
		t.Fatalf("failed to reload task: %v", err)
	}
	if stored.Status != domain.StatusTodo {
		t.Errorf("expected status to remain %q, got %q", domain.StatusTodo, stored.Status)
	}
}

func TestRepository_FindVisibleTasks(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	p1 := createTestProject(t, db, alice.ID, "P1")
	p2 := createTestProject(t, db, bob.ID, "P2")

	createTestTask(t, db, p1.ID, func(task *domain.Task) {
		task.Title = "T1"
		task.Priority = 1
	})
	createTestTask(t, db, p2.ID, func(task *domain.Task) {
		task.Title = "T2"
		task.Priority = 2
		task.AssigneeID = &alice.ID
	})

	t.Run("owner-or-assignee union", func(t *testing.T) {
		tasks, err := repo.FindVisibleTasks(alice.ID, TaskFilter{})
		if err != nil {
			t.Fatalf("FindVisibleTasks() error = %v", err)
		}
		titles := map[string]bool{}
		for _, task := range tasks {
			titles[task.Title] = true
		}
		if len(tasks) != 2 || !titles["T1"] || !titles["T2"] {
			t.Errorf("expected {T1, T2}, got %v", titles)
		}
	})

	t.Run("ownership alone for the other user", func(t *testing.T) {
		tasks, err := repo.FindVisibleTasks(bob.ID, TaskFilter{})
		if err != nil {
			t.Fatalf("FindVisibleTasks() error = %v", err)
		}
		if len(tasks) != 1 || tasks[0].Title != "T2" {
			t.Errorf("expected only T2, got %d tasks", len(tasks))
		}
	})

	t.Run("owner and assignee of the same task sees it once", func(t *testing.T) {
		createTestTask(t, db, p1.ID, func(task *domain.Task) {
			task.Title = "T3"
			task.AssigneeID = &alice.ID
		})
		tasks, err := repo.FindVisibleTasks(alice.ID, TaskFilter{})
		if err != nil {
			t.Fatalf("FindVisibleTasks() error = %v", err)
		}
		seen := 0
		for _, task := range tasks {
			if task.Title == "T3" {
				seen++
			}
		}
		if seen != 1 {
			t.Errorf("expected T3 exactly once, got %d occurrences", seen)
		}
	})
}

func TestRepository_FindVisibleTasks_Filters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	alice := createTestUser(t, db, "alice@example.com")
	p1 := createTestProject(t, db, alice.ID, "P1")
	p2 := createTestProject(t, db, alice.ID, "P2")

	createTestTask(t, db, p1.ID, func(task *domain.Task) {
		task.Title = "todo soon"
		task.DueDate = dueIn(1)
	})
	createTestTask(t, db, p1.ID, func(task *domain.Task) {
		task.Title = "in progress later"
		task.Status = domain.StatusInProgress
		task.DueDate = dueIn(10)
	})
	createTestTask(t, db, p2.ID, func(task *domain.Task) {
		task.Title = "done"
		task.Status = domain.StatusDone
	})

	t.Run("status filter", func(t *testing.T) {
		tasks, err := repo.FindVisibleTasks(alice.ID, TaskFilter{Status: domain.StatusDone})
		if err != nil {
			t.Fatalf("FindVisibleTasks() error = %v", err)
		}
		if len(tasks) != 1 || tasks[0].Title != "done" {
			t.Errorf("expected only the done task, got %d tasks", len(tasks))
		}
	})

	t.Run("project filter", func(t *testing.T) {
		tasks, err := repo.FindVisibleTasks(alice.ID, TaskFilter{ProjectID: p2.ID})
		if err != nil {
			t.Fatalf("FindVisibleTasks() error = %v", err)
		}
		if len(tasks) != 1 || tasks[0].Title != "done" {
			t.Errorf("expected only p2's task, got %d tasks", len(tasks))
		}
	})

	t.Run("due_before is strict", func(t *testing.T) {
		tasks, err := repo.FindVisibleTasks(alice.ID, TaskFilter{DueBefore: dueIn(10)})
		if err != nil {
			t.Fatalf("FindVisibleTasks() error = %v", err)
		}
		if len(tasks) != 1 || tasks[0].Title != "todo soon" {
			t.Errorf("expected only the sooner task, got %d tasks", len(tasks))
		}
	})

	t.Run("filters combine with AND", func(t *testing.T) {
		tasks, err := repo.FindVisibleTasks(alice.ID, TaskFilter{
			Status:    domain.StatusInProgress,
			ProjectID: p1.ID,
		})
		if err != nil {
			t.Fatalf("FindVisibleTasks() error = %v", err)
		}
		if len(tasks) != 1 || tasks[0].Title != "in progress later" {
			t.Errorf("expected only the in-progress p1 task, got %d tasks", len(tasks))
		}
	})
}

func TestRepository_FindUpcomingTasks(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	alice := createTestUser(t, db, "alice@example.com")
	project := createTestProject(t, db, alice.ID, "Website")

	createTestTask(t, db, project.ID, func(task *domain.Task) {
		task.Title = "third"
		task.DueDate = dueIn(9)
	})
	createTestTask(t, db, project.ID, func(task *domain.Task) {
		task.Title = "first"
		task.Status = domain.StatusInProgress
		task.DueDate = dueIn(1)
	})
	createTestTask(t, db, project.ID, func(task *domain.Task) {
		task.Title = "second"
		task.DueDate = dueIn(5)
	})
	createTestTask(t, db, project.ID, func(task *domain.Task) {
		task.Title = "no due date"
	})
	createTestTask(t, db, project.ID, func(task *domain.Task) {
		task.Title = "finished"
		task.Status = domain.StatusDone
		task.DueDate = dueIn(-2)
	})

	tasks, err := repo.FindUpcomingTasks(alice.ID, 5)
	if err != nil {
		t.Fatalf("FindUpcomingTasks() error = %v", err)
	}

	want := []string{"first", "second", "third"}
	if len(tasks) != len(want) {
		t.Fatalf("expected %d tasks, got %d", len(want), len(tasks))
	}
	for i, title := range want {
		if tasks[i].Title != title {
			t.Errorf("position %d: expected %q, got %q", i, title, tasks[i].Title)
		}
	}

	t.Run("limit", func(t *testing.T) {
		tasks, err := repo.FindUpcomingTasks(alice.ID, 2)
		if err != nil {
			t.Fatalf("FindUpcomingTasks() error = %v", err)
		}
		if len(tasks) != 2 {
			t.Errorf("expected 2 tasks, got %d", len(tasks))
		}
	})
}

func TestRepository_OwnedTaskCounts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	p1 := createTestProject(t, db, alice.ID, "P1")
	p2 := createTestProject(t, db, bob.ID, "P2")

	createTestTask(t, db, p1.ID, nil)
	createTestTask(t, db, p1.ID, func(task *domain.Task) {
		task.Status = domain.StatusDone
	})
	// Assigned to alice but owned by bob: counts for bob, not alice.
	createTestTask(t, db, p2.ID, func(task *domain.Task) {
		task.AssigneeID = &alice.ID
	})

	count, err := repo.CountOwnedTasks(alice.ID)
	if err != nil {
		t.Fatalf("CountOwnedTasks() error = %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 owned tasks, got %d", count)
	}

	byStatus, err := repo.CountOwnedTasksByStatus(alice.ID)
	if err != nil {
		t.Fatalf("CountOwnedTasksByStatus() error = %v", err)
	}
	if byStatus[domain.StatusTodo] != 1 || byStatus[domain.StatusDone] != 1 {
		t.Errorf("unexpected status counts: %v", byStatus)
	}
	if _, ok := byStatus[domain.StatusInProgress]; ok {
		t.Error("expected no zero-fill for absent statuses")
	}
}
