package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"task-manager/internal/auth"
	"task-manager/internal/model"
	"task-manager/internal/repository"
)

var testDBCounter atomic.Int64

// newTestDB opens a fresh in-memory database per test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := repository.NewDB(dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

type fixture struct {
	db        *gorm.DB
	tokens    *auth.TokenIssuer
	files     *FileStore
	employees *EmployeeService
	tasks     *TaskService
	subtasks  *SubtaskService
	comments  *CommentService

	employeeRepo *repository.EmployeeRepository
	taskRepo     *repository.TaskRepository
	subtaskRepo  *repository.SubtaskRepository
	commentRepo  *repository.CommentRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)

	files, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("file store: %v", err)
	}

	employeeRepo := repository.NewEmployeeRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	subtaskRepo := repository.NewSubtaskRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)

	return &fixture{
		db:           db,
		tokens:       tokens,
		files:        files,
		employees:    NewEmployeeService(employeeRepo, tokens),
		tasks:        NewTaskService(db, taskRepo, subtaskRepo, commentRepo, employeeRepo, files),
		subtasks:     NewSubtaskService(db, subtaskRepo, taskRepo, commentRepo, files),
		comments:     NewCommentService(db, commentRepo, taskRepo, subtaskRepo, employeeRepo),
		employeeRepo: employeeRepo,
		taskRepo:     taskRepo,
		subtaskRepo:  subtaskRepo,
		commentRepo:  commentRepo,
	}
}

// mustRegister creates an account and fails the test on error.
func (f *fixture) mustRegister(t *testing.T, employeeID string, role model.Role) *model.Employee {
	t.Helper()
	employee, err := f.employees.Register(context.Background(), RegisterInput{
		EmployeeID: employeeID,
		Name:       "Employee " + employeeID,
		Password:   "p",
		Role:       role,
		Department: "Eng",
	})
	if err != nil {
		t.Fatalf("register %s: %v", employeeID, err)
	}
	return employee
}

// mustCreateTask creates a task and fails the test on error.
func (f *fixture) mustCreateTask(t *testing.T, creatorID uint, title string, users []uint) *model.Task {
	t.Helper()
	task, err := f.tasks.Create(context.Background(), creatorID, TaskInput{Title: title, UserIDs: users})
	if err != nil {
		t.Fatalf("create task %q: %v", title, err)
	}
	return task
}
