package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"task-manager/internal/model"
	"task-manager/internal/repository"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title     string
	Notes     string
	StartDate *time.Time
	DueDate   *time.Time
	Completed bool
	Starred   bool
	Important bool
	Tags      []string
	UserIDs   []uint
}

// TaskPatch carries a partial task update. Nil fields leave the stored value;
// present fields are applied even when empty.
type TaskPatch struct {
	Title     *string
	Notes     *string
	StartDate *time.Time
	DueDate   *time.Time
	Completed *bool
	Starred   *bool
	Important *bool
	IsDeleted *bool
	Tags      *[]string
	UserIDs   *[]uint
}

// UserRef is a resolved assigned-user reference.
type UserRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// CommentView is a comment with its author resolved.
type CommentView struct {
	model.Comment
	Employee UserRef `json:"employee"`
}

// TaskView is a task with assigned users and comment authors resolved.
type TaskView struct {
	model.Task
	Users    []UserRef     `json:"users"`
	Comments []CommentView `json:"comments"`
}

// TaskWithSubtasks augments a task with the caller's matching subtasks.
type TaskWithSubtasks struct {
	model.Task
	Users    []UserRef       `json:"users"`
	Subtasks []model.Subtask `json:"subtasks"`
}

// TaskService wraps task CRUD, the shallow read joins and the delete cascade.
type TaskService struct {
	db           *gorm.DB
	taskRepo     *repository.TaskRepository
	subtaskRepo  *repository.SubtaskRepository
	commentRepo  *repository.CommentRepository
	employeeRepo *repository.EmployeeRepository
	files        *FileStore
}

func NewTaskService(db *gorm.DB, taskRepo *repository.TaskRepository, subtaskRepo *repository.SubtaskRepository, commentRepo *repository.CommentRepository, employeeRepo *repository.EmployeeRepository, files *FileStore) *TaskService {
	return &TaskService{
		db:           db,
		taskRepo:     taskRepo,
		subtaskRepo:  subtaskRepo,
		commentRepo:  commentRepo,
		employeeRepo: employeeRepo,
		files:        files,
	}
}

// Create stores a new task. Listed users are not checked for existence.
func (s *TaskService) Create(ctx context.Context, creatorID uint, input TaskInput) (*model.Task, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalid)
	}

	task := model.Task{
		CreatorID:  creatorID,
		Title:      input.Title,
		Notes:      input.Notes,
		StartDate:  input.StartDate,
		DueDate:    input.DueDate,
		Completed:  input.Completed,
		Starred:    input.Starred,
		Important:  input.Important,
		Tags:       input.Tags,
		UserIDs:    input.UserIDs,
		CommentIDs: []uint{},
		SubtaskIDs: []uint{},
		Files:      []string{},
	}
	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// ListActive returns all non-archived tasks with users and comment authors
// resolved.
func (s *TaskService) ListActive(ctx context.Context) ([]TaskView, error) {
	tasks, err := s.taskRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]TaskView, 0, len(tasks))
	for i := range tasks {
		view, err := s.resolve(ctx, &tasks[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// ListForUser returns the non-archived tasks the user is assigned to, each
// augmented with the subtasks that also carry the user.
func (s *TaskService) ListForUser(ctx context.Context, userID uint) ([]TaskWithSubtasks, error) {
	tasks, err := s.taskRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	var result []TaskWithSubtasks
	for i := range tasks {
		task := tasks[i]
		if !task.HasUser(userID) {
			continue
		}

		subtasks, err := s.subtaskRepo.ListByTask(ctx, task.ID)
		if err != nil {
			return nil, err
		}
		matching := make([]model.Subtask, 0, len(subtasks))
		for _, st := range subtasks {
			for _, u := range st.UserIDs {
				if u == userID {
					matching = append(matching, st)
					break
				}
			}
		}

		users, err := s.resolveUsers(ctx, task.UserIDs)
		if err != nil {
			return nil, err
		}
		result = append(result, TaskWithSubtasks{Task: task, Users: users, Subtasks: matching})
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("%w: no tasks for user %d", ErrNotFound, userID)
	}
	return result, nil
}

func (s *TaskService) Get(ctx context.Context, id uint) (*TaskView, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err)
	}
	return s.resolve(ctx, task)
}

// Update applies a partial update. The creator is never touched.
func (s *TaskService) Update(ctx context.Context, id uint, patch TaskPatch) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err)
	}

	applyTaskPatch(patch, &task.Title, &task.Notes, &task.StartDate, &task.DueDate,
		&task.Completed, &task.Starred, &task.Important, &task.IsDeleted,
		&task.Tags, &task.UserIDs)

	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes the task, its subtasks and all comments owned by either, in
// one transaction. Uploaded files stay on disk.
func (s *TaskService) Delete(ctx context.Context, id uint) error {
	if _, err := s.taskRepo.FindByID(ctx, id); err != nil {
		return orNotFound(err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subtaskRepo := s.subtaskRepo.WithTx(tx)
		commentRepo := s.commentRepo.WithTx(tx)

		subtasks, err := subtaskRepo.ListByTask(ctx, id)
		if err != nil {
			return err
		}
		for _, st := range subtasks {
			if err := commentRepo.DeleteBySubtask(ctx, st.ID); err != nil {
				return err
			}
		}
		if err := subtaskRepo.DeleteByTask(ctx, id); err != nil {
			return err
		}
		if err := commentRepo.DeleteByTask(ctx, id); err != nil {
			return err
		}
		return s.taskRepo.WithTx(tx).Delete(ctx, id)
	})
}

// AttachFiles appends stored file paths to the task's file list.
func (s *TaskService) AttachFiles(ctx context.Context, id uint, paths []string) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err)
	}

	task.Files = append(task.Files, paths...)
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// DetachFile removes one path from the task's file list and unlinks the file.
func (s *TaskService) DetachFile(ctx context.Context, id uint, path string) error {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return orNotFound(err)
	}

	files, removed := removePath(task.Files, path)
	if !removed {
		return fmt.Errorf("%w: file %q not attached to task", ErrNotFound, path)
	}
	task.Files = files

	if err := s.taskRepo.Save(ctx, task); err != nil {
		return err
	}
	return s.files.Remove(path)
}

func (s *TaskService) resolve(ctx context.Context, task *model.Task) (*TaskView, error) {
	users, err := s.resolveUsers(ctx, task.UserIDs)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.FindByIDs(ctx, task.CommentIDs)
	if err != nil {
		return nil, err
	}
	views, err := resolveComments(ctx, s.employeeRepo, comments)
	if err != nil {
		return nil, err
	}

	return &TaskView{Task: *task, Users: users, Comments: views}, nil
}

func (s *TaskService) resolveUsers(ctx context.Context, ids []uint) ([]UserRef, error) {
	employees, err := s.employeeRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]string, len(employees))
	for _, e := range employees {
		byID[e.ID] = e.Name
	}

	refs := make([]UserRef, 0, len(ids))
	for _, id := range ids {
		// Dangling references resolve to an empty name.
		refs = append(refs, UserRef{ID: id, Name: byID[id]})
	}
	return refs, nil
}

// resolveComments attaches author names to a batch of comments, preserving
// input order.
func resolveComments(ctx context.Context, employees *repository.EmployeeRepository, comments []model.Comment) ([]CommentView, error) {
	ids := make([]uint, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.EmployeeID)
	}
	authors, err := employees.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]string, len(authors))
	for _, a := range authors {
		byID[a.ID] = a.Name
	}

	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, CommentView{
			Comment:  c,
			Employee: UserRef{ID: c.EmployeeID, Name: byID[c.EmployeeID]},
		})
	}
	return views, nil
}

// applyTaskPatch copies present patch fields onto the pointed-at destination
// fields. Shared between tasks and subtasks, which patch the same shape.
func applyTaskPatch(patch TaskPatch, title, notes *string, startDate, dueDate **time.Time,
	completed, starred, important, isDeleted *bool, tags *[]string, userIDs *[]uint) {
	if patch.Title != nil {
		*title = *patch.Title
	}
	if patch.Notes != nil {
		*notes = *patch.Notes
	}
	if patch.StartDate != nil {
		*startDate = patch.StartDate
	}
	if patch.DueDate != nil {
		*dueDate = patch.DueDate
	}
	if patch.Completed != nil {
		*completed = *patch.Completed
	}
	if patch.Starred != nil {
		*starred = *patch.Starred
	}
	if patch.Important != nil {
		*important = *patch.Important
	}
	if patch.IsDeleted != nil {
		*isDeleted = *patch.IsDeleted
	}
	if patch.Tags != nil {
		*tags = *patch.Tags
	}
	if patch.UserIDs != nil {
		*userIDs = *patch.UserIDs
	}
}

// removePath drops the first occurrence of path from files.
func removePath(files []string, path string) ([]string, bool) {
	for i, f := range files {
		if f == path {
			return append(files[:i:i], files[i+1:]...), true
		}
	}
	return files, false
}
