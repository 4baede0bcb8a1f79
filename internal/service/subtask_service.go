package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"task-manager/internal/model"
	"task-manager/internal/repository"
)

// SubtaskService wraps subtask CRUD and the upward user propagation onto the
// parent task.
type SubtaskService struct {
	db          *gorm.DB
	subtaskRepo *repository.SubtaskRepository
	taskRepo    *repository.TaskRepository
	commentRepo *repository.CommentRepository
	files       *FileStore
}

func NewSubtaskService(db *gorm.DB, subtaskRepo *repository.SubtaskRepository, taskRepo *repository.TaskRepository, commentRepo *repository.CommentRepository, files *FileStore) *SubtaskService {
	return &SubtaskService{
		db:          db,
		subtaskRepo: subtaskRepo,
		taskRepo:    taskRepo,
		commentRepo: commentRepo,
		files:       files,
	}
}

// Create stores a subtask under its parent task, registers it on the parent's
// subtask list and widens the parent's user set to cover the subtask's users.
// The whole sequence is one transaction.
func (s *SubtaskService) Create(ctx context.Context, creatorID, taskID uint, input TaskInput) (*model.Subtask, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalid)
	}

	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, orNotFound(err)
	}

	subtask := model.Subtask{
		TaskID:     taskID,
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
		Files:      []string{},
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.subtaskRepo.WithTx(tx).Create(ctx, &subtask); err != nil {
			return err
		}
		task.SubtaskIDs = append(task.SubtaskIDs, subtask.ID)
		task.UserIDs = unionUsers(task.UserIDs, subtask.UserIDs)
		return s.taskRepo.WithTx(tx).Save(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return &subtask, nil
}

func (s *SubtaskService) Get(ctx context.Context, id uint) (*model.Subtask, error) {
	subtask, err := s.subtaskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err)
	}
	return subtask, nil
}

// Update applies a partial update, then re-propagates the subtask's users onto
// the parent task. The parent's user set only ever grows.
func (s *SubtaskService) Update(ctx context.Context, id uint, patch TaskPatch) (*model.Subtask, error) {
	subtask, err := s.subtaskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err)
	}

	applyTaskPatch(patch, &subtask.Title, &subtask.Notes, &subtask.StartDate, &subtask.DueDate,
		&subtask.Completed, &subtask.Starred, &subtask.Important, &subtask.IsDeleted,
		&subtask.Tags, &subtask.UserIDs)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.subtaskRepo.WithTx(tx).Save(ctx, subtask); err != nil {
			return err
		}

		task, err := s.taskRepo.WithTx(tx).FindByID(ctx, subtask.TaskID)
		if err != nil {
			// A dangling parent reference is tolerated; the subtask update
			// itself still applies.
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		widened := unionUsers(task.UserIDs, subtask.UserIDs)
		if len(widened) == len(task.UserIDs) {
			return nil
		}
		task.UserIDs = widened
		return s.taskRepo.WithTx(tx).Save(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return subtask, nil
}

// Delete removes the subtask and its comments and pulls its id out of the
// parent task's subtask list, in one transaction.
func (s *SubtaskService) Delete(ctx context.Context, id uint) error {
	subtask, err := s.subtaskRepo.FindByID(ctx, id)
	if err != nil {
		return orNotFound(err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.commentRepo.WithTx(tx).DeleteBySubtask(ctx, id); err != nil {
			return err
		}
		if err := s.subtaskRepo.WithTx(tx).Delete(ctx, id); err != nil {
			return err
		}

		task, err := s.taskRepo.WithTx(tx).FindByID(ctx, subtask.TaskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		task.SubtaskIDs = removeID(task.SubtaskIDs, id)
		return s.taskRepo.WithTx(tx).Save(ctx, task)
	})
}

// AttachFiles appends stored file paths to the subtask's file list.
func (s *SubtaskService) AttachFiles(ctx context.Context, id uint, paths []string) (*model.Subtask, error) {
	subtask, err := s.subtaskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err)
	}

	subtask.Files = append(subtask.Files, paths...)
	if err := s.subtaskRepo.Save(ctx, subtask); err != nil {
		return nil, err
	}
	return subtask, nil
}

// DetachFile removes one path from the subtask's file list and unlinks the
// file.
func (s *SubtaskService) DetachFile(ctx context.Context, id uint, path string) error {
	subtask, err := s.subtaskRepo.FindByID(ctx, id)
	if err != nil {
		return orNotFound(err)
	}

	files, removed := removePath(subtask.Files, path)
	if !removed {
		return fmt.Errorf("%w: file %q not attached to subtask", ErrNotFound, path)
	}
	subtask.Files = files

	if err := s.subtaskRepo.Save(ctx, subtask); err != nil {
		return err
	}
	return s.files.Remove(path)
}

// unionUsers appends the ids from extra that base does not already contain.
func unionUsers(base, extra []uint) []uint {
	seen := make(map[uint]bool, len(base))
	for _, id := range base {
		seen[id] = true
	}
	for _, id := range extra {
		if !seen[id] {
			base = append(base, id)
			seen[id] = true
		}
	}
	return base
}

// removeID drops every occurrence of id from ids.
func removeID(ids []uint, id uint) []uint {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
