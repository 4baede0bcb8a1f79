package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"task-manager/internal/model"
	"task-manager/internal/repository"
)

// CommentPatch carries a partial comment update. Nil fields leave the stored
// value.
type CommentPatch struct {
	Message   *string
	IsDeleted *bool
}

// CommentService wraps the comment threads hanging off tasks and subtasks.
type CommentService struct {
	db           *gorm.DB
	commentRepo  *repository.CommentRepository
	taskRepo     *repository.TaskRepository
	subtaskRepo  *repository.SubtaskRepository
	employeeRepo *repository.EmployeeRepository
}

func NewCommentService(db *gorm.DB, commentRepo *repository.CommentRepository, taskRepo *repository.TaskRepository, subtaskRepo *repository.SubtaskRepository, employeeRepo *repository.EmployeeRepository) *CommentService {
	return &CommentService{
		db:           db,
		commentRepo:  commentRepo,
		taskRepo:     taskRepo,
		subtaskRepo:  subtaskRepo,
		employeeRepo: employeeRepo,
	}
}

// CreateForTask stores a comment under a task and registers it on the task's
// comment list, in one transaction.
func (s *CommentService) CreateForTask(ctx context.Context, taskID, authorID uint, message string) (*model.Comment, error) {
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalid)
	}

	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, orNotFound(err)
	}

	comment := model.Comment{
		Message:    message,
		EmployeeID: authorID,
		TaskID:     &task.ID,
		ReplyIDs:   []uint{},
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.commentRepo.WithTx(tx).Create(ctx, &comment); err != nil {
			return err
		}
		task.CommentIDs = append(task.CommentIDs, comment.ID)
		return s.taskRepo.WithTx(tx).Save(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// CreateForSubtask stores a comment under a subtask, marking it as part of the
// subtask comment stream.
func (s *CommentService) CreateForSubtask(ctx context.Context, subtaskID, authorID uint, message string) (*model.Comment, error) {
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalid)
	}

	subtask, err := s.subtaskRepo.FindByID(ctx, subtaskID)
	if err != nil {
		return nil, orNotFound(err)
	}

	comment := model.Comment{
		Message:    message,
		EmployeeID: authorID,
		IsSubtask:  true,
		SubtaskID:  &subtask.ID,
		ReplyIDs:   []uint{},
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.commentRepo.WithTx(tx).Create(ctx, &comment); err != nil {
			return err
		}
		subtask.CommentIDs = append(subtask.CommentIDs, comment.ID)
		return s.subtaskRepo.WithTx(tx).Save(ctx, subtask)
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListForTask returns the task's live top-level comments with authors
// resolved.
func (s *CommentService) ListForTask(ctx context.Context, taskID uint) ([]CommentView, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, orNotFound(err)
	}
	return s.listOwned(ctx, task.CommentIDs, false)
}

// ListForSubtask returns the subtask's live top-level comments with authors
// resolved.
func (s *CommentService) ListForSubtask(ctx context.Context, subtaskID uint) ([]CommentView, error) {
	subtask, err := s.subtaskRepo.FindByID(ctx, subtaskID)
	if err != nil {
		return nil, orNotFound(err)
	}
	return s.listOwned(ctx, subtask.CommentIDs, true)
}

func (s *CommentService) listOwned(ctx context.Context, ids []uint, isSubtask bool) ([]CommentView, error) {
	comments, err := s.commentRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]model.Comment, len(comments))
	for _, c := range comments {
		byID[c.ID] = c
	}

	// Keep the owner's list order and drop soft-deleted or wrong-stream ids.
	ordered := make([]model.Comment, 0, len(ids))
	for _, id := range ids {
		c, ok := byID[id]
		if !ok || c.IsDeleted || c.IsSubtask != isSubtask {
			continue
		}
		ordered = append(ordered, c)
	}
	return resolveComments(ctx, s.employeeRepo, ordered)
}

// Update applies a partial update (message edit or soft delete).
func (s *CommentService) Update(ctx context.Context, id uint, patch CommentPatch) (*model.Comment, error) {
	comment, err := s.commentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err)
	}

	if patch.Message != nil {
		comment.Message = *patch.Message
	}
	if patch.IsDeleted != nil {
		comment.IsDeleted = *patch.IsDeleted
	}

	if err := s.commentRepo.Save(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Delete removes the comment and its replies and pulls the comment id from
// the owning task's or subtask's list, in one transaction.
func (s *CommentService) Delete(ctx context.Context, id uint) error {
	comment, err := s.commentRepo.FindByID(ctx, id)
	if err != nil {
		return orNotFound(err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commentRepo := s.commentRepo.WithTx(tx)

		if err := commentRepo.DeleteByIDs(ctx, comment.ReplyIDs); err != nil {
			return err
		}
		if err := commentRepo.Delete(ctx, id); err != nil {
			return err
		}

		switch {
		case comment.TaskID != nil:
			task, err := s.taskRepo.WithTx(tx).FindByID(ctx, *comment.TaskID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil
				}
				return err
			}
			task.CommentIDs = removeID(task.CommentIDs, id)
			return s.taskRepo.WithTx(tx).Save(ctx, task)
		case comment.SubtaskID != nil:
			subtask, err := s.subtaskRepo.WithTx(tx).FindByID(ctx, *comment.SubtaskID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil
				}
				return err
			}
			subtask.CommentIDs = removeID(subtask.CommentIDs, id)
			return s.subtaskRepo.WithTx(tx).Save(ctx, subtask)
		}
		return nil
	})
}

// Reply creates a comment under an existing comment. The reply inherits the
// parent's stream flag and owner reference; it never shows up in List.
func (s *CommentService) Reply(ctx context.Context, parentID, authorID uint, message string) (*model.Comment, error) {
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalid)
	}

	parent, err := s.commentRepo.FindByID(ctx, parentID)
	if err != nil {
		return nil, orNotFound(err)
	}

	reply := model.Comment{
		Message:    message,
		EmployeeID: authorID,
		IsSubtask:  parent.IsSubtask,
		TaskID:     parent.TaskID,
		SubtaskID:  parent.SubtaskID,
		ReplyIDs:   []uint{},
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commentRepo := s.commentRepo.WithTx(tx)
		if err := commentRepo.Create(ctx, &reply); err != nil {
			return err
		}
		parent.ReplyIDs = append(parent.ReplyIDs, reply.ID)
		return commentRepo.Save(ctx, parent)
	})
	if err != nil {
		return nil, err
	}
	return &reply, nil
}
