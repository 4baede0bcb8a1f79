package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"task-manager/internal/model"
)

// CommentRepository handles CRUD for comments and replies.
type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) WithTx(tx *gorm.DB) *CommentRepository {
	return &CommentRepository{db: tx}
}

func (r *CommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

func (r *CommentRepository) FindByID(ctx context.Context, id uint) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// FindByIDs returns the comments matching ids, in no particular order.
func (r *CommentRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.Comment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var comments []model.Comment
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *CommentRepository) Save(ctx context.Context, comment *model.Comment) error {
	if err := r.db.WithContext(ctx).Save(comment).Error; err != nil {
		return fmt.Errorf("save comment: %w", err)
	}
	return nil
}

func (r *CommentRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.Comment{}, id).Error; err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

// DeleteByIDs removes a batch of comments, used for reply cascades.
func (r *CommentRepository) DeleteByIDs(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).
		Delete(&model.Comment{}).Error; err != nil {
		return fmt.Errorf("delete comments: %w", err)
	}
	return nil
}

// DeleteByTask removes all comments owned by the given task.
func (r *CommentRepository) DeleteByTask(ctx context.Context, taskID uint) error {
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).
		Delete(&model.Comment{}).Error; err != nil {
		return fmt.Errorf("delete comments of task %d: %w", taskID, err)
	}
	return nil
}

// DeleteBySubtask removes all comments owned by the given subtask.
func (r *CommentRepository) DeleteBySubtask(ctx context.Context, subtaskID uint) error {
	if err := r.db.WithContext(ctx).Where("subtask_id = ?", subtaskID).
		Delete(&model.Comment{}).Error; err != nil {
		return fmt.Errorf("delete comments of subtask %d: %w", subtaskID, err)
	}
	return nil
}
