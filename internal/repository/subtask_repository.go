package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"task-manager/internal/model"
)

// SubtaskRepository handles CRUD for subtasks.
type SubtaskRepository struct {
	db *gorm.DB
}

func NewSubtaskRepository(db *gorm.DB) *SubtaskRepository {
	return &SubtaskRepository{db: db}
}

func (r *SubtaskRepository) WithTx(tx *gorm.DB) *SubtaskRepository {
	return &SubtaskRepository{db: tx}
}

func (r *SubtaskRepository) Create(ctx context.Context, subtask *model.Subtask) error {
	if err := r.db.WithContext(ctx).Create(subtask).Error; err != nil {
		return fmt.Errorf("create subtask: %w", err)
	}
	return nil
}

func (r *SubtaskRepository) FindByID(ctx context.Context, id uint) (*model.Subtask, error) {
	var subtask model.Subtask
	if err := r.db.WithContext(ctx).First(&subtask, id).Error; err != nil {
		return nil, err
	}
	return &subtask, nil
}

// ListByTask returns every subtask pointing at the given parent task.
func (r *SubtaskRepository) ListByTask(ctx context.Context, taskID uint) ([]model.Subtask, error) {
	var subtasks []model.Subtask
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).
		Order("created_at ASC").Find(&subtasks).Error; err != nil {
		return nil, err
	}
	return subtasks, nil
}

func (r *SubtaskRepository) Save(ctx context.Context, subtask *model.Subtask) error {
	if err := r.db.WithContext(ctx).Save(subtask).Error; err != nil {
		return fmt.Errorf("save subtask: %w", err)
	}
	return nil
}

func (r *SubtaskRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.Subtask{}, id).Error; err != nil {
		return fmt.Errorf("delete subtask: %w", err)
	}
	return nil
}

// DeleteByTask removes all subtasks owned by the given task.
func (r *SubtaskRepository) DeleteByTask(ctx context.Context, taskID uint) error {
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).
		Delete(&model.Subtask{}).Error; err != nil {
		return fmt.Errorf("delete subtasks of task %d: %w", taskID, err)
	}
	return nil
}
