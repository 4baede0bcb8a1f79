package model

import "time"

// Task is the root aggregate. Subtask, comment and file membership is kept as
// denormalized id lists maintained by the service layer, not by gorm
// associations.
type Task struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	CreatorID  uint       `gorm:"index" json:"creator"`
	Title      string     `json:"title"`
	Notes      string     `json:"notes"`
	StartDate  *time.Time `json:"startDate"`
	DueDate    *time.Time `json:"dueDate"`
	Completed  bool       `gorm:"default:false" json:"completed"`
	Starred    bool       `gorm:"default:false" json:"starred"`
	Important  bool       `gorm:"default:false" json:"important"`
	IsDeleted  bool       `gorm:"default:false" json:"isDeleted"`
	Tags       []string   `gorm:"serializer:json" json:"tags"`
	UserIDs    []uint     `gorm:"serializer:json" json:"users"`
	CommentIDs []uint     `gorm:"serializer:json" json:"comments"`
	SubtaskIDs []uint     `gorm:"serializer:json" json:"subtasks"`
	Files      []string   `gorm:"serializer:json" json:"files"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// HasUser reports whether id is in the task's assigned user set.
func (t *Task) HasUser(id uint) bool {
	for _, u := range t.UserIDs {
		if u == id {
			return true
		}
	}
	return false
}
