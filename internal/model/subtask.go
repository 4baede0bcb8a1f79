package model

import "time"

// Subtask mirrors Task minus child subtasks, with a mandatory back-reference
// to its parent task. TaskID is set at creation and never changes.
type Subtask struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	TaskID     uint       `gorm:"index" json:"task"`
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
	Files      []string   `gorm:"serializer:json" json:"files"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}
