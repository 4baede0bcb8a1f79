package model

import "time"

// Comment belongs to exactly one task or one subtask; TaskID and SubtaskID
// record that owner so deletion can scope its list maintenance. Replies are a
// single nesting level kept as an id list on the parent.
type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Message    string    `json:"message"`
	EmployeeID uint      `gorm:"index" json:"employee"`
	IsDeleted  bool      `gorm:"default:false" json:"isDeleted"`
	IsSubtask  bool      `gorm:"default:false" json:"isSubtask"`
	TaskID     *uint     `gorm:"index" json:"task,omitempty"`
	SubtaskID  *uint     `gorm:"index" json:"subtask,omitempty"`
	ReplyIDs   []uint    `gorm:"serializer:json" json:"replies"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
