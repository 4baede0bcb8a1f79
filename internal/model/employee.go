package model

import "time"

// Role is the closed set of access levels an employee can hold.
type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Employee holds credentials and profile data for one account. The password
// column stores a bcrypt hash and is never serialized.
type Employee struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EmployeeID string    `gorm:"uniqueIndex" json:"employeeId"`
	Name       string    `json:"name"`
	Password   string    `json:"-"`
	Role       Role      `gorm:"default:User" json:"role"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
