package auth

import "task-manager/internal/model"

// Actor is the authenticated identity attached to a request.
type Actor struct {
	ID         uint
	EmployeeID string
	Role       model.Role
}

// CanAdminister reports whether the actor may perform admin-only operations
// (list all employees, delete employees).
func CanAdminister(actor Actor) bool {
	return actor.Role == model.RoleAdmin
}

// CanEditEmployee reports whether the actor may update the target employee's
// record. Admins edit anyone; everyone else edits only themselves.
func CanEditEmployee(actor Actor, target *model.Employee) bool {
	if actor.Role == model.RoleAdmin {
		return true
	}
	return actor.ID == target.ID
}
