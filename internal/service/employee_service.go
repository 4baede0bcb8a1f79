package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"task-manager/internal/auth"
	"task-manager/internal/model"
	"task-manager/internal/repository"
)

// RegisterInput is the payload for creating a new employee account.
type RegisterInput struct {
	EmployeeID string
	Name       string
	Password   string
	Role       model.Role
	Department string
}

// EmployeeUpdateInput carries a partial employee update. Nil fields are left
// unchanged; which fields apply depends on the actor (see Update).
type EmployeeUpdateInput struct {
	Name       *string
	Password   *string
	Department *string
	Role       *model.Role
	EmployeeID *string
}

// EmployeeService wraps identity management and login.
type EmployeeService struct {
	repo   *repository.EmployeeRepository
	tokens *auth.TokenIssuer
}

func NewEmployeeService(repo *repository.EmployeeRepository, tokens *auth.TokenIssuer) *EmployeeService {
	return &EmployeeService{repo: repo, tokens: tokens}
}

// Register creates a new account. The employee code must be unused; the role
// defaults to User unless the payload overrides it.
func (s *EmployeeService) Register(ctx context.Context, input RegisterInput) (*model.Employee, error) {
	if input.EmployeeID == "" || input.Name == "" || input.Password == "" || input.Department == "" {
		return nil, fmt.Errorf("%w: employeeId, name, password and department are required", ErrInvalid)
	}

	role := input.Role
	if role == "" {
		role = model.RoleUser
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalid, input.Role)
	}

	if _, err := s.repo.FindByEmployeeID(ctx, input.EmployeeID); err == nil {
		return nil, fmt.Errorf("%w: employee id %q", ErrConflict, input.EmployeeID)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check employee id: %w", err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	employee := model.Employee{
		EmployeeID: input.EmployeeID,
		Name:       input.Name,
		Password:   hash,
		Role:       role,
		Department: input.Department,
	}
	if err := s.repo.Create(ctx, &employee); err != nil {
		return nil, err
	}
	return &employee, nil
}

// Login checks credentials and issues a signed short-lived token.
func (s *EmployeeService) Login(ctx context.Context, employeeID, password string) (string, error) {
	employee, err := s.repo.FindByEmployeeID(ctx, employeeID)
	if err != nil {
		return "", orNotFound(err)
	}

	if !auth.CheckPassword(employee.Password, password) {
		return "", fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	return s.tokens.Issue(employee, time.Now())
}

// List returns every employee. Admin only.
func (s *EmployeeService) List(ctx context.Context, actor auth.Actor) ([]model.Employee, error) {
	if !auth.CanAdminister(actor) {
		return nil, fmt.Errorf("%w: only admins can view all employees", ErrForbidden)
	}
	return s.repo.ListAll(ctx)
}

func (s *EmployeeService) GetByEmployeeID(ctx context.Context, employeeID string) (*model.Employee, error) {
	employee, err := s.repo.FindByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, orNotFound(err)
	}
	return employee, nil
}

func (s *EmployeeService) ListByDepartment(ctx context.Context, department string) ([]model.Employee, error) {
	employees, err := s.repo.ListByDepartment(ctx, department)
	if err != nil {
		return nil, err
	}
	if len(employees) == 0 {
		return nil, fmt.Errorf("%w: no employees in department %q", ErrNotFound, department)
	}
	return employees, nil
}

// Update applies a partial update. Admins may change name, department, role
// and employee code of anyone; an employee may change only their own name and
// password. Password changes are re-hashed.
func (s *EmployeeService) Update(ctx context.Context, actor auth.Actor, employeeID string, input EmployeeUpdateInput) (*model.Employee, error) {
	employee, err := s.repo.FindByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, orNotFound(err)
	}

	if !auth.CanEditEmployee(actor, employee) {
		return nil, fmt.Errorf("%w: you can only update your own information", ErrForbidden)
	}

	if input.Name != nil {
		employee.Name = *input.Name
	}

	if auth.CanAdminister(actor) {
		if input.Department != nil {
			employee.Department = *input.Department
		}
		if input.Role != nil {
			if !input.Role.Valid() {
				return nil, fmt.Errorf("%w: unknown role %q", ErrInvalid, *input.Role)
			}
			employee.Role = *input.Role
		}
		if input.EmployeeID != nil && *input.EmployeeID != "" {
			employee.EmployeeID = *input.EmployeeID
		}
	} else if input.Password != nil {
		hash, err := auth.HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		employee.Password = hash
	}

	if err := s.repo.Save(ctx, employee); err != nil {
		return nil, err
	}
	return employee, nil
}

// Delete hard-deletes an account. Admin only; tasks referencing the employee
// are left untouched.
func (s *EmployeeService) Delete(ctx context.Context, actor auth.Actor, employeeID string) error {
	if !auth.CanAdminister(actor) {
		return fmt.Errorf("%w: only admins can delete employees", ErrForbidden)
	}

	employee, err := s.repo.FindByEmployeeID(ctx, employeeID)
	if err != nil {
		return orNotFound(err)
	}
	return s.repo.Delete(ctx, employee.ID)
}
