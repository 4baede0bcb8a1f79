package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"task-manager/internal/model"
)

// EmployeeRepository handles CRUD for employees.
type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) Create(ctx context.Context, employee *model.Employee) error {
	if err := r.db.WithContext(ctx).Create(employee).Error; err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}

func (r *EmployeeRepository) FindByID(ctx context.Context, id uint) (*model.Employee, error) {
	var employee model.Employee
	if err := r.db.WithContext(ctx).First(&employee, id).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

// FindByEmployeeID looks up by the external employee code, not the row id.
func (r *EmployeeRepository) FindByEmployeeID(ctx context.Context, employeeID string) (*model.Employee, error) {
	var employee model.Employee
	if err := r.db.WithContext(ctx).Where("employee_id = ?", employeeID).First(&employee).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *EmployeeRepository) ListAll(ctx context.Context) ([]model.Employee, error) {
	var employees []model.Employee
	if err := r.db.WithContext(ctx).Order("employee_id ASC").Find(&employees).Error; err != nil {
		return nil, err
	}
	return employees, nil
}

func (r *EmployeeRepository) ListByDepartment(ctx context.Context, department string) ([]model.Employee, error) {
	var employees []model.Employee
	if err := r.db.WithContext(ctx).Where("department = ?", department).
		Order("employee_id ASC").Find(&employees).Error; err != nil {
		return nil, err
	}
	return employees, nil
}

// FindByIDs returns the employees matching ids, in no particular order.
// Missing ids are skipped; dangling references are tolerated by contract.
func (r *EmployeeRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.Employee, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var employees []model.Employee
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&employees).Error; err != nil {
		return nil, err
	}
	return employees, nil
}

func (r *EmployeeRepository) Save(ctx context.Context, employee *model.Employee) error {
	if err := r.db.WithContext(ctx).Save(employee).Error; err != nil {
		return fmt.Errorf("save employee: %w", err)
	}
	return nil
}

func (r *EmployeeRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.Employee{}, id).Error; err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	return nil
}
