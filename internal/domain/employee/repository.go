package employee

import "context"

// EmployeeRepository reads employee records owned by the HR catalog.
// Payroll never writes through it.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	// GetByIDs returns the employees found; missing IDs are simply absent.
	GetByIDs(ctx context.Context, ids []string) ([]Employee, error)
}
