// Package memory implements the repository ports in process memory. It backs
// STORAGE_TYPE=memory and the service tests.
package memory

import (
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/period"
)

type key struct {
	employeeID string
	period     period.Period
}

func keyOf(employeeID string, p period.Period) key {
	return key{employeeID: employeeID, period: p}
}
