package effectiveness

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/period"
	"github.com/shopspring/decimal"
)

// Record marks an (employee, period) as finalized and carries the snapshot of
// the attendance grid taken at finalisation.
type Record struct {
	EmployeeID      string
	Period          period.Period
	UnjustifiedDays int
	JustifiedDays   int
	WorkedDays      int
	VacationDays    int
	OvertimeHours   decimal.Decimal
	LostHours       decimal.Decimal
	FinalizedBy     string
	FinalizedAt     time.Time
}
