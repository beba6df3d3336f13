package attendance

import (
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/period"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type RecordDayRequest struct {
	EmployeeID     string           `json:"-"`
	Period         period.Period    `json:"-"`
	Day            int              `json:"-"`
	Classification Classification   `json:"classification"`
	OvertimeHours  *decimal.Decimal `json:"overtime_hours,omitempty"`
	LostHours      *decimal.Decimal `json:"lost_hours,omitempty"`
}

func (r *RecordDayRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if err := r.Period.Validate(); err != nil {
		errs = append(errs, validator.ValidationError{Field: "period", Message: err.Error()})
	} else if r.Day < 1 || r.Day > r.Period.DaysInMonth() {
		errs = append(errs, validator.ValidationError{Field: "day", Message: fmt.Sprintf("must be between 1 and %d", r.Period.DaysInMonth())})
	}
	if !r.Classification.IsValid() {
		errs = append(errs, validator.ValidationError{Field: "classification", Message: "must be one of rest, worked, justified_absence, unjustified_absence, vacation, admission_termination"})
	}
	if r.OvertimeHours != nil && r.OvertimeHours.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "overtime_hours", Message: "must be non-negative"})
	}
	if r.LostHours != nil && r.LostHours.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "lost_hours", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type GridDay struct {
	Day            int              `json:"day"`
	Classification Classification   `json:"classification"`
	OvertimeHours  *decimal.Decimal `json:"overtime_hours,omitempty"`
	LostHours      *decimal.Decimal `json:"lost_hours,omitempty"`
}

// RecordGridRequest upserts several days at once. Fill, when set, applies one
// classification to every day of the month before Days are applied.
type RecordGridRequest struct {
	EmployeeID string         `json:"-"`
	Period     period.Period  `json:"-"`
	Fill       Classification `json:"fill,omitempty"`
	Days       []GridDay      `json:"days"`
}

func (r *RecordGridRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if err := r.Period.Validate(); err != nil {
		errs = append(errs, validator.ValidationError{Field: "period", Message: err.Error()})
		return errs
	}
	if r.Fill != "" && !r.Fill.IsValid() {
		errs = append(errs, validator.ValidationError{Field: "fill", Message: "invalid classification"})
	}
	if r.Fill == "" && len(r.Days) == 0 {
		errs = append(errs, validator.ValidationError{Field: "days", Message: "at least one day or a fill classification is required"})
	}

	seen := make(map[int]bool, len(r.Days))
	for i, d := range r.Days {
		field := fmt.Sprintf("days[%d]", i)
		if d.Day < 1 || d.Day > r.Period.DaysInMonth() {
			errs = append(errs, validator.ValidationError{Field: field + ".day", Message: "out of range"})
		} else if seen[d.Day] {
			errs = append(errs, validator.ValidationError{Field: field + ".day", Message: "duplicated"})
		}
		seen[d.Day] = true
		if !d.Classification.IsValid() {
			errs = append(errs, validator.ValidationError{Field: field + ".classification", Message: "invalid classification"})
		}
		if d.OvertimeHours != nil && d.OvertimeHours.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: field + ".overtime_hours", Message: "must be non-negative"})
		}
		if d.LostHours != nil && d.LostHours.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: field + ".lost_hours", Message: "must be non-negative"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SetManualSubsidiesRequest struct {
	EmployeeID string          `json:"-"`
	Period     period.Period   `json:"-"`
	Transport  decimal.Decimal `json:"transport"`
	Food       decimal.Decimal `json:"food"`
}

func (r *SetManualSubsidiesRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if err := r.Period.Validate(); err != nil {
		errs = append(errs, validator.ValidationError{Field: "period", Message: err.Error()})
	}
	if r.Transport.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "transport", Message: "must be non-negative"})
	}
	if r.Food.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "food", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EntryResponse struct {
	Day            int             `json:"day"`
	Classification Classification  `json:"classification"`
	OvertimeHours  decimal.Decimal `json:"overtime_hours"`
	LostHours      decimal.Decimal `json:"lost_hours"`
	UpdatedAt      string          `json:"updated_at"`
}

type SubsidiesResponse struct {
	Transport decimal.Decimal `json:"transport"`
	Food      decimal.Decimal `json:"food"`
}

type GridResponse struct {
	EmployeeID       string             `json:"employee_id"`
	Period           string             `json:"period"`
	DaysInMonth      int                `json:"days_in_month"`
	Entries          []EntryResponse    `json:"entries"`
	ManualSubsidies  *SubsidiesResponse `json:"manual_subsidies,omitempty"`
	UnjustifiedDays  int                `json:"unjustified_days"`
	JustifiedDays    int                `json:"justified_days"`
	WorkedDays       int                `json:"worked_days"`
	VacationDays     int                `json:"vacation_days"`
	OvertimeHours    decimal.Decimal    `json:"overtime_hours"`
	LostHours        decimal.Decimal    `json:"lost_hours"`
	EffectivenessSet bool               `json:"effectiveness_processed"`
}
