package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/period"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== REQUEST DTOs ==========

// ComputeRequest - body of preview/compute; every override is optional
type ComputeRequest struct {
	EmployeeID string        `json:"employee_id"`
	Period     period.Period `json:"period"`
	Overrides  Overrides     `json:"overrides"`
}

func (r *ComputeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if err := r.Period.Validate(); err != nil {
		errs = append(errs, validator.ValidationError{Field: "period", Message: err.Error()})
	}
	for field, v := range map[string]*decimal.Decimal{
		"overrides.complement": r.Overrides.Complement,
		"overrides.bonus":      r.Overrides.Bonus,
		"overrides.advances":   r.Overrides.Advances,
		"overrides.food":       r.Overrides.Food,
		"overrides.transport":  r.Overrides.Transport,
		"overrides.family":     r.Overrides.Family,
		"overrides.housing":    r.Overrides.Housing,
		"overrides.vacation":   r.Overrides.Vacation,
		"overrides.christmas":  r.Overrides.Christmas,
	} {
		if v != nil && v.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: field, Message: "must be non-negative"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// StoreSlipRequest - a previewed slip sent back after review. Payment
// fields are not accepted; only a batch claims a slip.
type StoreSlipRequest struct {
	ID                 string          `json:"id"`
	EmployeeID         string          `json:"employee_id"`
	EmployeeName       string          `json:"employee_name"`
	EmployeeRole       string          `json:"employee_role"`
	Month              int             `json:"month"`
	Year               int             `json:"year"`
	BaseSalary         decimal.Decimal `json:"base_salary"`
	Allowances         decimal.Decimal `json:"allowances"`
	Bonuses            decimal.Decimal `json:"bonuses"`
	Absences           int             `json:"absences"`
	AbsenceDeduction   decimal.Decimal `json:"absence_deduction"`
	TaxableBase        decimal.Decimal `json:"taxable_base"`
	SubsidyFood        decimal.Decimal `json:"subsidy_food"`
	SubsidyTransport   decimal.Decimal `json:"subsidy_transport"`
	SubsidyFamily      decimal.Decimal `json:"subsidy_family"`
	SubsidyHousing     decimal.Decimal `json:"subsidy_housing"`
	SubsidyVacation    decimal.Decimal `json:"subsidy_vacation"`
	SubsidyChristmas   decimal.Decimal `json:"subsidy_christmas"`
	Advances           decimal.Decimal `json:"advances"`
	GrossTotal         decimal.Decimal `json:"gross_total"`
	INSS               decimal.Decimal `json:"inss"`
	IRT                decimal.Decimal `json:"irt"`
	NetTotal           decimal.Decimal `json:"net_total"`
	TaxScheduleVersion string          `json:"tax_schedule_version"`
	Warnings           []ClampWarning  `json:"warnings,omitempty"`
}

func (r StoreSlipRequest) ToSlip() SalarySlip {
	return SalarySlip{
		ID:                 r.ID,
		EmployeeID:         r.EmployeeID,
		EmployeeName:       r.EmployeeName,
		EmployeeRole:       r.EmployeeRole,
		Period:             period.Period{Year: r.Year, Month: r.Month},
		BaseSalary:         r.BaseSalary,
		Complement:         r.Allowances,
		Bonus:              r.Bonuses,
		UnjustifiedDays:    r.Absences,
		AbsenceDeduction:   r.AbsenceDeduction,
		TaxableBase:        r.TaxableBase,
		Food:               r.SubsidyFood,
		Transport:          r.SubsidyTransport,
		Family:             r.SubsidyFamily,
		Housing:            r.SubsidyHousing,
		Vacation:           r.SubsidyVacation,
		Christmas:          r.SubsidyChristmas,
		Advances:           r.Advances,
		GrossTotal:         r.GrossTotal,
		INSS:               r.INSS,
		IRT:                r.IRT,
		NetTotal:           r.NetTotal,
		TaxScheduleVersion: r.TaxScheduleVersion,
		Warnings:           r.Warnings,
	}
}

// ========== RESPONSE DTOs ==========

type SlipResponse struct {
	ID                 string          `json:"id"`
	EmployeeID         string          `json:"employee_id"`
	EmployeeName       string          `json:"employee_name"`
	EmployeeRole       string          `json:"employee_role"`
	Period             string          `json:"period"`
	Month              int             `json:"month"`
	Year               int             `json:"year"`
	BaseSalary         decimal.Decimal `json:"base_salary"`
	Allowances         decimal.Decimal `json:"allowances"`
	Bonuses            decimal.Decimal `json:"bonuses"`
	Absences           int             `json:"absences"`
	AbsenceDeduction   decimal.Decimal `json:"absence_deduction"`
	TaxableBase        decimal.Decimal `json:"taxable_base"`
	Subsidies          decimal.Decimal `json:"subsidies"`
	SubsidyFood        decimal.Decimal `json:"subsidy_food"`
	SubsidyTransport   decimal.Decimal `json:"subsidy_transport"`
	SubsidyFamily      decimal.Decimal `json:"subsidy_family"`
	SubsidyHousing     decimal.Decimal `json:"subsidy_housing"`
	SubsidyVacation    decimal.Decimal `json:"subsidy_vacation"`
	SubsidyChristmas   decimal.Decimal `json:"subsidy_christmas"`
	Advances           decimal.Decimal `json:"advances"`
	GrossTotal         decimal.Decimal `json:"gross_total"`
	INSS               decimal.Decimal `json:"inss"`
	IRT                decimal.Decimal `json:"irt"`
	NetTotal           decimal.Decimal `json:"net_total"`
	IsProcessed        bool            `json:"is_processed"`
	Status             SlipStatus      `json:"status"`
	PaymentID          *string         `json:"payment_id,omitempty"`
	PaidAt             *string         `json:"paid_at,omitempty"`
	TaxScheduleVersion string          `json:"tax_schedule_version"`
	Warnings           []ClampWarning  `json:"warnings,omitempty"`
}

func ToSlipResponse(s SalarySlip) SlipResponse {
	resp := SlipResponse{
		ID:                 s.ID,
		EmployeeID:         s.EmployeeID,
		EmployeeName:       s.EmployeeName,
		EmployeeRole:       s.EmployeeRole,
		Period:             s.Period.String(),
		Month:              s.Period.Month,
		Year:               s.Period.Year,
		BaseSalary:         s.BaseSalary,
		Allowances:         s.Complement,
		Bonuses:            s.Bonus,
		Absences:           s.UnjustifiedDays,
		AbsenceDeduction:   s.AbsenceDeduction,
		TaxableBase:        s.TaxableBase,
		Subsidies:          s.Subsidies(),
		SubsidyFood:        s.Food,
		SubsidyTransport:   s.Transport,
		SubsidyFamily:      s.Family,
		SubsidyHousing:     s.Housing,
		SubsidyVacation:    s.Vacation,
		SubsidyChristmas:   s.Christmas,
		Advances:           s.Advances,
		GrossTotal:         s.GrossTotal,
		INSS:               s.INSS,
		IRT:                s.IRT,
		NetTotal:           s.NetTotal,
		IsProcessed:        s.IsProcessed(),
		Status:             s.Status(),
		PaymentID:          s.PaymentID,
		TaxScheduleVersion: s.TaxScheduleVersion,
		Warnings:           s.Warnings,
	}
	if s.PaidAt != nil {
		paidAt := s.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &paidAt
	}
	return resp
}

// ExportRow is the persisted slip shape used for CSV export.
type ExportRow struct {
	EmployeeID       string `csv:"employeeId"`
	EmployeeName     string `csv:"employeeName"`
	EmployeeRole     string `csv:"employeeRole"`
	BaseSalary       string `csv:"baseSalary"`
	Allowances       string `csv:"allowances"`
	Bonuses          string `csv:"bonuses"`
	Subsidies        string `csv:"subsidies"`
	SubsidyFood      string `csv:"subsidyFood"`
	SubsidyTransport string `csv:"subsidyTransport"`
	SubsidyFamily    string `csv:"subsidyFamily"`
	SubsidyHousing   string `csv:"subsidyHousing"`
	Absences         int    `csv:"absences"`
	Advances         string `csv:"advances"`
	GrossTotal       string `csv:"grossTotal"`
	INSS             string `csv:"inss"`
	IRT              string `csv:"irt"`
	NetTotal         string `csv:"netTotal"`
	Month            int    `csv:"month"`
	Year             int    `csv:"year"`
	IsProcessed      bool   `csv:"isProcessed"`
}

func ToExportRow(s SalarySlip) ExportRow {
	return ExportRow{
		EmployeeID:       s.EmployeeID,
		EmployeeName:     s.EmployeeName,
		EmployeeRole:     s.EmployeeRole,
		BaseSalary:       s.BaseSalary.StringFixed(2),
		Allowances:       s.Complement.StringFixed(2),
		Bonuses:          s.Bonus.StringFixed(2),
		Subsidies:        s.Subsidies().StringFixed(2),
		SubsidyFood:      s.Food.StringFixed(2),
		SubsidyTransport: s.Transport.StringFixed(2),
		SubsidyFamily:    s.Family.StringFixed(2),
		SubsidyHousing:   s.Housing.StringFixed(2),
		Absences:         s.UnjustifiedDays,
		Advances:         s.Advances.StringFixed(2),
		GrossTotal:       s.GrossTotal.StringFixed(2),
		INSS:             s.INSS.StringFixed(2),
		IRT:              s.IRT.StringFixed(2),
		NetTotal:         s.NetTotal.StringFixed(2),
		Month:            s.Period.Month,
		Year:             s.Period.Year,
		IsProcessed:      s.IsProcessed(),
	}
}

type SummaryResponse struct {
	Period          string          `json:"period"`
	SlipCount       int             `json:"slip_count"`
	DraftCount      int             `json:"draft_count"`
	InBatchCount    int             `json:"in_batch_count"`
	PaidCount       int             `json:"paid_count"`
	TotalBaseSalary decimal.Decimal `json:"total_base_salary"`
	TotalAllowances decimal.Decimal `json:"total_allowances"`
	TotalBonuses    decimal.Decimal `json:"total_bonuses"`
	TotalSubsidies  decimal.Decimal `json:"total_subsidies"`
	TotalAbsence    decimal.Decimal `json:"total_absence_deduction"`
	TotalGross      decimal.Decimal `json:"total_gross"`
	TotalINSS       decimal.Decimal `json:"total_inss"`
	TotalIRT        decimal.Decimal `json:"total_irt"`
	TotalAdvances   decimal.Decimal `json:"total_advances"`
	TotalNet        decimal.Decimal `json:"total_net"`
	TotalNetUnpaid  decimal.Decimal `json:"total_net_unpaid"`
}

func ToSummaryResponse(s Summary) SummaryResponse {
	return SummaryResponse{
		Period:          s.Period.String(),
		SlipCount:       s.SlipCount,
		DraftCount:      s.DraftCount,
		InBatchCount:    s.InBatchCount,
		PaidCount:       s.PaidCount,
		TotalBaseSalary: s.TotalBaseSalary,
		TotalAllowances: s.TotalComplement,
		TotalBonuses:    s.TotalBonus,
		TotalSubsidies:  s.TotalSubsidies,
		TotalAbsence:    s.TotalAbsence,
		TotalGross:      s.TotalGross,
		TotalINSS:       s.TotalINSS,
		TotalIRT:        s.TotalIRT,
		TotalAdvances:   s.TotalAdvances,
		TotalNet:        s.TotalNet,
		TotalNetUnpaid:  s.TotalNetUnpaid,
	}
}
