package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/period"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/tax"
	"github.com/shopspring/decimal"
)

// SlipStatus enum
type SlipStatus string

const (
	SlipStatusDraft   SlipStatus = "draft"
	SlipStatusInBatch SlipStatus = "in_batch"
	SlipStatusPaid    SlipStatus = "paid"
)

// SalarySlip - computed payroll result, one per employee per period
type SalarySlip struct {
	ID           string
	EmployeeID   string
	EmployeeName string
	EmployeeRole string
	Period       period.Period

	BaseSalary       decimal.Decimal
	Complement       decimal.Decimal
	Bonus            decimal.Decimal
	UnjustifiedDays  int
	AbsenceDeduction decimal.Decimal
	TaxableBase      decimal.Decimal

	Food      decimal.Decimal
	Transport decimal.Decimal
	Family    decimal.Decimal
	Housing   decimal.Decimal
	Vacation  decimal.Decimal
	Christmas decimal.Decimal

	Advances   decimal.Decimal
	GrossTotal decimal.Decimal
	INSS       decimal.Decimal
	IRT        decimal.Decimal
	NetTotal   decimal.Decimal

	TaxScheduleVersion string
	Warnings           []ClampWarning

	// PaymentID is set when a batch claims the slip, PaidAt once the batch posted.
	PaymentID *string
	PaidAt    *time.Time

	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s SalarySlip) Subsidies() decimal.Decimal {
	return s.Food.Add(s.Transport).Add(s.Family).Add(s.Housing).Add(s.Vacation).Add(s.Christmas)
}

func (s SalarySlip) TaxComponents() tax.Components {
	return tax.Components{
		tax.ComponentFood:      s.Food,
		tax.ComponentTransport: s.Transport,
		tax.ComponentFamily:    s.Family,
		tax.ComponentHousing:   s.Housing,
		tax.ComponentVacation:  s.Vacation,
		tax.ComponentChristmas: s.Christmas,
	}
}

func (s SalarySlip) IsProcessed() bool {
	return s.PaidAt != nil
}

func (s SalarySlip) Status() SlipStatus {
	switch {
	case s.PaidAt != nil:
		return SlipStatusPaid
	case s.PaymentID != nil:
		return SlipStatusInBatch
	default:
		return SlipStatusDraft
	}
}

// Overrides - per-computation values that win over manual subsidies and
// employee defaults. Nil means "fall back".
type Overrides struct {
	Complement *decimal.Decimal `json:"complement,omitempty"`
	Bonus      *decimal.Decimal `json:"bonus,omitempty"`
	Advances   *decimal.Decimal `json:"advances,omitempty"`
	Food       *decimal.Decimal `json:"food,omitempty"`
	Transport  *decimal.Decimal `json:"transport,omitempty"`
	Family     *decimal.Decimal `json:"family,omitempty"`
	Housing    *decimal.Decimal `json:"housing,omitempty"`
	Vacation   *decimal.Decimal `json:"vacation,omitempty"`
	Christmas  *decimal.Decimal `json:"christmas,omitempty"`
}

// Summary - period totals
type Summary struct {
	Period          period.Period
	SlipCount       int
	DraftCount      int
	InBatchCount    int
	PaidCount       int
	TotalBaseSalary decimal.Decimal
	TotalComplement decimal.Decimal
	TotalBonus      decimal.Decimal
	TotalSubsidies  decimal.Decimal
	TotalAbsence    decimal.Decimal
	TotalGross      decimal.Decimal
	TotalINSS       decimal.Decimal
	TotalIRT        decimal.Decimal
	TotalAdvances   decimal.Decimal
	TotalNet        decimal.Decimal
	TotalNetUnpaid  decimal.Decimal
}

func Summarize(p period.Period, slips []SalarySlip) Summary {
	s := Summary{
		Period:          p,
		TotalBaseSalary: decimal.Zero,
		TotalComplement: decimal.Zero,
		TotalBonus:      decimal.Zero,
		TotalSubsidies:  decimal.Zero,
		TotalAbsence:    decimal.Zero,
		TotalGross:      decimal.Zero,
		TotalINSS:       decimal.Zero,
		TotalIRT:        decimal.Zero,
		TotalAdvances:   decimal.Zero,
		TotalNet:        decimal.Zero,
		TotalNetUnpaid:  decimal.Zero,
	}
	for _, slip := range slips {
		s.SlipCount++
		switch slip.Status() {
		case SlipStatusPaid:
			s.PaidCount++
		case SlipStatusInBatch:
			s.InBatchCount++
			s.TotalNetUnpaid = s.TotalNetUnpaid.Add(slip.NetTotal)
		default:
			s.DraftCount++
			s.TotalNetUnpaid = s.TotalNetUnpaid.Add(slip.NetTotal)
		}
		s.TotalBaseSalary = s.TotalBaseSalary.Add(slip.BaseSalary)
		s.TotalComplement = s.TotalComplement.Add(slip.Complement)
		s.TotalBonus = s.TotalBonus.Add(slip.Bonus)
		s.TotalSubsidies = s.TotalSubsidies.Add(slip.Subsidies())
		s.TotalAbsence = s.TotalAbsence.Add(slip.AbsenceDeduction)
		s.TotalGross = s.TotalGross.Add(slip.GrossTotal)
		s.TotalINSS = s.TotalINSS.Add(slip.INSS)
		s.TotalIRT = s.TotalIRT.Add(slip.IRT)
		s.TotalAdvances = s.TotalAdvances.Add(slip.Advances)
		s.TotalNet = s.TotalNet.Add(slip.NetTotal)
	}
	return s
}
