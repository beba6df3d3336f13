package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
)

type PayrollHandler interface {
	Preview(w http.ResponseWriter, r *http.Request)
	Compute(w http.ResponseWriter, r *http.Request)
	StoreSlip(w http.ResponseWriter, r *http.Request)
	GetSlip(w http.ResponseWriter, r *http.Request)
	ClearSlip(w http.ResponseWriter, r *http.Request)

	// Period views
	ListSlips(w http.ResponseWriter, r *http.Request)
	GetSummary(w http.ResponseWriter, r *http.Request)
	ExportCSV(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// decodeCompute reads the optional overrides body; an empty body means none.
// It writes the error response itself and reports whether to continue.
func decodeCompute(w http.ResponseWriter, r *http.Request) (payroll.ComputeRequest, bool) {
	var req payroll.ComputeRequest
	employeeID, p, err := employeePeriod(r)
	if err != nil {
		response.HandleError(w, err)
		return req, false
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request body", nil)
		return req, false
	}
	req.EmployeeID = employeeID
	req.Period = p
	return req, true
}

func (h *payrollHandlerImpl) Preview(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCompute(w, r)
	if !ok {
		return
	}

	result, err := h.payrollService.Preview(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) Compute(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCompute(w, r)
	if !ok {
		return
	}

	result, err := h.payrollService.ComputeAndStore(r.Context(), req, boolQuery(r, "replace"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Salary slip stored", result)
}

func (h *payrollHandlerImpl) StoreSlip(w http.ResponseWriter, r *http.Request) {
	var req payroll.StoreSlipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	stored, err := h.payrollService.Store(r.Context(), req.ToSlip(), boolQuery(r, "replace"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Salary slip stored", payroll.ToSlipResponse(stored))
}

func (h *payrollHandlerImpl) GetSlip(w http.ResponseWriter, r *http.Request) {
	employeeID, p, err := employeePeriod(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.Find(r.Context(), employeeID, p)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ClearSlip(w http.ResponseWriter, r *http.Request) {
	employeeID, p, err := employeePeriod(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if err := h.payrollService.Clear(r.Context(), employeeID, p, boolQuery(r, "force")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary slip cleared", nil)
}

func (h *payrollHandlerImpl) ListSlips(w http.ResponseWriter, r *http.Request) {
	p, err := periodQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.ListByPeriod(r.Context(), p)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) GetSummary(w http.ResponseWriter, r *http.Request) {
	p, err := periodQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.Summary(r.Context(), p)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ExportCSV(w http.ResponseWriter, r *http.Request) {
	p, err := periodQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	// buffered so a failure can still be reported as JSON
	var buf bytes.Buffer
	if err := h.payrollService.ExportCSV(r.Context(), p, &buf); err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"salary-slips-%s.csv\"", p.String()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
