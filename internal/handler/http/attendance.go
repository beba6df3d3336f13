package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/effectiveness"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	RecordDay(w http.ResponseWriter, r *http.Request)
	RecordGrid(w http.ResponseWriter, r *http.Request)
	SetManualSubsidies(w http.ResponseWriter, r *http.Request)
	GetGrid(w http.ResponseWriter, r *http.Request)

	// Effectiveness
	Finalize(w http.ResponseWriter, r *http.Request)
	Unfinalize(w http.ResponseWriter, r *http.Request)
	ListEffectiveness(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	gate              effectiveness.Gate
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, gate effectiveness.Gate) AttendanceHandler {
	return &attendanceHandlerImpl{attendanceService: attendanceService, gate: gate}
}

func (h *attendanceHandlerImpl) RecordDay(w http.ResponseWriter, r *http.Request) {
	employeeID, p, err := employeePeriod(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil {
		response.BadRequest(w, "Day must be a number", nil)
		return
	}

	var req attendance.RecordDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = employeeID
	req.Period = p
	req.Day = day

	result, err := h.attendanceService.RecordDay(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *attendanceHandlerImpl) RecordGrid(w http.ResponseWriter, r *http.Request) {
	employeeID, p, err := employeePeriod(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req attendance.RecordGridRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = employeeID
	req.Period = p

	result, err := h.attendanceService.RecordGrid(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *attendanceHandlerImpl) SetManualSubsidies(w http.ResponseWriter, r *http.Request) {
	employeeID, p, err := employeePeriod(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req attendance.SetManualSubsidiesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = employeeID
	req.Period = p

	result, err := h.attendanceService.SetManualSubsidies(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *attendanceHandlerImpl) GetGrid(w http.ResponseWriter, r *http.Request) {
	employeeID, p, err := employeePeriod(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.GetGrid(r.Context(), employeeID, p)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *attendanceHandlerImpl) Finalize(w http.ResponseWriter, r *http.Request) {
	employeeID, p, err := employeePeriod(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	record, err := h.attendanceService.Finalize(r.Context(), employeeID, p)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Effectiveness processed", effectiveness.ToResponse(record))
}

func (h *attendanceHandlerImpl) Unfinalize(w http.ResponseWriter, r *http.Request) {
	employeeID, p, err := employeePeriod(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if err := h.attendanceService.Unfinalize(r.Context(), employeeID, p); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Effectiveness reopened", nil)
}

func (h *attendanceHandlerImpl) ListEffectiveness(w http.ResponseWriter, r *http.Request) {
	p, err := periodQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	records, err := h.gate.ListOpen(r.Context(), p)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := make([]effectiveness.RecordResponse, 0, len(records))
	for _, rec := range records {
		result = append(result, effectiveness.ToResponse(rec))
	}
	response.Success(w, result)
}
