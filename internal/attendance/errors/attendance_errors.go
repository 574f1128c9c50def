package attendanceerrors

import (
	"net/http"

	"github.com/Vishal6374/hr-harmony-sub000/internal/shared/apperror"
)

var (
	ErrRecordLocked = apperror.New(
		apperror.CodeLocked,
		"attendance record is locked by a paid payroll batch",
		http.StatusConflict,
	)
	ErrRecordNotFound = apperror.New(
		apperror.CodeNotFound,
		"attendance record not found",
		http.StatusNotFound,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
	ErrForbidden = apperror.New(
		apperror.CodeForbidden,
		"not allowed to write this attendance record",
		http.StatusForbidden,
	)
	ErrSelfClockInDisabled = apperror.New(
		apperror.CodeForbidden,
		"self clock-in is disabled for this company",
		http.StatusForbidden,
	)
	ErrHRSelfAttendance = apperror.New(
		apperror.CodeForbidden,
		"HR may not write their own attendance",
		http.StatusForbidden,
	)
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidTimestamp = apperror.New(
		apperror.CodeInvalidInput,
		"invalid timestamp, expected RFC3339",
		http.StatusBadRequest,
	)
	ErrCheckOutWithoutCheckIn = apperror.New(
		apperror.CodeInvalidInput,
		"check_out requires a check_in",
		http.StatusBadRequest,
	)
)
