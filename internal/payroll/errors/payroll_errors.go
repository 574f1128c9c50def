package payrollerrors

import (
	"net/http"

	"github.com/Vishal6374/hr-harmony-sub000/internal/shared/apperror"
)

var (
	ErrBatchExists = apperror.New(
		apperror.CodeConflict,
		"a non-cancelled payroll batch already exists for this month",
		http.StatusConflict,
	)
	ErrBatchNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll batch not found",
		http.StatusNotFound,
	)
	ErrSlipNotFound = apperror.New(
		apperror.CodeNotFound,
		"salary slip not found",
		http.StatusNotFound,
	)
	ErrNoEmployees = apperror.New(
		apperror.CodeInvalidInput,
		"no matching active employees for this run",
		http.StatusBadRequest,
	)
	ErrBatchPaid = apperror.New(
		apperror.CodeInvalidState,
		"payroll batch is already paid",
		http.StatusConflict,
	)
	ErrBatchNotProcessed = apperror.New(
		apperror.CodeInvalidState,
		"payroll batch must be processed before it can be paid",
		http.StatusConflict,
	)
	ErrSlipPaid = apperror.New(
		apperror.CodeInvalidState,
		"a paid salary slip cannot be edited",
		http.StatusConflict,
	)
	ErrForbidden = apperror.New(
		apperror.CodeForbidden,
		"not allowed to act on payroll",
		http.StatusForbidden,
	)
)
