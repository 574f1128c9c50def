package regularizationerrors

import (
	"net/http"

	"github.com/Vishal6374/hr-harmony-sub000/internal/shared/apperror"
)

var (
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidTimestamp = apperror.New(
		apperror.CodeInvalidInput,
		"invalid timestamp, expected RFC3339",
		http.StatusBadRequest,
	)
	ErrMissingProposedValue = apperror.New(
		apperror.CodeInvalidInput,
		"proposed values do not match the request type",
		http.StatusBadRequest,
	)
	ErrNoteRequired = apperror.New(
		apperror.CodeInvalidInput,
		"a review note is required when rejecting",
		http.StatusBadRequest,
	)
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"regularization request not found",
		http.StatusNotFound,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
	ErrDuplicatePending = apperror.New(
		apperror.CodeConflict,
		"a pending regularization already exists for this date",
		http.StatusConflict,
	)
	ErrAlreadyResolved = apperror.New(
		apperror.CodeInvalidState,
		"regularization request is already resolved",
		http.StatusConflict,
	)
	ErrForbidden = apperror.New(
		apperror.CodeForbidden,
		"not allowed to act on this regularization request",
		http.StatusForbidden,
	)
	ErrSelfReview = apperror.New(
		apperror.CodeForbidden,
		"reviewing your own regularization request is not allowed",
		http.StatusForbidden,
	)
)
