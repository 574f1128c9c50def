package workruleserrors

import (
	"net/http"

	"github.com/Vishal6374/hr-harmony-sub000/internal/shared/apperror"
)

var (
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrThresholdAboveStandard = apperror.New(
		apperror.CodeInvalidInput,
		"half_day_threshold must be lower than standard_work_hours",
		http.StatusBadRequest,
	)
	ErrInvalidClockTime = apperror.New(
		apperror.CodeInvalidInput,
		"invalid clock time, expected HH:MM",
		http.StatusBadRequest,
	)
	ErrInvalidTimezone = apperror.New(
		apperror.CodeInvalidInput,
		"invalid timezone, expected an IANA name such as Asia/Jakarta",
		http.StatusBadRequest,
	)
	ErrNotInitialized = apperror.New(
		apperror.CodeInvalidState,
		"work rules service has not been initialized",
		http.StatusInternalServerError,
	)
)
