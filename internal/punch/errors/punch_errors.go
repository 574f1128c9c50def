package puncherrors

import (
	"net/http"

	"github.com/Vishal6374/hr-harmony-sub000/internal/shared/apperror"
)

var (
	ErrInvalidTimestamp = apperror.New(
		apperror.CodeInvalidInput,
		"invalid punched_at, expected RFC3339",
		http.StatusBadRequest,
	)
	ErrEmptyBatch = apperror.New(
		apperror.CodeInvalidInput,
		"punch batch is empty",
		http.StatusBadRequest,
	)
)
