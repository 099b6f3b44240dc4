package balanceerrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidBalanceID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid balance id",
		http.StatusBadRequest,
	)
	ErrNegativeAdjustment = apperror.New(
		apperror.CodeInvalidInput,
		"carryover_days and used_days must be zero or greater",
		http.StatusBadRequest,
	)
	ErrBalanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave balance not found",
		http.StatusNotFound,
	)
	ErrBalanceNotProvisioned = apperror.New(
		apperror.CodeNotFound,
		"leave balance has not been provisioned for this employee, leave type and year",
		http.StatusNotFound,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInsufficientBalance,
		"requested days exceed the remaining leave balance",
		http.StatusConflict,
	)
	ErrNotBalanceViewer = apperror.New(
		apperror.CodeForbidden,
		"you may only view your own leave balances",
		http.StatusForbidden,
	)
)
