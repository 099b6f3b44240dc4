package leaverequesterrors

import (
	"fmt"
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveTypeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave type id",
		http.StatusBadRequest,
	)
	ErrInvalidRequestID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave request id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrStartDateTooOld = apperror.New(
		apperror.CodeInvalidInput,
		"start_date is further in the past than the allowed grace period",
		http.StatusBadRequest,
	)
	ErrHalfDaySpan = apperror.New(
		apperror.CodeInvalidInput,
		"a half-day request must start and end on the same date",
		http.StatusBadRequest,
	)
	ErrLeaveOverlap = apperror.New(
		apperror.CodeConflict,
		"a pending or approved leave request already covers part of this period",
		http.StatusConflict,
	)
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrReviewerRequired = apperror.New(
		apperror.CodeForbidden,
		"only a manager, HR or admin may approve or reject a leave request",
		http.StatusForbidden,
	)
	ErrNotRequestOwner = apperror.New(
		apperror.CodeForbidden,
		"only the request owner, HR or admin may cancel a leave request",
		http.StatusForbidden,
	)
	ErrNotRequestViewer = apperror.New(
		apperror.CodeForbidden,
		"employees may only view their own leave requests",
		http.StatusForbidden,
	)
)

// InvalidTransition names both statuses so the caller can see which move
// was refused.
func InvalidTransition(current, requested string) error {
	return apperror.New(
		apperror.CodeInvalidState,
		fmt.Sprintf("cannot transition leave request from %s to %s", current, requested),
		http.StatusConflict,
	)
}
