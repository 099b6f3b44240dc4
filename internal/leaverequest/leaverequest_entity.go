package leaverequest

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
)

// LeaveRequest is the workflow aggregate. Days is frozen at submission so a
// later leave type change never alters an existing reservation.
type LeaveRequest struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID  uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_employee_dates"`
	LeaveTypeID uuid.UUID `gorm:"type:uuid;not null"`

	StartDate time.Time       `gorm:"type:date;not null;index:idx_leave_requests_employee_dates"`
	EndDate   time.Time       `gorm:"type:date;not null;index:idx_leave_requests_employee_dates"`
	Days      decimal.Decimal `gorm:"type:numeric(5,1);not null"`
	IsHalfDay bool            `gorm:"not null;default:false"`
	Reason    string          `gorm:"type:text"`

	Status         string     `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_leave_requests_status"`
	ReviewComments *string    `gorm:"type:text"`
	ReviewedBy     *uuid.UUID `gorm:"type:uuid"`
	ReviewedAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// isAllowedStatusTransition encodes the status machine: a pending request
// can be decided or withdrawn, an approved one can still be withdrawn, and
// terminal states never move again.
func isAllowedStatusTransition(currentStatus, targetStatus string) bool {
	switch currentStatus {
	case StatusPending:
		return targetStatus == StatusApproved ||
			targetStatus == StatusRejected ||
			targetStatus == StatusCancelled
	case StatusApproved:
		return targetStatus == StatusCancelled
	default:
		return false
	}
}
