package balance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeaveBalance is the per (employee, leave type, year) ledger row. Day
// amounts are numeric(5,1) so half days stay exact.
type LeaveBalance struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_leave_balances_key"`
	LeaveTypeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_leave_balances_key"`
	Year        int       `gorm:"type:int;not null;uniqueIndex:uq_leave_balances_key"`

	CarryoverDays decimal.Decimal `gorm:"type:numeric(5,1);not null;default:0"`
	UsedDays      decimal.Decimal `gorm:"type:numeric(5,1);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SummaryRow is the denormalized read model produced by the repository: ids
// plus the numbers needed to answer "how much is left", no object graphs.
type SummaryRow struct {
	BalanceID     *string
	LeaveTypeID   string
	LeaveTypeName string
	MaxDays       int
	CarryoverDays decimal.Decimal
	UsedDays      decimal.Decimal
	Provisioned   bool
}
