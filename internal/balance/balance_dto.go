package balance

import "github.com/shopspring/decimal"

type AdjustBalanceRequest struct {
	Year          *int             `json:"year" binding:"required"`
	CarryoverDays *decimal.Decimal `json:"carryover_days" binding:"required"`
	UsedDays      *decimal.Decimal `json:"used_days" binding:"required"`
}

type BalanceResponse struct {
	ID            string          `json:"id"`
	EmployeeID    string          `json:"employee_id"`
	LeaveTypeID   string          `json:"leave_type_id"`
	Year          int             `json:"year"`
	CarryoverDays decimal.Decimal `json:"carryover_days"`
	UsedDays      decimal.Decimal `json:"used_days"`
}

// BalanceSummaryResponse reports one leave type for one employee/year.
// An unprovisioned type reports all-zero totals.
type BalanceSummaryResponse struct {
	BalanceID     *string         `json:"balance_id,omitempty"`
	LeaveTypeID   string          `json:"leave_type_id"`
	LeaveTypeName string          `json:"leave_type_name"`
	Year          int             `json:"year"`
	Total         decimal.Decimal `json:"total"`
	Used          decimal.Decimal `json:"used"`
	Remaining     decimal.Decimal `json:"remaining"`
}
