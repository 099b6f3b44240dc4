package events

import "time"

const LeaveRequestDecidedTopic = "hr.leave.request.decided.v1"

// LeaveRequestDecidedEvent is written to the outbox when a request reaches
// APPROVED or REJECTED. Notification delivery consumes it downstream.
type LeaveRequestDecidedEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id"`
	EmployeeID  string    `json:"employee_id"`
	LeaveTypeID string    `json:"leave_type_id"`
	Status      string    `json:"status"`
	Days        string    `json:"days"`
	ReviewedBy  string    `json:"reviewed_by"`
	OccurredAt  time.Time `json:"occurred_at"`
}
