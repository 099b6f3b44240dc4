package leaverequest

type SubmitLeaveRequest struct {
	LeaveTypeID string `json:"leave_type_id" binding:"required,uuid"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"required"`
	IsHalfDay   bool   `json:"is_half_day"`
	Reason      string `json:"reason"`
}

type UpdateStatusRequest struct {
	Status         string  `json:"status" binding:"required,oneof=APPROVED REJECTED CANCELLED"`
	ReviewComments *string `json:"review_comments"`
}

type ListFilter struct {
	EmployeeID string
	Year       int
}

type LeaveRequestResponse struct {
	ID             string  `json:"id"`
	EmployeeID     string  `json:"employee_id"`
	LeaveTypeID    string  `json:"leave_type_id"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	Days           string  `json:"days"`
	IsHalfDay      bool    `json:"is_half_day"`
	Reason         string  `json:"reason"`
	Status         string  `json:"status"`
	ReviewComments *string `json:"review_comments,omitempty"`
	ReviewedBy     *string `json:"reviewed_by,omitempty"`
	ReviewedAt     *string `json:"reviewed_at,omitempty"`
}
