package leavetype

type CreateLeaveTypeRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	MaxDays *int   `json:"max_days" binding:"required"`
}

type UpdateLeaveTypeRequest struct {
	Name    *string `json:"name" binding:"omitempty,max=100"`
	MaxDays *int    `json:"max_days"`
}

type LeaveTypeResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	MaxDays int    `json:"max_days"`
}
