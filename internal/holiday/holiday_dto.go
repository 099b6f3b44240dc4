package holiday

type CreateHolidayRequest struct {
	Name        string `json:"name" binding:"required"`
	Date        string `json:"date" binding:"required"`
	Type        string `json:"type" binding:"required,oneof=NATIONAL COMPANY REGIONAL"`
	IsOptional  bool   `json:"is_optional"`
	Description string `json:"description"`
}

type UpdateHolidayRequest struct {
	Name        *string `json:"name"`
	Date        *string `json:"date"`
	Type        *string `json:"type" binding:"omitempty,oneof=NATIONAL COMPANY REGIONAL"`
	IsOptional  *bool   `json:"is_optional"`
	Description *string `json:"description"`
}

type HolidayResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Date        string `json:"date"`
	Type        string `json:"type"`
	IsOptional  bool   `json:"is_optional"`
	Description string `json:"description,omitempty"`
}
