package employee

type CreateEmployeeRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	HireDate string `json:"hire_date" binding:"required"`
}

type EmployeeResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	HireDate string `json:"hire_date"`
}

// EmployeeOption is the slim directory entry served to selection widgets.
type EmployeeOption struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}
