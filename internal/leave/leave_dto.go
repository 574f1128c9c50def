package leave

type SubmitLeaveRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	LeaveType  string `json:"leave_type" binding:"required,uppercase"`
	StartDate  string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate    string `json:"end_date" binding:"required,datetime=2006-01-02"`
	Reason     string `json:"reason" binding:"required"`
}

type UpdateLeaveRequest struct {
	LeaveType string `json:"leave_type" binding:"required,uppercase"`
	StartDate string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" binding:"required,datetime=2006-01-02"`
	Reason    string `json:"reason" binding:"required"`
}

type DecideLeaveRequest struct {
	Approve *bool  `json:"approve" binding:"required"`
	Remarks string `json:"remarks"`
}

type ListLeaveQuery struct {
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=PENDING_MANAGER PENDING_HR APPROVED REJECTED CANCELLED WITHDRAWN"`
}

type LeaveResponse struct {
	ID               string  `json:"id"`
	EmployeeID       string  `json:"employee_id"`
	ManagerID        *string `json:"manager_id,omitempty"`
	LeaveType        string  `json:"leave_type"`
	StartDate        string  `json:"start_date"`
	EndDate          string  `json:"end_date"`
	TotalDays        int     `json:"total_days"`
	Reason           string  `json:"reason"`
	Status           string  `json:"status"`
	ManagerDecidedBy *string `json:"manager_decided_by,omitempty"`
	DecidedBy        *string `json:"decided_by,omitempty"`
	DecisionRemarks  *string `json:"decision_remarks,omitempty"`
}

type LeaveBalanceResponse struct {
	EmployeeID    string `json:"employee_id"`
	LeaveType     string `json:"leave_type"`
	Year          int    `json:"year"`
	TotalDays     int    `json:"total_days"`
	UsedDays      int    `json:"used_days"`
	RemainingDays int    `json:"remaining_days"`
}
