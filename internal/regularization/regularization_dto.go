package regularization

type CreateRegularizationRequest struct {
	EmployeeID  string  `json:"employee_id" binding:"required,uuid"`
	Date        string  `json:"date" binding:"required,datetime=2006-01-02"`
	RequestType string  `json:"request_type" binding:"required,oneof=CHECK_IN CHECK_OUT BOTH STATUS_CHANGE"`
	CheckIn     *string `json:"check_in" binding:"omitempty"`
	CheckOut    *string `json:"check_out" binding:"omitempty"`
	Status      *string `json:"status" binding:"omitempty,oneof=PRESENT ABSENT HALF_DAY ON_LEAVE HOLIDAY WEEKEND"`
	Reason      string  `json:"reason" binding:"required"`
}

type ProcessRegularizationRequest struct {
	Approve *bool  `json:"approve" binding:"required"`
	Note    string `json:"note" binding:"omitempty"`
}

type ListRegularizationQuery struct {
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
}

type RegularizationResponse struct {
	ID          string  `json:"id"`
	EmployeeID  string  `json:"employee_id"`
	Date        string  `json:"date"`
	RequestType string  `json:"request_type"`
	CheckIn     *string `json:"check_in,omitempty"`
	CheckOut    *string `json:"check_out,omitempty"`
	Status      *string `json:"proposed_status,omitempty"`
	Reason      string  `json:"reason"`
	State       string  `json:"state"`
	ReviewedBy  *string `json:"reviewed_by,omitempty"`
	ReviewNote  *string `json:"review_note,omitempty"`
}
