package payroll

type GeneratePayrollRequest struct {
	Month       int      `json:"month" binding:"required,min=1,max=12"`
	Year        int      `json:"year" binding:"required,min=2000,max=2100"`
	EmployeeIDs []string `json:"employee_ids" binding:"omitempty,dive,uuid"`
}

type PreviewPayrollRequest struct {
	Month       int      `json:"month" binding:"required,min=1,max=12"`
	Year        int      `json:"year" binding:"required,min=2000,max=2100"`
	EmployeeIDs []string `json:"employee_ids" binding:"required,min=1,dive,uuid"`
}

type UpdateSlipRequest struct {
	Allowances      *int64 `json:"allowances" binding:"omitempty,min=0"`
	OtherDeductions *int64 `json:"other_deductions" binding:"omitempty,min=0"`
}

type ListBatchQuery struct {
	Year   int    `form:"year" binding:"omitempty,min=2000,max=2100"`
	Status string `form:"status" binding:"omitempty,oneof=DRAFT PROCESSED PAID CANCELLED"`
}

type SlipResponse struct {
	ID                 string `json:"id"`
	EmployeeID         string `json:"employee_id"`
	Month              int    `json:"month"`
	Year               int    `json:"year"`
	BasicSalary        int64  `json:"basic_salary"`
	Allowances         int64  `json:"allowances"`
	ReimbursementTotal int64  `json:"reimbursement_total"`
	GrossSalary        int64  `json:"gross_salary"`
	LossOfPay          int64  `json:"loss_of_pay"`
	PFDeduction        int64  `json:"pf_deduction"`
	TaxDeduction       int64  `json:"tax_deduction"`
	OtherDeductions    int64  `json:"other_deductions"`
	TotalDeductions    int64  `json:"total_deductions"`
	NetSalary          int64  `json:"net_salary"`
	PresentDays        int    `json:"present_days"`
	HalfDays           int    `json:"half_days"`
	AbsentDays         int    `json:"absent_days"`
	Status             string `json:"status"`
}

type BatchResponse struct {
	ID             string `json:"id"`
	Month          int    `json:"month"`
	Year           int    `json:"year"`
	Status         string `json:"status"`
	EmployeeCount  int    `json:"employee_count"`
	ProcessedCount int    `json:"processed_count"`
	TotalAmount    int64  `json:"total_amount"`
}

type GenerateResult struct {
	Batch  BatchResponse `json:"batch"`
	Slips  []SlipResponse `json:"slips"`
	Failed []string       `json:"failed_employee_ids,omitempty"`
}

type PreviewResult struct {
	Month       int            `json:"month"`
	Year        int            `json:"year"`
	TotalAmount int64          `json:"total_amount"`
	Slips       []SlipResponse `json:"slips"`
}
