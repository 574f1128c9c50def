package attendance

import "time"

type MarkAttendanceRequest struct {
	EmployeeID string  `json:"employee_id" binding:"required,uuid"`
	Date       string  `json:"date" binding:"required,datetime=2006-01-02"`
	CheckIn    *string `json:"check_in"`
	CheckOut   *string `json:"check_out"`
	Status     *string `json:"status" binding:"omitempty,oneof=PRESENT ABSENT HALF_DAY ON_LEAVE HOLIDAY WEEKEND"`
	Notes      *string `json:"notes"`
}

type UpdateAttendanceRequest struct {
	CheckIn  *string `json:"check_in"`
	CheckOut *string `json:"check_out"`
	Status   *string `json:"status" binding:"omitempty,oneof=PRESENT ABSENT HALF_DAY ON_LEAVE HOLIDAY WEEKEND"`
	Notes    *string `json:"notes"`
	Reason   string  `json:"reason" binding:"required"`
}

type ListAttendanceQuery struct {
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	Month      int    `form:"month" binding:"required,min=1,max=12"`
	Year       int    `form:"year" binding:"required,min=2000,max=2100"`
}

type LockMonthRequest struct {
	Month int `json:"month" binding:"required,min=1,max=12"`
	Year  int `json:"year" binding:"required,min=2000,max=2100"`
}

type LockMonthResponse struct {
	Month       int   `json:"month"`
	Year        int   `json:"year"`
	CountLocked int64 `json:"count_locked"`
}

// CorrectionPatch carries only the fields a regularization decision applies.
// Nil fields are left untouched on the underlying record.
type CorrectionPatch struct {
	CheckIn  *time.Time
	CheckOut *time.Time
	Status   *string
	EditorID string
	Reason   string
}

type AttendanceResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	Date            string  `json:"date"`
	CheckIn         *string `json:"check_in"`
	CheckOut        *string `json:"check_out"`
	Status          string  `json:"status"`
	WorkHours       float64 `json:"work_hours"`
	OvertimeMinutes int     `json:"overtime_minutes"`
	LateMinutes     int     `json:"late_minutes"`
	IsLocked        bool    `json:"is_locked"`
	Source          string  `json:"source"`
	EditedBy        *string `json:"edited_by,omitempty"`
	EditReason      *string `json:"edit_reason,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

type ResolveResult struct {
	Date     string `json:"date"`
	Resolved int    `json:"resolved"`
	Failed   int    `json:"failed"`
}

type SweepResult struct {
	Date    string `json:"date"`
	Absent  int    `json:"absent"`
	OnLeave int    `json:"on_leave"`
	Skipped int    `json:"skipped"`
}
