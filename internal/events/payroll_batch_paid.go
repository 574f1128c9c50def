package events

import "time"

const PayrollBatchPaidTopic = "hr.payroll.batch.paid.v1"

type PayrollBatchPaidEvent struct {
	EventType   string    `json:"event_type"`
	BatchID     string    `json:"batch_id"`
	CompanyID   string    `json:"company_id"`
	Month       int       `json:"month"`
	Year        int       `json:"year"`
	TotalAmount int64     `json:"total_amount"`
	PaidBy      string    `json:"paid_by"`
	OccurredAt  time.Time `json:"occurred_at"`
}
