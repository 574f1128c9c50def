package punch

type PunchInput struct {
	DeviceUserID string `json:"device_user_id" binding:"required"`
	PunchedAt    string `json:"punched_at" binding:"required"`
	Direction    string `json:"direction" binding:"omitempty,oneof=IN OUT AUTO"`
}

type IngestPunchesRequest struct {
	SourceType string       `json:"source_type" binding:"required,oneof=BIOMETRIC API IMPORT"`
	DeviceAddr string       `json:"device_addr" binding:"required"`
	DryRun     bool         `json:"dry_run"`
	Punches    []PunchInput `json:"punches" binding:"required,min=1,dive"`
}

type IngestPunchesResponse struct {
	Inserted int             `json:"inserted"`
	Skipped  int             `json:"skipped"`
	DryRun   bool            `json:"dry_run"`
	Sample   []PunchResponse `json:"sample,omitempty"`
}

type PunchResponse struct {
	ID           string `json:"id,omitempty"`
	DeviceUserID string `json:"device_user_id"`
	PunchedAt    string `json:"punched_at"`
	Direction    string `json:"direction"`
	SourceType   string `json:"source_type"`
	DeviceAddr   string `json:"device_addr"`
	Status       string `json:"status"`
}
