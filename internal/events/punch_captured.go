package events

import "time"

const PunchCapturedTopic = "hr.punch.captured.v1"

// PunchCapturedEvent is published by biometric gateways; the consumer feeds
// it into punch ingestion.
type PunchCapturedEvent struct {
	EventType    string    `json:"event_type"`
	DeviceUserID string    `json:"device_user_id"`
	PunchedAt    time.Time `json:"punched_at"`
	Direction    string    `json:"direction"`
	DeviceAddr   string    `json:"device_addr"`
	SourceType   string    `json:"source_type"`
}
