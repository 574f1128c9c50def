package punch

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "PENDING"
	StatusProcessed = "PROCESSED"
	StatusFailed    = "FAILED"
)

const (
	DirectionIn   = "IN"
	DirectionOut  = "OUT"
	DirectionAuto = "AUTO"
)

const (
	SourceBiometric = "BIOMETRIC"
	SourceAPI       = "API"
	SourceImport    = "IMPORT"
)

// RawPunch is one physical clock event exactly as the device reported it.
// Rows are append-only; only the determination engine advances the status.
type RawPunch struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	DeviceUserID string    `gorm:"column:device_user_id;type:varchar(50);not null;index:idx_raw_punches_dedup,unique"`
	PunchedAt    time.Time `gorm:"column:punched_at;type:timestamptz;not null;index:idx_raw_punches_dedup,unique"`
	DeviceAddr   string    `gorm:"column:device_addr;type:varchar(100);not null;index:idx_raw_punches_dedup,unique"`
	Direction    string    `gorm:"column:direction;type:varchar(10);not null;default:'AUTO'"`
	SourceType   string    `gorm:"column:source_type;type:varchar(20);not null;default:'BIOMETRIC'"`
	Status       string    `gorm:"column:status;type:varchar(20);not null;default:'PENDING';index"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (RawPunch) TableName() string {
	return "raw_punches"
}
