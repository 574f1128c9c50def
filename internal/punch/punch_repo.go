package punch

import (
	"context"
	"database/sql"
	"time"

	"github.com/Vishal6374/hr-harmony-sub000/internal/shared/connection"

	"gorm.io/gorm"
)

//go:generate mockgen -source=punch_repo.go -destination=mock/punch_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, p *RawPunch) error
	Exists(ctx context.Context, deviceUserID string, punchedAt time.Time, deviceAddr string) (bool, error)
	ListPendingByDate(ctx context.Context, date time.Time) ([]RawPunch, error)
	UpdateStatus(ctx context.Context, ids []string, status string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: connection.TxBound(r.db, tx)}
}

func (r *repository) Create(ctx context.Context, p *RawPunch) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) Exists(ctx context.Context, deviceUserID string, punchedAt time.Time, deviceAddr string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&RawPunch{}).
		Where("device_user_id = ?", deviceUserID).
		Where("punched_at = ?", punchedAt).
		Where("device_addr = ?", deviceAddr).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) ListPendingByDate(ctx context.Context, date time.Time) ([]RawPunch, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	var rows []RawPunch
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusPending).
		Where("punched_at >= ? AND punched_at < ?", dayStart, dayEnd).
		Order("device_user_id, punched_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) UpdateStatus(ctx context.Context, ids []string, status string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&RawPunch{}).
		Where("id IN ?", ids).
		Update("status", status).Error
}
