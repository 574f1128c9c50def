package leave

import (
	"context"
	"database/sql"

	"github.com/Vishal6374/hr-harmony-sub000/internal/shared/connection"

	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_balance_repo.go -destination=mock/leave_balance_repo_mock.go -package=mock
type BalanceRepository interface {
	WithTx(tx *sql.Tx) BalanceRepository
	// GetOrCreate returns the (employee, type, year) row, creating it with
	// the given entitlement when it does not exist yet.
	GetOrCreate(ctx context.Context, companyID, employeeID, leaveType string, year, totalDays int) (*LeaveBalance, error)
	// AddUsed moves used_days atomically; the guard keeps it within
	// [0, total_days]. Returns false when the guard loses.
	AddUsed(ctx context.Context, id string, delta int) (bool, error)
	SetTotal(ctx context.Context, companyID, leaveType string, year, totalDays int) (int64, error)
	FindByEmployeeAndYear(ctx context.Context, companyID, employeeID string, year int) ([]LeaveBalance, error)
}

type balanceRepository struct {
	db *gorm.DB
}

func NewBalanceRepository(db *gorm.DB) BalanceRepository {
	return &balanceRepository{db: db}
}

func (r *balanceRepository) WithTx(tx *sql.Tx) BalanceRepository {
	return &balanceRepository{db: connection.TxBound(r.db, tx)}
}

// Raw upsert so two concurrent lazy creations for the same key collapse
// into one row.
func (r *balanceRepository) GetOrCreate(ctx context.Context, companyID, employeeID, leaveType string, year, totalDays int) (*LeaveBalance, error) {
	var b LeaveBalance
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO leave_balances (id, company_id, employee_id, leave_type, year, total_days, used_days, created_at, updated_at)
		VALUES (gen_random_uuid(), ?, ?, ?, ?, ?, 0, now(), now())
		ON CONFLICT (employee_id, leave_type, year) DO UPDATE
		SET updated_at = now()
		RETURNING id, company_id, employee_id, leave_type, year, total_days, used_days, created_at, updated_at
	`, companyID, employeeID, leaveType, year, totalDays).Scan(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *balanceRepository) AddUsed(ctx context.Context, id string, delta int) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE leave_balances
		SET used_days = used_days + ?, updated_at = now()
		WHERE id = ?
		  AND used_days + ? >= 0
		  AND used_days + ? <= total_days
	`, delta, id, delta, delta)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *balanceRepository) SetTotal(ctx context.Context, companyID, leaveType string, year, totalDays int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&LeaveBalance{}).
		Where("company_id = ?", companyID).
		Where("leave_type = ?", leaveType).
		Where("year = ?", year).
		Update("total_days", totalDays)
	return res.RowsAffected, res.Error
}

func (r *balanceRepository) FindByEmployeeAndYear(ctx context.Context, companyID, employeeID string, year int) ([]LeaveBalance, error) {
	var rows []LeaveBalance
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("employee_id = ?", employeeID).
		Where("year = ?", year).
		Order("leave_type ASC").
		Find(&rows).Error
	return rows, err
}
