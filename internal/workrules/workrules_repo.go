package workrules

import (
	"context"
	"database/sql"

	"github.com/Vishal6374/hr-harmony-sub000/internal/shared/connection"

	"gorm.io/gorm"
)

//go:generate mockgen -source=workrules_repo.go -destination=mock/workrules_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, w *WorkRules) error
	FindActiveByCompany(ctx context.Context, companyID string) (*WorkRules, error)
	FindAllActive(ctx context.Context) ([]WorkRules, error)
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

func (r *repository) Create(ctx context.Context, w *WorkRules) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *repository) FindActiveByCompany(ctx context.Context, companyID string) (*WorkRules, error) {
	var w WorkRules
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("version DESC").
		First(&w).Error
	return &w, err
}

func (r *repository) FindAllActive(ctx context.Context) ([]WorkRules, error) {
	var rows []WorkRules
	err := r.db.WithContext(ctx).
		Raw(`
SELECT DISTINCT ON (company_id) *
FROM work_rules
ORDER BY company_id, version DESC
`).Scan(&rows).Error
	return rows, err
}
