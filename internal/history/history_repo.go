package history

import (
	"context"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=history_repo.go -destination=mock/history_repo_mock.go -package=mock
type Repository interface {
	CreateBatch(ctx context.Context, samples []Sample) error
	FindByEmployee(ctx context.Context, employeeID string, from, to *time.Time, limit int) ([]Sample, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateBatch(ctx context.Context, samples []Sample) error {
	if len(samples) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&samples).Error
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string, from, to *time.Time, limit int) ([]Sample, error) {
	q := r.db.WithContext(ctx).Where("employee_id = ?", employeeID)
	if from != nil && to != nil {
		q = q.Where("timestamp BETWEEN ? AND ?", from, to)
	}
	var rows []Sample
	err := q.Order("timestamp DESC").Limit(limit).Find(&rows).Error
	return rows, err
}
