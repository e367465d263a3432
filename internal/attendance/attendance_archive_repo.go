package attendance

import (
	"context"

	"gorm.io/gorm"
)

// ArchiveRepository persists closed records. The in-memory store owns
// the open ones; this is the durable trail behind it.
//
//go:generate mockgen -source=attendance_archive_repo.go -destination=mock/attendance_archive_repo_mock.go -package=mock
type ArchiveRepository interface {
	Create(ctx context.Context, rec *Record) error
	FindAllByEmployee(ctx context.Context, employeeID string, from, to string, limit int) ([]Record, error)
	FindLatestByEmployeeAndDate(ctx context.Context, employeeID, date string) (*Record, error)
	FindAllByDate(ctx context.Context, date string) ([]Record, error)
}

type archiveRepository struct {
	db *gorm.DB
}

func NewArchiveRepository(db *gorm.DB) ArchiveRepository {
	return &archiveRepository{db: db}
}

func (r *archiveRepository) Create(ctx context.Context, rec *Record) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *archiveRepository) FindAllByEmployee(ctx context.Context, employeeID string, from, to string, limit int) ([]Record, error) {
	q := r.db.WithContext(ctx).Where("employee_id = ?", employeeID)
	if from != "" && to != "" {
		q = q.Where("attendance_date BETWEEN ? AND ?", from, to)
	}
	var rows []Record
	err := q.Order("attendance_date DESC, check_in_time DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *archiveRepository) FindLatestByEmployeeAndDate(ctx context.Context, employeeID, date string) (*Record, error) {
	var rec Record
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("attendance_date = ?", date).
		Order("check_in_time DESC").
		First(&rec).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *archiveRepository) FindAllByDate(ctx context.Context, date string) ([]Record, error) {
	var rows []Record
	err := r.db.WithContext(ctx).
		Where("attendance_date = ?", date).
		Order("check_in_time DESC").
		Find(&rows).Error
	return rows, err
}
