package attendance

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	assert.NoError(t, err)
	return gdb, mock
}

func TestArchiveRepository_FindLatestByEmployeeAndDate(t *testing.T) {
	gdb, mock := newMockGorm(t)
	repo := NewArchiveRepository(gdb)

	recordID := uuid.New()
	employeeID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "employee_id", "attendance_date", "status", "total_hours"}).
		AddRow(recordID.String(), employeeID.String(), "2025-06-02", "CHECKED_OUT", 8.5)

	mock.ExpectQuery(`SELECT \* FROM "attendance_records" WHERE employee_id = \$1 AND attendance_date = \$2 ORDER BY check_in_time DESC`).
		WithArgs(employeeID.String(), "2025-06-02", 1).
		WillReturnRows(rows)

	rec, err := repo.FindLatestByEmployeeAndDate(context.Background(), employeeID.String(), "2025-06-02")
	assert.NoError(t, err)
	assert.NotNil(t, rec)
	assert.Equal(t, recordID, rec.ID)
	assert.Equal(t, StatusCheckedOut, rec.Status)
	assert.Equal(t, 8.5, *rec.TotalHours)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArchiveRepository_FindLatestByEmployeeAndDate_NotFound(t *testing.T) {
	gdb, mock := newMockGorm(t)
	repo := NewArchiveRepository(gdb)

	employeeID := uuid.New().String()
	mock.ExpectQuery(`SELECT \* FROM "attendance_records"`).
		WithArgs(employeeID, "2025-06-02", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec, err := repo.FindLatestByEmployeeAndDate(context.Background(), employeeID, "2025-06-02")
	assert.NoError(t, err)
	assert.Nil(t, rec)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArchiveRepository_FindAllByDate(t *testing.T) {
	gdb, mock := newMockGorm(t)
	repo := NewArchiveRepository(gdb)

	rows := sqlmock.NewRows([]string{"id", "employee_id", "attendance_date", "status"}).
		AddRow(uuid.New().String(), uuid.New().String(), "2025-06-02", "CHECKED_OUT").
		AddRow(uuid.New().String(), uuid.New().String(), "2025-06-02", "CHECKED_OUT")

	mock.ExpectQuery(`SELECT \* FROM "attendance_records" WHERE attendance_date = \$1 ORDER BY check_in_time DESC`).
		WithArgs("2025-06-02").
		WillReturnRows(rows)

	recs, err := repo.FindAllByDate(context.Background(), "2025-06-02")
	assert.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArchiveRepository_FindAllByEmployee_WithRange(t *testing.T) {
	gdb, mock := newMockGorm(t)
	repo := NewArchiveRepository(gdb)

	employeeID := uuid.New().String()
	rows := sqlmock.NewRows([]string{"id", "employee_id", "attendance_date", "status"}).
		AddRow(uuid.New().String(), employeeID, "2025-06-02", "CHECKED_OUT")

	mock.ExpectQuery(`SELECT \* FROM "attendance_records" WHERE employee_id = \$1 AND \(attendance_date BETWEEN \$2 AND \$3\) ORDER BY attendance_date DESC, check_in_time DESC`).
		WithArgs(employeeID, "2025-06-01", "2025-06-07", 30).
		WillReturnRows(rows)

	recs, err := repo.FindAllByEmployee(context.Background(), employeeID, "2025-06-01", "2025-06-07", 30)
	assert.NoError(t, err)
	assert.Len(t, recs, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
