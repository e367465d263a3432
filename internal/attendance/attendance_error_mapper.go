package attendance

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	attendanceerrors "github.com/anand05ms/Employee-tracker/internal/attendance/errors"
)

func mapArchiveError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return attendanceerrors.ErrRecordNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return attendanceerrors.ErrAlreadyCheckedIn
		case "23503":
			return attendanceerrors.ErrInvalidEmployeeID
		}
	}

	return err
}
