package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/anand05ms/Employee-tracker/internal/attendance"
	"github.com/anand05ms/Employee-tracker/internal/directory"
	"github.com/anand05ms/Employee-tracker/internal/history"
)

const (
	statsKeyPrefix = "attendance:dashboard:stats:"
	statsTTL       = 30 * time.Second
)

//go:generate mockgen -source=dashboard_service.go -destination=mock/dashboard_service_mock.go -package=mock
type Service interface {
	ListEmployees(ctx context.Context) ([]directory.Employee, error)
	CheckedIn(ctx context.Context) ([]EmployeeStatusEntry, error)
	Reached(ctx context.Context) ([]EmployeeStatusEntry, error)
	CheckedOut(ctx context.Context) ([]EmployeeStatusEntry, error)
	NotCheckedIn(ctx context.Context) ([]directory.Employee, error)
	Stats(ctx context.Context) (Stats, error)
	EmployeeLocations(ctx context.Context, employeeID string, from, to *time.Time, limit int) ([]history.Sample, error)
	EmployeeAttendance(ctx context.Context, employeeID string, from, to string, limit int) ([]attendance.RecordResponse, error)
}

type service struct {
	store       *attendance.Store
	archive     attendance.ArchiveRepository
	dir         directory.Directory
	sink        history.Sink
	historyRepo history.Repository
	rdb         *redis.Client
	sf          *singleflight.Group
	tz          *time.Location
	now         func() time.Time
	logger      *zap.Logger
}

func NewService(
	store *attendance.Store,
	archive attendance.ArchiveRepository,
	dir directory.Directory,
	sink history.Sink,
	historyRepo history.Repository,
	rdb *redis.Client,
	tz *time.Location,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("dashboard.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("dashboard.service")
	}
	if tz == nil {
		tz = time.Local
	}
	return &service{
		store:       store,
		archive:     archive,
		dir:         dir,
		sink:        sink,
		historyRepo: historyRepo,
		rdb:         rdb,
		sf:          &singleflight.Group{},
		tz:          tz,
		now:         time.Now,
		logger:      l,
	}
}

func (s *service) today() string {
	return s.now().In(s.tz).Format("2006-01-02")
}

// latestPerEmployee reduces today's records to one per employee: the
// open record when there is one, otherwise the last closed record of
// the day. Closed records come from the store first and the archive as
// a fallback, so a freshly restarted process still sees the day.
func (s *service) latestPerEmployee(ctx context.Context) map[string]attendance.Record {
	today := s.today()
	latest := make(map[string]attendance.Record)

	if archived, err := s.archive.FindAllByDate(ctx, today); err != nil {
		s.logger.Warn("load archived records failed", zap.Error(err))
	} else {
		// FindAllByDate returns newest first; keep the first seen.
		for _, rec := range archived {
			key := rec.EmployeeID.String()
			if _, ok := latest[key]; !ok {
				latest[key] = rec
			}
		}
	}

	for _, rec := range s.store.ClosedForDay(today) {
		key := rec.EmployeeID.String()
		if cur, ok := latest[key]; !ok || rec.CheckInTime.After(cur.CheckInTime) {
			latest[key] = rec
		}
	}

	for _, rec := range s.store.OpenRecords() {
		latest[rec.EmployeeID.String()] = rec
	}

	return latest
}

func (s *service) entriesByStatus(ctx context.Context, status attendance.Status, withLocation bool) ([]EmployeeStatusEntry, error) {
	latest := s.latestPerEmployee(ctx)

	entries := make([]EmployeeStatusEntry, 0, len(latest))
	for employeeID, rec := range latest {
		if rec.Status != status {
			continue
		}

		entry := EmployeeStatusEntry{}
		if emp, err := s.dir.FindByID(ctx, employeeID); err == nil && emp != nil {
			entry.Employee = *emp
		} else {
			// Directory gaps must not hide the attendance data.
			entry.Employee = directory.Employee{ID: rec.EmployeeID}
		}

		resp := rec.ToResponse()
		entry.Attendance = &resp

		if withLocation {
			if loc, err := s.sink.Latest(ctx, employeeID); err == nil {
				entry.Location = loc
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *service) ListEmployees(ctx context.Context) ([]directory.Employee, error) {
	return s.dir.ListActive(ctx)
}

func (s *service) CheckedIn(ctx context.Context) ([]EmployeeStatusEntry, error) {
	return s.entriesByStatus(ctx, attendance.StatusCheckedIn, true)
}

func (s *service) Reached(ctx context.Context) ([]EmployeeStatusEntry, error) {
	return s.entriesByStatus(ctx, attendance.StatusReachedOffice, true)
}

func (s *service) CheckedOut(ctx context.Context) ([]EmployeeStatusEntry, error) {
	return s.entriesByStatus(ctx, attendance.StatusCheckedOut, false)
}

func (s *service) NotCheckedIn(ctx context.Context) ([]directory.Employee, error) {
	employees, err := s.dir.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	latest := s.latestPerEmployee(ctx)
	out := make([]directory.Employee, 0, len(employees))
	for _, emp := range employees {
		if _, ok := latest[emp.ID.String()]; !ok {
			out = append(out, emp)
		}
	}
	return out, nil
}

// Stats is cached for a short window and computed behind singleflight;
// every open dashboard polls it.
func (s *service) Stats(ctx context.Context) (Stats, error) {
	today := s.today()
	cacheKey := statsKeyPrefix + today

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var stats Stats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				return stats, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		employees, err := s.dir.ListActive(ctx)
		if err != nil {
			return Stats{}, err
		}

		latest := s.latestPerEmployee(ctx)
		stats := Stats{
			TotalEmployees: len(employees),
			Date:           today,
		}
		for _, rec := range latest {
			switch rec.Status {
			case attendance.StatusCheckedIn:
				stats.CheckedInToday++
			case attendance.StatusReachedOffice:
				stats.InOfficeCount++
			case attendance.StatusCheckedOut:
				stats.CheckedOutToday++
			}
		}
		stats.NotCheckedIn = stats.TotalEmployees - len(latest)
		if stats.NotCheckedIn < 0 {
			stats.NotCheckedIn = 0
		}

		if s.rdb != nil {
			if payload, err := json.Marshal(stats); err == nil {
				s.rdb.Set(ctx, cacheKey, payload, statsTTL)
			}
		}
		return stats, nil
	})
	if err != nil {
		return Stats{}, err
	}
	return v.(Stats), nil
}

func (s *service) EmployeeLocations(ctx context.Context, employeeID string, from, to *time.Time, limit int) ([]history.Sample, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.historyRepo.FindByEmployee(ctx, employeeID, from, to, limit)
}

func (s *service) EmployeeAttendance(ctx context.Context, employeeID string, from, to string, limit int) ([]attendance.RecordResponse, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := s.archive.FindAllByEmployee(ctx, employeeID, from, to, limit)
	if err != nil {
		return nil, err
	}
	res := make([]attendance.RecordResponse, len(rows))
	for i, r := range rows {
		res[i] = r.ToResponse()
	}
	return res, nil
}
