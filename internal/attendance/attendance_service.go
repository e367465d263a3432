package attendance

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	attendanceerrors "github.com/anand05ms/Employee-tracker/internal/attendance/errors"
	"github.com/anand05ms/Employee-tracker/internal/events"
	"github.com/anand05ms/Employee-tracker/internal/geo"
	"github.com/anand05ms/Employee-tracker/internal/history"
)

const (
	defaultAddress = "Unknown"
	historyLimit   = 30
)

// EventEmitter is the status broadcaster as the engine sees it. Publish
// must be wait-free; the engine calls it while holding a record lock to
// keep same-employee events in order.
type EventEmitter interface {
	Publish(event events.StatusChangedEvent)
}

// EngineConfig carries everything fixed at process start. Now is
// replaceable for tests and defaults to time.Now.
type EngineConfig struct {
	Office   geo.Office
	Timezone *time.Location
	Now      func() time.Time
}

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	CheckIn(ctx context.Context, employeeID string, req CheckInRequest) (CheckInResponse, error)
	UpdateLocation(ctx context.Context, employeeID string, req LocationUpdateRequest) (LocationUpdateResponse, error)
	CheckOut(ctx context.Context, employeeID string, req CheckOutRequest) (CheckOutResponse, error)
	Status(ctx context.Context, employeeID string) (StatusResponse, error)
	History(ctx context.Context, employeeID string, from, to string, limit int) ([]RecordResponse, error)
}

type service struct {
	store   *Store
	archive ArchiveRepository
	sink    history.Sink
	emitter EventEmitter
	office  geo.Office
	tz      *time.Location
	now     func() time.Time
	logger  *zap.Logger
}

func NewService(
	store *Store,
	archive ArchiveRepository,
	sink history.Sink,
	emitter EventEmitter,
	cfg EngineConfig,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	tz := cfg.Timezone
	if tz == nil {
		tz = time.Local
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		store:   store,
		archive: archive,
		sink:    sink,
		emitter: emitter,
		office:  cfg.Office,
		tz:      tz,
		now:     now,
		logger:  l,
	}
}

// dayKey gives the calendar date in the engine's timezone. It is computed
// once at check-in and carried on the record for its whole life.
func dayKey(t time.Time, tz *time.Location) string {
	return t.In(tz).Format("2006-01-02")
}

func roundHours(d time.Duration) float64 {
	return math.Round(d.Hours()*100) / 100
}

func orUnknown(address string) string {
	if address == "" {
		return defaultAddress
	}
	return address
}

func (s *service) CheckIn(ctx context.Context, employeeID string, req CheckInRequest) (CheckInResponse, error) {
	id, point, err := s.parseSubject(employeeID, *req.Latitude, *req.Longitude)
	if err != nil {
		return CheckInResponse{}, err
	}

	now := s.now().In(s.tz)
	distance := geo.DistanceMeters(point, s.office.Center)
	inOffice := distance <= s.office.RadiusMeters

	status := StatusCheckedIn
	if inOffice {
		status = StatusReachedOffice
	}

	rec := &Record{
		ID:                    uuid.New(),
		EmployeeID:            id,
		Date:                  dayKey(now, s.tz),
		Status:                status,
		CheckInTime:           now,
		CheckInLocation:       point,
		CheckInAddress:        orUnknown(req.Address),
		CurrentLocation:       point,
		DistanceFromOffice:    math.Round(distance),
		EstimatedTimeToOffice: geo.ETAMinutes(distance),
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if inOffice {
		t := now
		rec.ReachedOfficeTime = &t
	}

	err = s.store.CreateOpen(rec, func() {
		evt := s.newEvent(string(status), id, point, req.Address, inOffice, distance, now)
		evt.HasReachedOffice = inOffice
		evt.Accuracy = req.Accuracy
		t := now
		evt.CheckInTime = &t
		s.emitter.Publish(evt)
	})
	if err != nil {
		return CheckInResponse{}, err
	}

	s.appendSample(id, point, req.Address, inOffice, now, history.Sample{
		Accuracy: req.Accuracy,
	})

	s.logger.Info("employee checked in",
		zap.String("employee_id", employeeID),
		zap.String("status", string(status)),
		zap.Float64("distance_from_office", rec.DistanceFromOffice),
	)

	return CheckInResponse{
		Record:             rec.ToResponse(),
		Status:             string(status),
		IsInOffice:         inOffice,
		HasReachedOffice:   inOffice,
		DistanceFromOffice: rec.DistanceFromOffice,
		ETA:                rec.EstimatedTimeToOffice,
	}, nil
}

func (s *service) UpdateLocation(ctx context.Context, employeeID string, req LocationUpdateRequest) (LocationUpdateResponse, error) {
	id, point, err := s.parseSubject(employeeID, *req.Latitude, *req.Longitude)
	if err != nil {
		return LocationUpdateResponse{}, err
	}

	now := s.now().In(s.tz)
	distance := geo.DistanceMeters(point, s.office.Center)
	inOffice := distance <= s.office.RadiusMeters

	var (
		transitioned bool
		status       Status
	)
	found, _ := s.store.WithOpen(id, func(rec *Record) error {
		rec.CurrentLocation = point
		rec.DistanceFromOffice = math.Round(distance)
		rec.EstimatedTimeToOffice = geo.ETAMinutes(distance)
		rec.UpdatedAt = now

		if rec.Status == StatusCheckedIn && inOffice {
			rec.Status = StatusReachedOffice
			if rec.ReachedOfficeTime == nil {
				t := now
				rec.ReachedOfficeTime = &t
			}
			transitioned = true
		}
		status = rec.Status

		eventType := events.TypeLocationUpdate
		if transitioned {
			eventType = events.TypeReachedOffice
		}
		evt := s.newEvent(eventType, id, point, req.Address, inOffice, distance, now)
		evt.HasReachedOffice = transitioned
		evt.Accuracy = req.Accuracy
		evt.Speed = req.Speed
		evt.BatteryLevel = req.BatteryLevel
		s.emitter.Publish(evt)
		return nil
	})

	if !found {
		// Stray sample from a device that has not synced its check-in.
		// Accepted without a transition; the sample is still recorded.
		s.logger.Debug("location update without open record",
			zap.String("employee_id", employeeID),
		)
		evt := s.newEvent(events.TypeLocationUpdate, id, point, req.Address, inOffice, distance, now)
		evt.Accuracy = req.Accuracy
		evt.Speed = req.Speed
		evt.BatteryLevel = req.BatteryLevel
		s.emitter.Publish(evt)
	}

	s.appendSample(id, point, req.Address, inOffice, now, history.Sample{
		Accuracy:     req.Accuracy,
		Speed:        req.Speed,
		Heading:      req.Heading,
		BatteryLevel: req.BatteryLevel,
	})

	if transitioned {
		s.logger.Info("employee reached the office",
			zap.String("employee_id", employeeID),
		)
	}

	return LocationUpdateResponse{
		Status:             string(status),
		IsInOffice:         inOffice,
		HasReachedOffice:   transitioned,
		DistanceFromOffice: math.Round(distance),
	}, nil
}

func (s *service) CheckOut(ctx context.Context, employeeID string, req CheckOutRequest) (CheckOutResponse, error) {
	id, point, err := s.parseSubject(employeeID, *req.Latitude, *req.Longitude)
	if err != nil {
		return CheckOutResponse{}, err
	}

	now := s.now().In(s.tz)
	distance := geo.DistanceMeters(point, s.office.Center)

	var closed Record
	found, _ := s.store.WithOpen(id, func(rec *Record) error {
		t := now
		rec.CheckOutTime = &t
		rec.CheckOutLocation = point
		rec.CheckOutAddress = orUnknown(req.Address)
		rec.CurrentLocation = point
		rec.DistanceFromOffice = math.Round(distance)
		rec.EstimatedTimeToOffice = geo.ETAMinutes(distance)
		hours := roundHours(now.Sub(rec.CheckInTime))
		rec.TotalHours = &hours
		rec.Status = StatusCheckedOut
		rec.UpdatedAt = now
		closed = *rec

		evt := s.newEvent(events.TypeCheckedOut, id, point, req.Address, false, distance, now)
		evt.CheckOutTime = &t
		evt.TotalHours = &hours
		s.emitter.Publish(evt)
		return nil
	})
	if !found {
		return CheckOutResponse{}, attendanceerrors.ErrNotCheckedIn
	}

	s.appendSample(id, point, req.Address, false, now, history.Sample{Status: history.SampleOffline})

	// The record's state is the source of truth; archiving is best-effort
	// and must not fail or delay the check-out.
	go s.archiveClosed(closed)

	s.logger.Info("employee checked out",
		zap.String("employee_id", employeeID),
		zap.Float64("total_hours", *closed.TotalHours),
	)

	return CheckOutResponse{
		Record:     closed.ToResponse(),
		Status:     string(StatusCheckedOut),
		TotalHours: *closed.TotalHours,
	}, nil
}

func (s *service) Status(ctx context.Context, employeeID string) (StatusResponse, error) {
	id, err := uuid.Parse(employeeID)
	if err != nil {
		return StatusResponse{}, attendanceerrors.ErrInvalidEmployeeID
	}

	today := dayKey(s.now(), s.tz)
	var resp StatusResponse

	if rec, ok := s.store.ForEmployee(id, today); ok {
		r := rec.ToResponse()
		resp.Record = &r
		resp.IsCheckedIn = rec.Open()
		resp.HasReachedOffice = rec.Status == StatusReachedOffice
	} else if archived, err := s.archive.FindLatestByEmployeeAndDate(ctx, employeeID, today); err == nil && archived != nil {
		r := archived.ToResponse()
		resp.Record = &r
	}

	latest, err := s.sink.Latest(ctx, employeeID)
	if err != nil {
		s.logger.Warn("latest location lookup failed",
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
	} else {
		resp.LatestLocation = latest
	}

	return resp, nil
}

func (s *service) History(ctx context.Context, employeeID string, from, to string, limit int) ([]RecordResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, attendanceerrors.ErrInvalidEmployeeID
	}
	if limit <= 0 {
		limit = historyLimit
	}

	rows, err := s.archive.FindAllByEmployee(ctx, employeeID, from, to, limit)
	if err != nil {
		return nil, mapArchiveError(err)
	}

	res := make([]RecordResponse, len(rows))
	for i, r := range rows {
		res[i] = r.ToResponse()
	}
	return res, nil
}

func (s *service) parseSubject(employeeID string, lat, lng float64) (uuid.UUID, geo.Point, error) {
	id, err := uuid.Parse(employeeID)
	if err != nil {
		return uuid.Nil, geo.Point{}, attendanceerrors.ErrInvalidEmployeeID
	}
	point := geo.Point{Latitude: lat, Longitude: lng}
	if !point.Valid() {
		return uuid.Nil, geo.Point{}, attendanceerrors.ErrInvalidCoordinates
	}
	return id, point, nil
}

func (s *service) newEvent(
	eventType string,
	id uuid.UUID,
	point geo.Point,
	address string,
	inOffice bool,
	distance float64,
	now time.Time,
) events.StatusChangedEvent {
	return events.StatusChangedEvent{
		Type:               eventType,
		EmployeeID:         id.String(),
		Latitude:           point.Latitude,
		Longitude:          point.Longitude,
		Address:            orUnknown(address),
		IsInOffice:         inOffice,
		DistanceFromOffice: math.Round(distance),
		Timestamp:          now,
	}
}

func (s *service) appendSample(
	id uuid.UUID,
	point geo.Point,
	address string,
	inOffice bool,
	now time.Time,
	extra history.Sample,
) {
	status := extra.Status
	if status == "" {
		status = history.SampleActive
		if inOffice {
			status = history.SampleReached
		}
	}
	s.sink.Append(history.Sample{
		ID:           uuid.New(),
		EmployeeID:   id,
		Location:     point,
		Address:      orUnknown(address),
		Accuracy:     extra.Accuracy,
		Speed:        extra.Speed,
		Heading:      extra.Heading,
		BatteryLevel: extra.BatteryLevel,
		IsInOffice:   inOffice,
		Status:       status,
		Timestamp:    now,
	})
}

func (s *service) archiveClosed(rec Record) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.archive.Create(ctx, &rec); err != nil {
		s.logger.Error("archive closed record failed",
			zap.String("record_id", rec.ID.String()),
			zap.String("employee_id", rec.EmployeeID.String()),
			zap.Error(err),
		)
	}
}
