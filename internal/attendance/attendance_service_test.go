package attendance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	attendanceerrors "github.com/anand05ms/Employee-tracker/internal/attendance/errors"
	"github.com/anand05ms/Employee-tracker/internal/events"
	"github.com/anand05ms/Employee-tracker/internal/geo"
	"github.com/anand05ms/Employee-tracker/internal/history"
)

var testOffice = geo.Office{
	Center:       geo.Point{Latitude: 12.9716, Longitude: 77.5946},
	RadiusMeters: 200,
}

// ~1.1 km east of the office center.
var awayPoint = geo.Point{Latitude: 12.9716, Longitude: 77.6046}

type fakeArchive struct {
	createFn     func(ctx context.Context, rec *Record) error
	findAllFn    func(ctx context.Context, employeeID, from, to string, limit int) ([]Record, error)
	findLatestFn func(ctx context.Context, employeeID, date string) (*Record, error)
	findByDateFn func(ctx context.Context, date string) ([]Record, error)
}

func (f *fakeArchive) Create(ctx context.Context, rec *Record) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, rec)
}

func (f *fakeArchive) FindAllByEmployee(ctx context.Context, employeeID, from, to string, limit int) ([]Record, error) {
	if f.findAllFn == nil {
		return nil, nil
	}
	return f.findAllFn(ctx, employeeID, from, to, limit)
}

func (f *fakeArchive) FindLatestByEmployeeAndDate(ctx context.Context, employeeID, date string) (*Record, error) {
	if f.findLatestFn == nil {
		return nil, nil
	}
	return f.findLatestFn(ctx, employeeID, date)
}

func (f *fakeArchive) FindAllByDate(ctx context.Context, date string) ([]Record, error) {
	if f.findByDateFn == nil {
		return nil, nil
	}
	return f.findByDateFn(ctx, date)
}

type fakeSink struct {
	mu      sync.Mutex
	samples []history.Sample
	latest  *history.Sample
}

func (f *fakeSink) Append(sample history.Sample) {
	f.mu.Lock()
	f.samples = append(f.samples, sample)
	f.mu.Unlock()
}

func (f *fakeSink) Latest(ctx context.Context, employeeID string) (*history.Sample, error) {
	return f.latest, nil
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.samples)
}

func (f *fakeSink) last() history.Sample {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.samples[len(f.samples)-1]
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []events.StatusChangedEvent
}

func (f *fakeEmitter) Publish(evt events.StatusChangedEvent) {
	f.mu.Lock()
	f.events = append(f.events, evt)
	f.mu.Unlock()
}

func (f *fakeEmitter) all() []events.StatusChangedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]events.StatusChangedEvent, len(f.events))
	copy(out, f.events)
	return out
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestService(t *testing.T) (Service, *fakeArchive, *fakeSink, *fakeEmitter, *testClock) {
	t.Helper()
	archive := &fakeArchive{}
	sink := &fakeSink{}
	emitter := &fakeEmitter{}
	clock := &testClock{now: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)}
	svc := NewService(NewStore(), archive, sink, emitter, EngineConfig{
		Office:   testOffice,
		Timezone: time.UTC,
		Now:      clock.Now,
	})
	return svc, archive, sink, emitter, clock
}

func ptr(v float64) *float64 { return &v }

func TestService_CheckIn_OutsideGeofence(t *testing.T) {
	svc, _, sink, emitter, _ := newTestService(t)
	employeeID := uuid.New().String()

	resp, err := svc.CheckIn(context.Background(), employeeID, CheckInRequest{
		Latitude:  ptr(awayPoint.Latitude),
		Longitude: ptr(awayPoint.Longitude),
	})
	assert.NoError(t, err)
	assert.Equal(t, string(StatusCheckedIn), resp.Status)
	assert.False(t, resp.IsInOffice)
	assert.False(t, resp.HasReachedOffice)
	assert.InDelta(t, 1083, resp.DistanceFromOffice, 50)
	assert.Equal(t, 2, resp.ETA)
	assert.Nil(t, resp.Record.ReachedOfficeTime)
	assert.Equal(t, "Unknown", resp.Record.CheckInAddress)

	evts := emitter.all()
	assert.Len(t, evts, 1)
	assert.Equal(t, events.TypeCheckedIn, evts[0].Type)
	assert.NotNil(t, evts[0].CheckInTime)

	assert.Equal(t, 1, sink.count())
	assert.Equal(t, history.SampleActive, sink.last().Status)
}

func TestService_CheckIn_InsideGeofence(t *testing.T) {
	svc, _, sink, emitter, _ := newTestService(t)
	employeeID := uuid.New().String()

	resp, err := svc.CheckIn(context.Background(), employeeID, CheckInRequest{
		Latitude:  ptr(testOffice.Center.Latitude),
		Longitude: ptr(testOffice.Center.Longitude),
		Address:   "HQ",
	})
	assert.NoError(t, err)
	assert.Equal(t, string(StatusReachedOffice), resp.Status)
	assert.True(t, resp.IsInOffice)
	assert.True(t, resp.HasReachedOffice)
	assert.NotNil(t, resp.Record.ReachedOfficeTime)

	evts := emitter.all()
	assert.Len(t, evts, 1)
	assert.Equal(t, events.TypeReachedOffice, evts[0].Type)
	assert.Equal(t, history.SampleReached, sink.last().Status)
}

func TestService_CheckIn_Duplicate(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	employeeID := uuid.New().String()
	req := CheckInRequest{
		Latitude:  ptr(awayPoint.Latitude),
		Longitude: ptr(awayPoint.Longitude),
	}

	_, err := svc.CheckIn(context.Background(), employeeID, req)
	assert.NoError(t, err)

	_, err = svc.CheckIn(context.Background(), employeeID, req)
	assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyCheckedIn)
}

func TestService_CheckIn_ConcurrentSingleWinner(t *testing.T) {
	svc, _, _, emitter, _ := newTestService(t)
	employeeID := uuid.New().String()
	req := CheckInRequest{
		Latitude:  ptr(awayPoint.Latitude),
		Longitude: ptr(awayPoint.Longitude),
	}

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CheckIn(context.Background(), employeeID, req)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyCheckedIn)
		}
	}
	assert.Equal(t, 1, winners)

	checkedIn := 0
	for _, evt := range emitter.all() {
		if evt.Type == events.TypeCheckedIn {
			checkedIn++
		}
	}
	assert.Equal(t, 1, checkedIn)
}

func TestService_CheckIn_InvalidInput(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	_, err := svc.CheckIn(context.Background(), "not-a-uuid", CheckInRequest{
		Latitude:  ptr(12.9716),
		Longitude: ptr(77.5946),
	})
	assert.ErrorIs(t, err, attendanceerrors.ErrInvalidEmployeeID)

	_, err = svc.CheckIn(context.Background(), uuid.New().String(), CheckInRequest{
		Latitude:  ptr(95.0),
		Longitude: ptr(77.5946),
	})
	assert.ErrorIs(t, err, attendanceerrors.ErrInvalidCoordinates)
}

func TestService_UpdateLocation_TransitionsOnce(t *testing.T) {
	svc, _, _, emitter, clock := newTestService(t)
	employeeID := uuid.New().String()

	_, err := svc.CheckIn(context.Background(), employeeID, CheckInRequest{
		Latitude:  ptr(awayPoint.Latitude),
		Longitude: ptr(awayPoint.Longitude),
	})
	assert.NoError(t, err)

	clock.Advance(10 * time.Minute)
	resp, err := svc.UpdateLocation(context.Background(), employeeID, LocationUpdateRequest{
		Latitude:  ptr(testOffice.Center.Latitude),
		Longitude: ptr(testOffice.Center.Longitude),
	})
	assert.NoError(t, err)
	assert.Equal(t, string(StatusReachedOffice), resp.Status)
	assert.True(t, resp.HasReachedOffice)

	reachedAt := clock.Now()

	// A later update inside the office must not transition again nor
	// move the reached time.
	clock.Advance(5 * time.Minute)
	resp, err = svc.UpdateLocation(context.Background(), employeeID, LocationUpdateRequest{
		Latitude:  ptr(testOffice.Center.Latitude),
		Longitude: ptr(testOffice.Center.Longitude),
	})
	assert.NoError(t, err)
	assert.Equal(t, string(StatusReachedOffice), resp.Status)
	assert.False(t, resp.HasReachedOffice)

	status, err := svc.Status(context.Background(), employeeID)
	assert.NoError(t, err)
	assert.NotNil(t, status.Record.ReachedOfficeTime)
	assert.Equal(t, reachedAt.Format(time.RFC3339), *status.Record.ReachedOfficeTime)

	evts := emitter.all()
	assert.Len(t, evts, 3)
	assert.Equal(t, events.TypeCheckedIn, evts[0].Type)
	assert.Equal(t, events.TypeReachedOffice, evts[1].Type)
	assert.Equal(t, events.TypeLocationUpdate, evts[2].Type)
}

func TestService_UpdateLocation_WithoutOpenRecord(t *testing.T) {
	svc, _, sink, emitter, _ := newTestService(t)
	employeeID := uuid.New().String()

	resp, err := svc.UpdateLocation(context.Background(), employeeID, LocationUpdateRequest{
		Latitude:     ptr(awayPoint.Latitude),
		Longitude:    ptr(awayPoint.Longitude),
		BatteryLevel: ptr(0.8),
	})
	assert.NoError(t, err)
	assert.False(t, resp.HasReachedOffice)
	assert.Empty(t, resp.Status)

	// The sample and event still go out even though no record changed.
	assert.Equal(t, 1, sink.count())
	evts := emitter.all()
	assert.Len(t, evts, 1)
	assert.Equal(t, events.TypeLocationUpdate, evts[0].Type)
}

func TestService_CheckOut(t *testing.T) {
	svc, archive, sink, emitter, clock := newTestService(t)
	employeeID := uuid.New().String()

	archived := make(chan Record, 1)
	archive.createFn = func(ctx context.Context, rec *Record) error {
		archived <- *rec
		return nil
	}

	_, err := svc.CheckIn(context.Background(), employeeID, CheckInRequest{
		Latitude:  ptr(testOffice.Center.Latitude),
		Longitude: ptr(testOffice.Center.Longitude),
	})
	assert.NoError(t, err)

	clock.Advance(8*time.Hour + 30*time.Minute)
	resp, err := svc.CheckOut(context.Background(), employeeID, CheckOutRequest{
		Latitude:  ptr(awayPoint.Latitude),
		Longitude: ptr(awayPoint.Longitude),
	})
	assert.NoError(t, err)
	assert.Equal(t, string(StatusCheckedOut), resp.Status)
	assert.Equal(t, 8.5, resp.TotalHours)
	assert.NotNil(t, resp.Record.CheckOutTime)

	evts := emitter.all()
	last := evts[len(evts)-1]
	assert.Equal(t, events.TypeCheckedOut, last.Type)
	assert.Equal(t, 8.5, *last.TotalHours)

	assert.Equal(t, history.SampleOffline, sink.last().Status)

	select {
	case rec := <-archived:
		assert.Equal(t, StatusCheckedOut, rec.Status)
		assert.Equal(t, 8.5, *rec.TotalHours)
	case <-time.After(time.Second):
		t.Fatal("closed record was not archived")
	}

	// The record is terminal; checking out again is an error.
	_, err = svc.CheckOut(context.Background(), employeeID, CheckOutRequest{
		Latitude:  ptr(awayPoint.Latitude),
		Longitude: ptr(awayPoint.Longitude),
	})
	assert.ErrorIs(t, err, attendanceerrors.ErrNotCheckedIn)
}

func TestService_CheckOut_NotCheckedIn(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	_, err := svc.CheckOut(context.Background(), uuid.New().String(), CheckOutRequest{
		Latitude:  ptr(awayPoint.Latitude),
		Longitude: ptr(awayPoint.Longitude),
	})
	assert.ErrorIs(t, err, attendanceerrors.ErrNotCheckedIn)
}

func TestService_ReCheckInAfterCheckOut(t *testing.T) {
	svc, _, _, _, clock := newTestService(t)
	employeeID := uuid.New().String()
	req := CheckInRequest{
		Latitude:  ptr(awayPoint.Latitude),
		Longitude: ptr(awayPoint.Longitude),
	}

	_, err := svc.CheckIn(context.Background(), employeeID, req)
	assert.NoError(t, err)

	clock.Advance(2 * time.Hour)
	_, err = svc.CheckOut(context.Background(), employeeID, CheckOutRequest{
		Latitude:  ptr(awayPoint.Latitude),
		Longitude: ptr(awayPoint.Longitude),
	})
	assert.NoError(t, err)

	// Leaving and coming back the same day opens a fresh record.
	clock.Advance(time.Hour)
	resp, err := svc.CheckIn(context.Background(), employeeID, req)
	assert.NoError(t, err)
	assert.Equal(t, string(StatusCheckedIn), resp.Status)
	assert.Nil(t, resp.Record.TotalHours)
}

func TestService_Status_FallsBackToArchive(t *testing.T) {
	svc, archive, _, _, clock := newTestService(t)
	employeeID := uuid.New()

	hours := 8.0
	archive.findLatestFn = func(ctx context.Context, id, date string) (*Record, error) {
		assert.Equal(t, employeeID.String(), id)
		assert.Equal(t, clock.Now().Format("2006-01-02"), date)
		return &Record{
			ID:         uuid.New(),
			EmployeeID: employeeID,
			Date:       date,
			Status:     StatusCheckedOut,
			TotalHours: &hours,
		}, nil
	}

	resp, err := svc.Status(context.Background(), employeeID.String())
	assert.NoError(t, err)
	assert.NotNil(t, resp.Record)
	assert.False(t, resp.IsCheckedIn)
	assert.Equal(t, string(StatusCheckedOut), resp.Record.Status)
}

func TestService_DayKeyFixedAtCheckIn(t *testing.T) {
	svc, archive, _, _, clock := newTestService(t)
	employeeID := uuid.New().String()

	archived := make(chan Record, 1)
	archive.createFn = func(ctx context.Context, rec *Record) error {
		archived <- *rec
		return nil
	}

	// Night shift: check in at 22:00, check out past midnight.
	clock.mu.Lock()
	clock.now = time.Date(2025, 6, 2, 22, 0, 0, 0, time.UTC)
	clock.mu.Unlock()

	_, err := svc.CheckIn(context.Background(), employeeID, CheckInRequest{
		Latitude:  ptr(awayPoint.Latitude),
		Longitude: ptr(awayPoint.Longitude),
	})
	assert.NoError(t, err)

	clock.Advance(6 * time.Hour)
	resp, err := svc.CheckOut(context.Background(), employeeID, CheckOutRequest{
		Latitude:  ptr(awayPoint.Latitude),
		Longitude: ptr(awayPoint.Longitude),
	})
	assert.NoError(t, err)
	assert.Equal(t, "2025-06-02", resp.Record.Date)
	assert.Equal(t, 6.0, resp.TotalHours)

	select {
	case rec := <-archived:
		assert.Equal(t, "2025-06-02", rec.Date)
	case <-time.After(time.Second):
		t.Fatal("closed record was not archived")
	}
}
