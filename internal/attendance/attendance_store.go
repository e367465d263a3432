package attendance

import (
	"sync"

	"github.com/google/uuid"

	attendanceerrors "github.com/anand05ms/Employee-tracker/internal/attendance/errors"
)

// Store holds today's records in memory. Every open record owns its own
// mutex so events for different employees never contend; the store-level
// lock covers only index lookup, insert and removal. Closed records stay
// around for the rest of the day so the dashboard can list them, and are
// persisted separately by the archive repository.
type Store struct {
	mu     sync.RWMutex
	open   map[uuid.UUID]*recordEntry
	closed map[string]map[uuid.UUID][]Record // day key -> employee -> closed records
}

type recordEntry struct {
	mu  sync.Mutex
	rec *Record
}

func NewStore() *Store {
	return &Store{
		open:   make(map[uuid.UUID]*recordEntry),
		closed: make(map[string]map[uuid.UUID][]Record),
	}
}

// CreateOpen installs rec as the employee's open record and runs fn while
// the new record's lock is still held, so events emitted from fn are
// ordered before any later event for the same employee. Exactly one of
// two concurrent callers wins; the loser gets ErrAlreadyCheckedIn.
func (s *Store) CreateOpen(rec *Record, fn func()) error {
	s.mu.Lock()
	if existing, ok := s.open[rec.EmployeeID]; ok {
		existing.mu.Lock()
		stillOpen := existing.rec.Open()
		existing.mu.Unlock()
		if stillOpen {
			s.mu.Unlock()
			return attendanceerrors.ErrAlreadyCheckedIn
		}
		// Stale entry whose removal has not landed yet.
		delete(s.open, rec.EmployeeID)
	}

	e := &recordEntry{rec: rec}
	e.mu.Lock()
	s.open[rec.EmployeeID] = e
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
	e.mu.Unlock()
	return nil
}

// WithOpen runs fn on the employee's open record under its exclusive
// lock. It reports whether an open record existed. When fn leaves the
// record checked out, the entry is retired to the closed set.
func (s *Store) WithOpen(employeeID uuid.UUID, fn func(rec *Record) error) (bool, error) {
	s.mu.RLock()
	e := s.open[employeeID]
	s.mu.RUnlock()
	if e == nil {
		return false, nil
	}

	e.mu.Lock()
	if !e.rec.Open() {
		e.mu.Unlock()
		return false, nil
	}
	err := fn(e.rec)
	closed := !e.rec.Open()
	var snapshot Record
	if closed {
		snapshot = *e.rec
	}
	e.mu.Unlock()

	if closed {
		s.retire(employeeID, e, snapshot)
	}
	return true, err
}

func (s *Store) retire(employeeID uuid.UUID, e *recordEntry, snapshot Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open[employeeID] == e {
		delete(s.open, employeeID)
	}
	day := s.closed[snapshot.Date]
	if day == nil {
		day = make(map[uuid.UUID][]Record)
		s.closed[snapshot.Date] = day
	}
	day[employeeID] = append(day[employeeID], snapshot)
}

// OpenRecords returns copies of every open record.
func (s *Store) OpenRecords() []Record {
	s.mu.RLock()
	entries := make([]*recordEntry, 0, len(s.open))
	for _, e := range s.open {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]Record, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if e.rec.Open() {
			out = append(out, *e.rec)
		}
		e.mu.Unlock()
	}
	return out
}

// ClosedForDay returns copies of the records checked out on the given day.
func (s *Store) ClosedForDay(day string) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Record
	for _, recs := range s.closed[day] {
		out = append(out, recs...)
	}
	return out
}

// ForEmployee returns the employee's most recent record for the day:
// the open one if it exists, otherwise the last closed one.
func (s *Store) ForEmployee(employeeID uuid.UUID, day string) (Record, bool) {
	s.mu.RLock()
	e := s.open[employeeID]
	s.mu.RUnlock()

	if e != nil {
		e.mu.Lock()
		open := e.rec.Open()
		rec := *e.rec
		e.mu.Unlock()
		if open {
			return rec, true
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if recs := s.closed[day][employeeID]; len(recs) > 0 {
		return recs[len(recs)-1], true
	}
	return Record{}, false
}

// Purge drops closed records from days other than keepDay. Open records
// are never purged; a record that straddles midnight stays until its
// check-out.
func (s *Store) Purge(keepDay string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for day := range s.closed {
		if day != keepDay {
			delete(s.closed, day)
		}
	}
}
