// Package memory is an in-process implementation of the appointment and
// professional repositories. Atomic blocks are fully serialized and
// all-or-nothing: they run against a copy of the state, which becomes the
// live state only when the block succeeds.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domain "github.com/BruksfildServices01/pro-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/pro-scheduler/internal/domain/professional"
	"github.com/BruksfildServices01/pro-scheduler/internal/models"
)

type state struct {
	appointments       map[uint]models.Appointment
	professionals      map[uint]models.Professional
	nextAppointmentID  uint
	nextProfessionalID uint
}

func (s *state) clone() *state {
	c := &state{
		appointments:       make(map[uint]models.Appointment, len(s.appointments)),
		professionals:      make(map[uint]models.Professional, len(s.professionals)),
		nextAppointmentID:  s.nextAppointmentID,
		nextProfessionalID: s.nextProfessionalID,
	}
	for id, ap := range s.appointments {
		c.appointments[id] = cloneAppointment(ap)
	}
	for id, p := range s.professionals {
		c.professionals[id] = p
	}
	return c
}

type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{
		state: &state{
			appointments:  map[uint]models.Appointment{},
			professionals: map[uint]models.Professional{},
		},
		now: time.Now,
	}
}

// --------------------------------------------------
// Transaction
// --------------------------------------------------

func (s *Store) Atomic(ctx context.Context, fn func(tx domain.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &storeTx{state: s.state.clone(), now: s.now}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.state = tx.state
	return nil
}

// --------------------------------------------------
// Appointment (read)
// --------------------------------------------------

func (s *Store) GetAppointment(_ context.Context, id uint) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ap, ok := s.state.appointments[id]
	if !ok {
		return nil, domain.ErrAppointmentNotFound
	}
	out := s.state.withProfessional(ap)
	return &out, nil
}

func (s *Store) ListAppointments(_ context.Context, q domain.ListQuery) ([]models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Appointment
	for _, ap := range s.state.appointments {
		if q.UserID != nil && ap.UserID != *q.UserID {
			continue
		}
		if q.ProfessionalID != nil && (ap.ProfessionalID == nil || *ap.ProfessionalID != *q.ProfessionalID) {
			continue
		}
		if q.Status != nil && ap.Status != string(*q.Status) {
			continue
		}
		if q.From != nil && ap.StartTime.Before(*q.From) {
			continue
		}
		if q.To != nil && !ap.StartTime.Before(*q.To) {
			continue
		}
		out = append(out, s.state.withProfessional(ap))
	}
	sortByStart(out)

	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return []models.Appointment{}, nil
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) CountActiveProfessionals(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.countActiveProfessionals(), nil
}

func (s *Store) ListActiveOverlapping(_ context.Context, start, end time.Time) ([]models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.activeOverlapping(start, end, nil, 0), nil
}

// Seed stores ap without running any admission check. It exists to load
// fixtures, including states admission would refuse.
func (s *Store) Seed(ctx context.Context, ap *models.Appointment) error {
	return s.Atomic(ctx, func(tx domain.Tx) error {
		return tx.CreateAppointment(ctx, ap)
	})
}

// --------------------------------------------------
// Professional
// --------------------------------------------------

func (s *Store) CreateProfessional(_ context.Context, p *models.Professional) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.nextProfessionalID++
	p.ID = s.state.nextProfessionalID
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	s.state.professionals[p.ID] = *p
	return nil
}

func (s *Store) GetProfessional(_ context.Context, id uint) (*models.Professional, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.state.professionals[id]
	if !ok {
		return nil, professional.ErrNotFound
	}
	return &p, nil
}

func (s *Store) ListProfessionals(_ context.Context, q professional.ListQuery) ([]models.Professional, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	search := strings.TrimSpace(strings.ToLower(q.Search))

	var out []models.Professional
	for _, p := range s.state.professionals {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if q.Active != nil && p.IsActive != *q.Active {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateProfessional(_ context.Context, p *models.Professional) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.state.professionals[p.ID]
	if !ok {
		return professional.ErrNotFound
	}
	cur.Name = p.Name
	cur.IsActive = p.IsActive
	cur.UpdatedAt = s.now()
	s.state.professionals[p.ID] = cur
	*p = cur
	return nil
}

func (s *Store) DeleteProfessional(_ context.Context, id uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.professionals[id]; !ok {
		return 0, professional.ErrNotFound
	}

	var detached int64
	for apID, ap := range s.state.appointments {
		if ap.ProfessionalID != nil && *ap.ProfessionalID == id {
			ap.ProfessionalID = nil
			s.state.appointments[apID] = ap
			detached++
		}
	}
	delete(s.state.professionals, id)
	return detached, nil
}

// --------------------------------------------------
// Transaction scope
// --------------------------------------------------

type storeTx struct {
	state *state
	now   func() time.Time
}

func (t *storeTx) LockActiveProfessionals(context.Context) (int, error) {
	return t.state.countActiveProfessionals(), nil
}

func (t *storeTx) LockProfessional(_ context.Context, id uint) (*models.Professional, error) {
	p, ok := t.state.professionals[id]
	if !ok {
		return nil, domain.ErrProfessionalNotFound
	}
	return &p, nil
}

func (t *storeTx) LockAppointment(_ context.Context, id uint) (*models.Appointment, error) {
	ap, ok := t.state.appointments[id]
	if !ok {
		return nil, domain.ErrAppointmentNotFound
	}
	out := cloneAppointment(ap)
	return &out, nil
}

func (t *storeTx) ListActiveOverlapping(
	_ context.Context,
	start, end time.Time,
	professionalID *uint,
	excludeID uint,
) ([]models.Appointment, error) {
	return t.state.activeOverlapping(start, end, professionalID, excludeID), nil
}

func (t *storeTx) CreateAppointment(_ context.Context, ap *models.Appointment) error {
	t.state.nextAppointmentID++
	ap.ID = t.state.nextAppointmentID
	now := t.now()
	ap.CreatedAt, ap.UpdatedAt = now, now
	ap.Professional = nil
	t.state.appointments[ap.ID] = cloneAppointment(*ap)
	return nil
}

func (t *storeTx) UpdateAppointment(_ context.Context, ap *models.Appointment) error {
	if _, ok := t.state.appointments[ap.ID]; !ok {
		return domain.ErrAppointmentNotFound
	}
	ap.UpdatedAt = t.now()
	ap.Professional = nil
	t.state.appointments[ap.ID] = cloneAppointment(*ap)
	return nil
}

// --------------------------------------------------
// Helpers
// --------------------------------------------------

func (s *state) countActiveProfessionals() int {
	n := 0
	for _, p := range s.professionals {
		if p.IsActive {
			n++
		}
	}
	return n
}

func (s *state) activeOverlapping(start, end time.Time, professionalID *uint, excludeID uint) []models.Appointment {
	var out []models.Appointment
	for _, ap := range s.appointments {
		if ap.ID == excludeID {
			continue
		}
		if ap.Status != string(domain.StatusPending) && ap.Status != string(domain.StatusConfirmed) {
			continue
		}
		if professionalID != nil && (ap.ProfessionalID == nil || *ap.ProfessionalID != *professionalID) {
			continue
		}
		if ap.StartTime.Before(end) && ap.EndTime.After(start) {
			out = append(out, cloneAppointment(ap))
		}
	}
	sortByStart(out)
	return out
}

func (s *state) withProfessional(ap models.Appointment) models.Appointment {
	out := cloneAppointment(ap)
	if ap.ProfessionalID != nil {
		if p, ok := s.professionals[*ap.ProfessionalID]; ok {
			out.Professional = &p
		}
	}
	return out
}

func cloneAppointment(ap models.Appointment) models.Appointment {
	if ap.ProfessionalID != nil {
		id := *ap.ProfessionalID
		ap.ProfessionalID = &id
	}
	if ap.ConfirmedAt != nil {
		t := *ap.ConfirmedAt
		ap.ConfirmedAt = &t
	}
	if ap.CancelledAt != nil {
		t := *ap.CancelledAt
		ap.CancelledAt = &t
	}
	ap.Professional = nil
	return ap
}

func sortByStart(aps []models.Appointment) {
	sort.Slice(aps, func(i, j int) bool {
		if !aps[i].StartTime.Equal(aps[j].StartTime) {
			return aps[i].StartTime.Before(aps[j].StartTime)
		}
		return aps[i].ID < aps[j].ID
	})
}

var (
	_ domain.Repository       = (*Store)(nil)
	_ domain.Tx               = (*storeTx)(nil)
	_ professional.Repository = (*Store)(nil)
)
