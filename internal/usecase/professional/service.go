package professional

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/pro-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/pro-scheduler/internal/domain/professional"
	"github.com/BruksfildServices01/pro-scheduler/internal/httperr"
	"github.com/BruksfildServices01/pro-scheduler/internal/models"
)

var ErrInvalidName = httperr.ErrBusiness("invalid_name")

const maxNameLength = 100

// Service administers the professional pool. Activation changes take
// effect on the next admission; existing appointments are never revised.
type Service struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	log   *zap.Logger
}

func NewService(repo domain.Repository, audit *audit.Dispatcher, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, audit: audit, log: log}
}

type CreateInput struct {
	ActorID  uint
	Name     string
	IsActive *bool
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Professional, error) {
	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}

	p := &models.Professional{Name: name, IsActive: true}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}

	if err := s.repo.CreateProfessional(ctx, p); err != nil {
		return nil, err
	}

	s.log.Info("professional created", zap.Uint("professional_id", p.ID), zap.Bool("active", p.IsActive))
	s.audit.Dispatch(audit.Event{
		UserID:   &in.ActorID,
		Action:   "professional_created",
		Entity:   "professional",
		EntityID: &p.ID,
		Metadata: map[string]any{"name": p.Name, "is_active": p.IsActive},
	})
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Professional, error) {
	return s.repo.GetProfessional(ctx, id)
}

func (s *Service) List(ctx context.Context, q domain.ListQuery) ([]models.Professional, error) {
	q.Search = strings.TrimSpace(q.Search)
	return s.repo.ListProfessionals(ctx, q)
}

type UpdateInput struct {
	ActorID  uint
	ID       uint
	Name     *string
	IsActive *bool
}

func (s *Service) Update(ctx context.Context, in UpdateInput) (*models.Professional, error) {
	p, err := s.repo.GetProfessional(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name, err := normalizeName(*in.Name)
		if err != nil {
			return nil, err
		}
		p.Name = name
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}

	if err := s.repo.UpdateProfessional(ctx, p); err != nil {
		return nil, err
	}

	s.audit.Dispatch(audit.Event{
		UserID:   &in.ActorID,
		Action:   "professional_updated",
		Entity:   "professional",
		EntityID: &p.ID,
		Metadata: map[string]any{"name": p.Name, "is_active": p.IsActive},
	})
	return p, nil
}

// Delete removes the professional. Its appointments stay, unassigned.
func (s *Service) Delete(ctx context.Context, actorID, id uint) error {
	detached, err := s.repo.DeleteProfessional(ctx, id)
	if err != nil {
		return err
	}

	s.log.Info("professional deleted",
		zap.Uint("professional_id", id),
		zap.Int64("detached_appointments", detached),
	)
	s.audit.Dispatch(audit.Event{
		UserID:   &actorID,
		Action:   "professional_deleted",
		Entity:   "professional",
		EntityID: &id,
		Metadata: map[string]any{"detached_appointments": detached},
	})
	return nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}
