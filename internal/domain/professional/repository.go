package professional

import (
	"context"

	"github.com/BruksfildServices01/pro-scheduler/internal/httperr"
	"github.com/BruksfildServices01/pro-scheduler/internal/models"
)

// ErrNotFound carries the same code as appointment.ErrProfessionalNotFound,
// so errors.Is matches either.
var ErrNotFound = httperr.ErrBusiness("professional_not_found")

type Repository interface {
	CreateProfessional(
		ctx context.Context,
		p *models.Professional,
	) error

	GetProfessional(
		ctx context.Context,
		id uint,
	) (*models.Professional, error)

	ListProfessionals(
		ctx context.Context,
		q ListQuery,
	) ([]models.Professional, error)

	UpdateProfessional(
		ctx context.Context,
		p *models.Professional,
	) error

	// DeleteProfessional removes the professional and detaches it from its
	// appointments, returning how many appointments were detached.
	DeleteProfessional(
		ctx context.Context,
		id uint,
	) (int64, error)
}

type ListQuery struct {
	Search string
	Active *bool
}
