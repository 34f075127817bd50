package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/pro-scheduler/internal/domain/professional"
	"github.com/BruksfildServices01/pro-scheduler/internal/models"
)

type ProfessionalGormRepository struct {
	db *gorm.DB
}

func NewProfessionalGormRepository(db *gorm.DB) *ProfessionalGormRepository {
	return &ProfessionalGormRepository{db: db}
}

func (r *ProfessionalGormRepository) CreateProfessional(
	ctx context.Context,
	p *models.Professional,
) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProfessionalGormRepository) GetProfessional(
	ctx context.Context,
	id uint,
) (*models.Professional, error) {

	var p models.Professional
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, professional.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProfessionalGormRepository) ListProfessionals(
	ctx context.Context,
	q professional.ListQuery,
) ([]models.Professional, error) {

	query := r.db.WithContext(ctx)

	if search := strings.TrimSpace(strings.ToLower(q.Search)); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+search+"%")
	}
	if q.Active != nil {
		query = query.Where("is_active = ?", *q.Active)
	}

	var out []models.Professional
	if err := query.Order("name ASC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateProfessional writes is_active explicitly; a plain Updates with a
// struct would skip the false value.
func (r *ProfessionalGormRepository) UpdateProfessional(
	ctx context.Context,
	p *models.Professional,
) error {

	res := r.db.WithContext(ctx).
		Model(&models.Professional{ID: p.ID}).
		Select("name", "is_active", "updated_at").
		Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return professional.ErrNotFound
	}
	return nil
}

func (r *ProfessionalGormRepository) DeleteProfessional(
	ctx context.Context,
	id uint,
) (int64, error) {

	var detached int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Appointment{}).
			Where("professional_id = ?", id).
			Update("professional_id", nil)
		if res.Error != nil {
			return res.Error
		}
		detached = res.RowsAffected

		del := tx.Delete(&models.Professional{}, id)
		if del.Error != nil {
			return del.Error
		}
		if del.RowsAffected == 0 {
			return professional.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return detached, nil
}

var _ professional.Repository = (*ProfessionalGormRepository)(nil)
