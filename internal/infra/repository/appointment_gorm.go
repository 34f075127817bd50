package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/pro-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/pro-scheduler/internal/httperr"
	"github.com/BruksfildServices01/pro-scheduler/internal/models"
)

var activeStatuses = []string{
	string(domain.StatusPending),
	string(domain.StatusConfirmed),
}

type AppointmentGormRepository struct {
	db        *gorm.DB
	txOptions *sql.TxOptions
}

// NewAppointmentGormRepository runs Atomic blocks at the given isolation
// level; sql.LevelDefault leaves the driver default in place.
func NewAppointmentGormRepository(
	db *gorm.DB,
	isolation sql.IsolationLevel,
) *AppointmentGormRepository {
	r := &AppointmentGormRepository{db: db}
	if isolation != sql.LevelDefault {
		r.txOptions = &sql.TxOptions{Isolation: isolation}
	}
	return r
}

// --------------------------------------------------
// Transaction
// --------------------------------------------------

func (r *AppointmentGormRepository) Atomic(
	ctx context.Context,
	fn func(tx domain.Tx) error,
) error {

	var opts []*sql.TxOptions
	if r.txOptions != nil {
		opts = append(opts, r.txOptions)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&appointmentGormTx{db: tx})
	}, opts...)
}

// --------------------------------------------------
// Appointment (read)
// --------------------------------------------------

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Professional").
		First(&ap, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAppointmentNotFound
		}
		return nil, err
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) ListAppointments(
	ctx context.Context,
	q domain.ListQuery,
) ([]models.Appointment, error) {

	query := r.db.WithContext(ctx).Preload("Professional")

	if q.UserID != nil {
		query = query.Where("user_id = ?", *q.UserID)
	}
	if q.ProfessionalID != nil {
		query = query.Where("professional_id = ?", *q.ProfessionalID)
	}
	if q.Status != nil {
		query = query.Where("status = ?", string(*q.Status))
	}
	if q.From != nil {
		query = query.Where("start_time >= ?", *q.From)
	}
	if q.To != nil {
		query = query.Where("start_time < ?", *q.To)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}

	var apps []models.Appointment
	if err := query.
		Order("start_time ASC").
		Order("id ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}

	return apps, nil
}

// --------------------------------------------------
// Availability (read)
// --------------------------------------------------

func (r *AppointmentGormRepository) CountActiveProfessionals(
	ctx context.Context,
) (int, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Professional{}).
		Where("is_active = ?", true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *AppointmentGormRepository) ListActiveOverlapping(
	ctx context.Context,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {
	return findActiveOverlapping(r.db.WithContext(ctx), start, end, nil, 0)
}

// --------------------------------------------------
// Transaction scope
// --------------------------------------------------

type appointmentGormTx struct {
	db *gorm.DB
}

// LockActiveProfessionals cannot lock through COUNT: PostgreSQL rejects
// FOR UPDATE with aggregates, so the ids are selected and counted here.
func (t *appointmentGormTx) LockActiveProfessionals(
	ctx context.Context,
) (int, error) {

	var ids []uint
	if err := t.db.WithContext(ctx).
		Model(&models.Professional{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("is_active = ?", true).
		Order("id ASC").
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (t *appointmentGormTx) LockProfessional(
	ctx context.Context,
	id uint,
) (*models.Professional, error) {

	var p models.Professional
	if err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProfessionalNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (t *appointmentGormTx) LockAppointment(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&ap, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAppointmentNotFound
		}
		return nil, err
	}
	return &ap, nil
}

func (t *appointmentGormTx) ListActiveOverlapping(
	ctx context.Context,
	start time.Time,
	end time.Time,
	professionalID *uint,
	excludeID uint,
) ([]models.Appointment, error) {

	db := t.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	return findActiveOverlapping(db, start, end, professionalID, excludeID)
}

func (t *appointmentGormTx) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return mapWriteError(t.db.WithContext(ctx).Omit(clause.Associations).Create(ap).Error)
}

func (t *appointmentGormTx) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return mapWriteError(t.db.WithContext(ctx).Omit(clause.Associations).Save(ap).Error)
}

// --------------------------------------------------
// Helpers
// --------------------------------------------------

func findActiveOverlapping(
	db *gorm.DB,
	start time.Time,
	end time.Time,
	professionalID *uint,
	excludeID uint,
) ([]models.Appointment, error) {

	q := db.Where(
		"status IN ? AND start_time < ? AND end_time > ?",
		activeStatuses,
		end,
		start,
	)
	if professionalID != nil {
		q = q.Where("professional_id = ?", *professionalID)
	}
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var apps []models.Appointment
	if err := q.Order("start_time ASC").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// mapWriteError turns a violation of a database-level no-overlap constraint,
// when one is installed, into the same error the admission check returns.
func mapWriteError(err error) error {
	if httperr.IsExclusionConflict(err) {
		return domain.ErrProfessionalUnavailable
	}
	return err
}

// Compile-time check
var (
	_ domain.Repository = (*AppointmentGormRepository)(nil)
	_ domain.Tx         = (*appointmentGormTx)(nil)
)
