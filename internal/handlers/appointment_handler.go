package handlers

import (
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/pro-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/pro-scheduler/internal/dto"
	"github.com/BruksfildServices01/pro-scheduler/internal/httperr"
	"github.com/BruksfildServices01/pro-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/pro-scheduler/internal/middleware"
	"github.com/BruksfildServices01/pro-scheduler/internal/models"
	"github.com/BruksfildServices01/pro-scheduler/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/pro-scheduler/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	propose        *ucAppointment.ProposeAppointment
	updateSchedule *ucAppointment.UpdateAppointmentSchedule
	confirm        *ucAppointment.ConfirmAppointment
	cancel         *ucAppointment.CancelAppointment
	get            *ucAppointment.GetAppointment
	list           *ucAppointment.ListAppointments
	availability   *ucAppointment.GetAvailability
	admission      *ucAppointment.Admission

	loc *time.Location
	log *zap.Logger
}

type AppointmentUseCases struct {
	Propose        *ucAppointment.ProposeAppointment
	UpdateSchedule *ucAppointment.UpdateAppointmentSchedule
	Confirm        *ucAppointment.ConfirmAppointment
	Cancel         *ucAppointment.CancelAppointment
	Get            *ucAppointment.GetAppointment
	List           *ucAppointment.ListAppointments
	Availability   *ucAppointment.GetAvailability
	Admission      *ucAppointment.Admission
}

func NewAppointmentHandler(
	uc AppointmentUseCases,
	loc *time.Location,
	log *zap.Logger,
) *AppointmentHandler {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AppointmentHandler{
		propose:        uc.Propose,
		updateSchedule: uc.UpdateSchedule,
		confirm:        uc.Confirm,
		cancel:         uc.Cancel,
		get:            uc.Get,
		list:           uc.List,
		availability:   uc.Availability,
		admission:      uc.Admission,
		loc:            loc,
		log:            log,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	ProfessionalID  *uint  `json:"professional_id"`
	StartTime       string `json:"start_time" binding:"required"`
	DurationMinutes *int   `json:"duration_minutes"`
}

type UpdateScheduleRequest struct {
	ProfessionalID    *uint   `json:"professional_id"`
	ClearProfessional bool    `json:"clear_professional"`
	StartTime         *string `json:"start_time"`
	DurationMinutes   *int    `json:"duration_minutes"`
}

// ======================================================
// HELPERS
// ======================================================

func actorFrom(c *gin.Context) ucAppointment.Actor {
	return ucAppointment.Actor{
		UserID: c.GetUint(middleware.ContextUserID),
		Admin:  c.GetString(middleware.ContextUserRole) == models.RoleAdmin,
	}
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		httperr.BadRequest(c, "invalid_id", "ID inválido.")
		return 0, false
	}
	return uint(id), true
}

// maxDurationMinutes keeps the minutes-to-Duration conversion from
// overflowing int64 nanoseconds.
const maxDurationMinutes = math.MaxInt64 / int64(time.Minute)

func parseMinutes(m *int) (*time.Duration, error) {
	if m == nil {
		return nil, nil
	}
	if *m <= 0 || int64(*m) > maxDurationMinutes {
		return nil, domain.ErrInvalidDuration
	}
	d := time.Duration(*m) * time.Minute
	return &d, nil
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	start, err := timezone.ParseStart(req.StartTime, h.loc)
	if err != nil {
		httperr.BadRequest(c, "invalid_start_time", "Data ou hora inválida.")
		return
	}

	duration, err := parseMinutes(req.DurationMinutes)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	ap, err := h.propose.Execute(c.Request.Context(), ucAppointment.ProposeAppointmentInput{
		UserID:         actorFrom(c).UserID,
		ProfessionalID: req.ProfessionalID,
		Start:          start,
		Duration:       duration,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.Created(c, dto.FromAppointment(ap))
}

// ======================================================
// GET / LIST
// ======================================================

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ap, err := h.get.Execute(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.OK(c, dto.FromAppointment(ap))
}

// List accepts status, professional_id, user_id (admin only), from, to,
// limit and offset.
func (h *AppointmentHandler) List(c *gin.Context) {
	var q domain.ListQuery

	if raw := c.Query("status"); raw != "" {
		st, err := domain.ParseStatus(raw)
		if err != nil {
			httperr.BadRequest(c, "invalid_status", "Status inválido.")
			return
		}
		q.Status = &st
	}

	for key, dst := range map[string]**uint{
		"professional_id": &q.ProfessionalID,
		"user_id":         &q.UserID,
	} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			httperr.BadRequest(c, "invalid_"+key, "Filtro inválido.")
			return
		}
		id := uint(v)
		*dst = &id
	}

	for key, dst := range map[string]**time.Time{
		"from": &q.From,
		"to":   &q.To,
	} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		t, err := timezone.ParseStart(raw, h.loc)
		if err != nil {
			httperr.BadRequest(c, "invalid_"+key, "Data inválida.")
			return
		}
		*dst = &t
	}

	q.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))
	q.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if q.Offset < 0 {
		q.Offset = 0
	}

	out, err := h.list.Execute(c.Request.Context(), actorFrom(c), q)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.Page(c, out, ucAppointment.PageLimit(q.Limit), q.Offset)
}

// ======================================================
// SCHEDULE
// ======================================================

func (h *AppointmentHandler) UpdateSchedule(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	duration, err := parseMinutes(req.DurationMinutes)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	in := ucAppointment.UpdateAppointmentScheduleInput{
		AppointmentID:     id,
		Actor:             actorFrom(c),
		Duration:          duration,
		ProfessionalID:    req.ProfessionalID,
		ClearProfessional: req.ClearProfessional,
	}
	if req.StartTime != nil {
		start, err := timezone.ParseStart(*req.StartTime, h.loc)
		if err != nil {
			httperr.BadRequest(c, "invalid_start_time", "Data ou hora inválida.")
			return
		}
		in.Start = &start
	}

	ap, err := h.updateSchedule.Execute(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.OK(c, dto.FromAppointment(ap))
}

// ======================================================
// STATUS
// ======================================================

func (h *AppointmentHandler) Confirm(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ap, err := h.confirm.Execute(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.OK(c, dto.FromAppointment(ap))
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ap, err := h.cancel.Execute(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.OK(c, dto.FromAppointment(ap))
}

// ======================================================
// AVAILABILITY
// ======================================================

// Revalidate re-runs admission for an existing appointment. A failed check
// is reported with the regular error mapping.
func (h *AppointmentHandler) Revalidate(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	av, err := h.admission.Revalidate(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.OK(c, dto.FromAvailability(av))
}

func (h *AppointmentHandler) Availability(c *gin.Context) {
	start, err := timezone.ParseStart(c.Query("start"), h.loc)
	if err != nil {
		httperr.BadRequest(c, "invalid_start_time", "Data ou hora inválida.")
		return
	}

	var minutes *int
	if raw := c.Query("duration_minutes"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil {
			httperr.BadRequest(c, "invalid_duration", "Duração inválida.")
			return
		}
		minutes = &m
	}
	duration, err := parseMinutes(minutes)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	av, err := h.availability.Execute(c.Request.Context(), start, duration)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.OK(c, dto.FromAvailability(av))
}
