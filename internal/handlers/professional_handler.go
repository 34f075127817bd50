package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/pro-scheduler/internal/domain/professional"
	"github.com/BruksfildServices01/pro-scheduler/internal/httperr"
	"github.com/BruksfildServices01/pro-scheduler/internal/httpresp"
	ucProfessional "github.com/BruksfildServices01/pro-scheduler/internal/usecase/professional"
)

type ProfessionalHandler struct {
	svc *ucProfessional.Service
	log *zap.Logger
}

func NewProfessionalHandler(svc *ucProfessional.Service, log *zap.Logger) *ProfessionalHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfessionalHandler{svc: svc, log: log}
}

type CreateProfessionalRequest struct {
	Name     string `json:"name" binding:"required"`
	IsActive *bool  `json:"is_active"`
}

type UpdateProfessionalRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
}

func (h *ProfessionalHandler) Create(c *gin.Context) {
	var req CreateProfessionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	p, err := h.svc.Create(c.Request.Context(), ucProfessional.CreateInput{
		ActorID:  actorFrom(c).UserID,
		Name:     req.Name,
		IsActive: req.IsActive,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.Created(c, p)
}

// List accepts ?search= and ?active=true|false.
func (h *ProfessionalHandler) List(c *gin.Context) {
	q := professional.ListQuery{Search: c.Query("search")}

	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			httperr.BadRequest(c, "invalid_active", "Filtro inválido.")
			return
		}
		q.Active = &active
	}

	out, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.List(c, out)
}

func (h *ProfessionalHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateProfessionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	p, err := h.svc.Update(c.Request.Context(), ucProfessional.UpdateInput{
		ActorID:  actorFrom(c).UserID,
		ID:       id,
		Name:     req.Name,
		IsActive: req.IsActive,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.OK(c, p)
}

func (h *ProfessionalHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), actorFrom(c).UserID, id); err != nil {
		writeError(c, h.log, err)
		return
	}

	c.Status(204)
}
