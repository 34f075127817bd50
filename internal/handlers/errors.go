package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/pro-scheduler/internal/httperr"
)

type errorMapping struct {
	status  int
	message string
}

var businessErrors = map[string]errorMapping{
	"no_professionals_available": {http.StatusConflict, "Nenhum profissional disponível no horário."},
	"professional_unavailable":   {http.StatusConflict, "Profissional indisponível no horário."},
	"appointment_cancelled":      {http.StatusConflict, "Agendamento cancelado não pode ser alterado."},
	"invalid_state":              {http.StatusConflict, "Transição de status inválida."},
	"invalid_duration":           {http.StatusBadRequest, "Duração deve ser positiva."},
	"invalid_name":               {http.StatusBadRequest, "Nome inválido."},
	"appointment_not_found":      {http.StatusNotFound, "Agendamento não encontrado."},
	"professional_not_found":     {http.StatusNotFound, "Profissional não encontrado."},
	"forbidden":                  {http.StatusForbidden, "Acesso negado."},
}

// writeError maps use case errors to responses. Unknown errors are logged
// and answered with 500 without leaking details.
func writeError(c *gin.Context, log *zap.Logger, err error) {
	if code, ok := httperr.BusinessCode(err); ok {
		if m, known := businessErrors[code]; known {
			httperr.Write(c, m.status, code, m.message)
			return
		}
		httperr.BadRequest(c, code, "Requisição inválida.")
		return
	}

	if httperr.IsTransient(err) {
		log.Warn("transient failure", zap.String("path", c.FullPath()), zap.Error(err))
		c.Header("Retry-After", "1")
		httperr.Unavailable(c, "temporarily_unavailable", "Tente novamente em instantes.")
		return
	}

	log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	_ = c.Error(err)
	httperr.Internal(c, "internal_error", "Erro interno.")
}
