package handler

import (
	"errors"
	"net/http"

	"github.com/slamora/lupanes/internal/apierror"
	"github.com/slamora/lupanes/internal/dto"
	"github.com/slamora/lupanes/internal/infra"
	"github.com/slamora/lupanes/internal/repository"
	"github.com/slamora/lupanes/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// DashboardHandler composes the customer's home screen: ledger balance,
// current-month consumption and the projected balance. A ledger outage
// degrades the balance to "N/A" with a warning flag — the page never 500s
// because the spreadsheet is down.
type DashboardHandler struct {
	usuarios  repository.UsuarioRepository
	balance   service.BalanceService
	albaranes service.AlbaranService
}

func NewDashboardHandler(
	usuarios repository.UsuarioRepository,
	balance service.BalanceService,
	albaranes service.AlbaranService,
) *DashboardHandler {
	return &DashboardHandler{usuarios: usuarios, balance: balance, albaranes: albaranes}
}

// Get godoc
// @Summary Panel de la nevera: saldo, consumo y saldo proyectado
// @Tags dashboard
// @Produce json
// @Success 200 {object} dto.DashboardResponse
// @Router /v1/dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	userID, ok := claimsUserID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	user, err := h.usuarios.FindByID(ctx, userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Usuario no encontrado"))
		return
	}

	consumo, err := h.albaranes.CurrentMonthConsumption(ctx, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al calcular el consumo"))
		return
	}

	resp := dto.DashboardResponse{
		Balance: service.BalanceNotFound,
		Consumo: consumo,
	}

	raw, err := h.balance.SearchBalance(ctx, user.Username)
	if err != nil {
		// Any ledger failure degrades the balance, it never fails the page.
		// The log keeps the distinction between an exhausted retry budget
		// and a permanent error such as bad credentials.
		var exhausted *infra.RetryExhaustedError
		if errors.As(err, &exhausted) {
			log.Warn().Err(err).Int("attempts", exhausted.Attempts).
				Str("nevera", user.Username).Msg("ledger unreachable, balance degraded")
		} else {
			log.Error().Err(err).Str("nevera", user.Username).
				Msg("ledger rejected the request, balance degraded")
		}
		resp.BalanceWarning = true
		c.JSON(http.StatusOK, resp)
		return
	}

	resp.Balance = raw
	if projected, err := h.balance.ProjectedBalance(ctx, user); err == nil {
		resp.ProjectedBalance = projected
	}

	c.JSON(http.StatusOK, resp)
}
