package handler

import (
	ledgerapp "github.com/ecsledger/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

// StatsHandler serves the portfolio dashboard figures
type StatsHandler struct {
	BaseHandler
	balances *ledgerapp.BalanceService
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(balances *ledgerapp.BalanceService) *StatsHandler {
	return &StatsHandler{balances: balances}
}

// Get godoc
//
//	@Summary		Portfolio totals
//	@Description	Client and vendor counts, outstanding dues and the net position
//	@Tags			stats
//	@Produce		json
//	@Success		200	{object}	dto.Response{data=ledgerapp.PortfolioStats}
//	@Failure		500	{object}	dto.Response{error=dto.ErrorInfo}
//	@Router			/stats [get]
func (h *StatsHandler) Get(c *gin.Context) {
	stats, err := h.balances.PortfolioStats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}
