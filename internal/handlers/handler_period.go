package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/finkit/gl_ledger_app/internal/core/domain"
	portssvc "github.com/finkit/gl_ledger_app/internal/core/ports/services"
	"github.com/finkit/gl_ledger_app/internal/dto"
	"github.com/finkit/gl_ledger_app/internal/middleware"
)

type periodHandler struct {
	periodService portssvc.PeriodSvcFacade
}

func newPeriodHandler(periodService portssvc.PeriodSvcFacade) *periodHandler {
	return &periodHandler{periodService: periodService}
}

func registerPeriodRoutes(rg *gin.RouterGroup, periodService portssvc.PeriodSvcFacade) {
	h := newPeriodHandler(periodService)
	periods := rg.Group("/companies/:companyCode/fiscal-years/:fiscalYear/periods")
	{
		periods.GET("", h.listPeriods)
		periods.PUT("/:period", h.setPeriodStatus)
	}
}

func (h *periodHandler) setPeriodStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}

	fiscalYear, err := strconv.Atoi(c.Param("fiscalYear"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid fiscal year"})
		return
	}
	period, err := strconv.Atoi(c.Param("period"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid period"})
		return
	}

	var req dto.UpdatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind period status request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request format: " + err.Error()})
		return
	}

	fp, err := h.periodService.SetPeriodStatus(c.Request.Context(), principal,
		c.Param("companyCode"), fiscalYear, period, domain.PeriodStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPeriodResponse(*fp))
}

func (h *periodHandler) listPeriods(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}

	fiscalYear, err := strconv.Atoi(c.Param("fiscalYear"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid fiscal year"})
		return
	}

	periods, err := h.periodService.ListPeriods(c.Request.Context(), principal,
		c.Param("companyCode"), fiscalYear)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.ListPeriodsResponse{Periods: make([]dto.PeriodResponse, len(periods))}
	for i, p := range periods {
		resp.Periods[i] = dto.ToPeriodResponse(p)
	}
	c.JSON(http.StatusOK, resp)
}
