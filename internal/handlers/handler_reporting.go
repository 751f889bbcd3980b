package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/finkit/gl_ledger_app/internal/core/ports/services"
	"github.com/finkit/gl_ledger_app/internal/dto"
)

type reportingHandler struct {
	reportingService portssvc.ReportingSvcFacade
}

func newReportingHandler(reportingService portssvc.ReportingSvcFacade) *reportingHandler {
	return &reportingHandler{reportingService: reportingService}
}

func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingSvcFacade) {
	h := newReportingHandler(reportingService)
	rg.GET("/reports/trial-balance", h.trialBalance)
	rg.GET("/companies/:companyCode/accounts/:accountCode/balance", h.accountBalance)
}

func (h *reportingHandler) trialBalance(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}

	var params dto.TrialBalanceParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.reportingService.TrialBalance(c.Request.Context(), principal, params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *reportingHandler) accountBalance(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}

	var params struct {
		FiscalYear int `form:"fiscalYear" binding:"required"`
	}
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.reportingService.AccountBalance(c.Request.Context(), principal,
		c.Param("companyCode"), params.FiscalYear, c.Param("accountCode"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
