package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/finkit/gl_ledger_app/internal/core/ports/services"
	"github.com/finkit/gl_ledger_app/internal/dto"
	"github.com/finkit/gl_ledger_app/internal/middleware"
)

// journalHandler handles HTTP requests for journal entries.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

func newJournalHandler(journalService portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{journalService: journalService}
}

func registerJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	h := newJournalHandler(journalService)
	entries := rg.Group("/journal-entries")
	{
		entries.POST("", h.createEntry)
		entries.GET("", h.listEntries)
		entries.GET("/:entryID", h.getEntry)
		entries.POST("/:entryID/post", h.postEntry)
		entries.POST("/:entryID/reverse", h.reverseEntry)
	}
}

func (h *journalHandler) createEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}

	var req dto.CreateJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind create entry request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request format: " + err.Error()})
		return
	}
	if token := c.GetHeader("Idempotency-Key"); token != "" {
		req.IdempotencyToken = token
	}

	resp, err := h.journalService.CreateJournalEntry(c.Request.Context(), principal, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *journalHandler) postEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}

	var req dto.PostJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind post entry request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request format: " + err.Error()})
		return
	}
	req.EntryID = c.Param("entryID")
	if token := c.GetHeader("Idempotency-Key"); token != "" {
		req.IdempotencyToken = token
	}

	resp, err := h.journalService.PostJournalEntry(c.Request.Context(), principal, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *journalHandler) reverseEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}

	var req dto.ReverseJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind reverse entry request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request format: " + err.Error()})
		return
	}
	req.EntryID = c.Param("entryID")
	if token := c.GetHeader("Idempotency-Key"); token != "" {
		req.IdempotencyToken = token
	}

	resp, err := h.journalService.ReverseJournalEntry(c.Request.Context(), principal, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *journalHandler) getEntry(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}

	query := dto.GetJournalEntryQuery{EntryID: c.Param("entryID")}
	resp, err := h.journalService.GetJournalEntry(c.Request.Context(), principal, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *journalHandler) listEntries(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}

	// Lookup by business key shares the listing route.
	if docStr := c.Query("documentNumber"); docStr != "" {
		number, err := strconv.ParseInt(docStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid documentNumber"})
			return
		}
		fiscalYear, _ := strconv.Atoi(c.Query("fiscalYear"))
		query := dto.GetJournalEntryQuery{
			DocumentNumber: &number,
			CompanyCode:    c.Query("companyCode"),
			FiscalYear:     fiscalYear,
		}
		resp, err := h.journalService.GetJournalEntry(c.Request.Context(), principal, query)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	var params dto.ListJournalEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.journalService.ListJournalEntries(c.Request.Context(), principal, params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
