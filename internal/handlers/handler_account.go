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

type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

func newAccountHandler(accountService portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{accountService: accountService}
}

func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)
	accounts := rg.Group("/companies/:companyCode/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:accountCode", h.getAccount)
		accounts.PATCH("/:accountCode", h.updateAccount)
	}
}

func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}

	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind create account request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request format: " + err.Error()})
		return
	}
	req.CompanyCode = c.Param("companyCode")

	account, err := h.accountService.CreateAccount(c.Request.Context(), principal, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

func (h *accountHandler) updateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}

	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind update account request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request format: " + err.Error()})
		return
	}

	account, err := h.accountService.UpdateAccount(c.Request.Context(), principal,
		c.Param("companyCode"), c.Param("accountCode"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

func (h *accountHandler) getAccount(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}

	account, err := h.accountService.GetAccount(c.Request.Context(), principal,
		c.Param("companyCode"), c.Param("accountCode"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

func (h *accountHandler) listAccounts(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.Query("pageSize"))
	var nextToken *string
	if token := c.Query("pageToken"); token != "" {
		nextToken = &token
	}

	accounts, next, err := h.accountService.ListAccounts(c.Request.Context(), principal,
		c.Param("companyCode"), limit, nextToken)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.ListAccountsResponse{
		Accounts:  make([]dto.AccountResponse, len(accounts)),
		NextToken: next,
	}
	for i := range accounts {
		resp.Accounts[i] = dto.ToAccountResponse(&accounts[i])
	}
	c.JSON(http.StatusOK, resp)
}
