package handlers

import (
	"net/http"
	"strconv"

	"github.com/curasoft/hospital_billing_app/internal/core/domain"
	portssvc "github.com/curasoft/hospital_billing_app/internal/core/ports/services"
	"github.com/curasoft/hospital_billing_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler serves patient/supplier ledger statements.
type ledgerHandler struct {
	subledgerService portssvc.SubledgerWriterSvc
}

// newLedgerHandler creates a new ledgerHandler.
func newLedgerHandler(subledgerService portssvc.SubledgerWriterSvc) *ledgerHandler {
	return &ledgerHandler{
		subledgerService: subledgerService,
	}
}

func parseCounterpartyType(raw string) (domain.CounterpartyType, bool) {
	switch raw {
	case string(domain.CounterpartyPatient):
		return domain.CounterpartyPatient, true
	case string(domain.CounterpartySupplier):
		return domain.CounterpartySupplier, true
	}
	return "", false
}

// listEntries godoc
// @Summary Get a counterparty ledger statement
// @Description Returns the counterparty's subledger entries newest first with running balances, token-paginated.
// @Tags ledgers
// @Produce  json
// @Param   counterpartyType path string true "patient or supplier"
// @Param   counterpartyID path string true "Counterparty ID"
// @Param   limit query int false "Page size (default 20)"
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListSubledgerResponse
// @Failure 400 {object} map[string]string "Invalid counterparty type or token"
// @Router /ledgers/{counterpartyType}/{counterpartyID} [get]
func (h *ledgerHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	cpType, ok := parseCounterpartyType(c.Param("counterpartyType"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "counterparty type must be patient or supplier"})
		return
	}
	cpID := c.Param("counterpartyID")

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	var nextToken *string
	if token := c.Query("nextToken"); token != "" {
		nextToken = &token
	}

	resp, err := h.subledgerService.ListEntries(c.Request.Context(), actor.HospitalID, cpType, cpID, limit, nextToken)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list ledger entries")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getBalance godoc
// @Summary Get a counterparty balance replayed from its entries
// @Description Recomputes the balance as total debits minus total credits over all entries. Used for reconciliation against the stored running balance.
// @Tags ledgers
// @Produce  json
// @Param   counterpartyType path string true "patient or supplier"
// @Param   counterpartyID path string true "Counterparty ID"
// @Success 200 {object} map[string]string "Returns the replayed balance"
// @Router /ledgers/{counterpartyType}/{counterpartyID}/balance [get]
func (h *ledgerHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	cpType, ok := parseCounterpartyType(c.Param("counterpartyType"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "counterparty type must be patient or supplier"})
		return
	}
	cpID := c.Param("counterpartyID")

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	balance, err := h.subledgerService.ReplayBalance(c.Request.Context(), actor.HospitalID, cpType, cpID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to replay balance")
		return
	}

	c.JSON(http.StatusOK, gin.H{"counterpartyID": cpID, "balance": balance})
}

// registerLedgerRoutes registers subledger statement routes
func registerLedgerRoutes(group *gin.RouterGroup, subledgerService portssvc.SubledgerWriterSvc) {
	h := newLedgerHandler(subledgerService)

	ledgers := group.Group("/ledgers")
	ledgers.GET("/:counterpartyType/:counterpartyID", h.listEntries)
	ledgers.GET("/:counterpartyType/:counterpartyID/balance", h.getBalance)
}
