package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/curasoft/hospital_billing_app/internal/core/ports/services"
	"github.com/curasoft/hospital_billing_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// postingHandler handles HTTP requests for document posting.
type postingHandler struct {
	postingService portssvc.LedgerPosterSvcFacade
}

// newPostingHandler creates a new postingHandler.
func newPostingHandler(postingService portssvc.LedgerPosterSvcFacade) *postingHandler {
	return &postingHandler{
		postingService: postingService,
	}
}

// postInvoice godoc
// @Summary Post a patient invoice to the general ledger
// @Description Posts Dr AR / Cr revenue and GST payables for the invoice, plus the patient AR entry. Idempotent on the invoice ID.
// @Tags posting
// @Produce  json
// @Param   invoiceID path string true "Invoice ID"
// @Success 200 {object} dto.PostingResponse
// @Failure 400 {object} map[string]string "Invalid invoice"
// @Failure 403 {object} map[string]string "Missing post_documents permission"
// @Failure 404 {object} map[string]string "Invoice not found"
// @Router /invoices/{invoiceID}/post [post]
func (h *postingHandler) postInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	invoiceID := c.Param("invoiceID")

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.postingService.PostInvoice(c.Request.Context(), invoiceID, actor)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to post invoice")
		return
	}

	logger.Info("Invoice posted", slog.String("invoice_id", invoiceID), slog.String("gl_transaction_id", resp.GLTransactionID))
	c.JSON(http.StatusOK, resp)
}

// postPurchaseInvoice godoc
// @Summary Post a supplier invoice to the general ledger
// @Description Posts Dr inventory and GST input / Cr AP for the invoice, plus the supplier AP entry. Idempotent on the invoice ID.
// @Tags posting
// @Produce  json
// @Param   invoiceID path string true "Purchase invoice ID"
// @Success 200 {object} dto.PostingResponse
// @Failure 403 {object} map[string]string "Missing post_documents permission"
// @Failure 404 {object} map[string]string "Purchase invoice not found"
// @Router /purchase-invoices/{invoiceID}/post [post]
func (h *postingHandler) postPurchaseInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	invoiceID := c.Param("invoiceID")

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.postingService.PostPurchaseInvoice(c.Request.Context(), invoiceID, actor)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to post purchase invoice")
		return
	}

	logger.Info("Purchase invoice posted", slog.String("invoice_id", invoiceID), slog.String("gl_transaction_id", resp.GLTransactionID))
	c.JSON(http.StatusOK, resp)
}

// getTransaction godoc
// @Summary Get a GL transaction with its entries
// @Tags posting
// @Produce  json
// @Param   transactionID path string true "GL transaction ID"
// @Success 200 {object} dto.GLTransactionResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Router /gl/transactions/{transactionID} [get]
func (h *postingHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	resp, err := h.postingService.GetTransaction(c.Request.Context(), transactionID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve GL transaction")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// registerPostingRoutes registers document posting routes
func registerPostingRoutes(group *gin.RouterGroup, postingService portssvc.LedgerPosterSvcFacade) {
	h := newPostingHandler(postingService)

	group.POST("/invoices/:invoiceID/post", h.postInvoice)
	group.POST("/purchase-invoices/:invoiceID/post", h.postPurchaseInvoice)
	group.GET("/gl/transactions/:transactionID", h.getTransaction)
}
