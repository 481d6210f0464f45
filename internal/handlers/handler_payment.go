package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/curasoft/hospital_billing_app/internal/apperrors"
	portssvc "github.com/curasoft/hospital_billing_app/internal/core/ports/services"
	"github.com/curasoft/hospital_billing_app/internal/dto"
	"github.com/curasoft/hospital_billing_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// paymentPostRetries bounds how often a payment posting is retried after a
// serialization conflict before giving up.
const paymentPostRetries = 3

// paymentHandler handles HTTP requests for payment posting.
type paymentHandler struct {
	paymentService portssvc.PaymentAllocationSvcFacade
}

// newPaymentHandler creates a new paymentHandler.
func newPaymentHandler(paymentService portssvc.PaymentAllocationSvcFacade) *paymentHandler {
	return &paymentHandler{
		paymentService: paymentService,
	}
}

// postPayment godoc
// @Summary Post a patient payment
// @Description Allocates the payment across outstanding line items (services first, then medicines, then packages), posts the GL transaction, and records any residual as an advance. Idempotent on the payment ID.
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   payment body dto.PostPaymentRequest true "Payment"
// @Success 200 {object} dto.PaymentPostingResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 403 {object} map[string]string "Missing post_documents permission"
// @Failure 409 {object} map[string]string "Concurrency conflict"
// @Router /payments [post]
func (h *paymentHandler) postPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.PostPaymentRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for PostPayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("payment_id", req.PaymentID))

	// Lock contention between concurrent payments for the same patient
	// surfaces as ErrConflict. The posting is idempotent, so retrying the
	// whole unit of work is safe.
	var resp *dto.PaymentPostingResponse
	var err error
	for attempt := 1; attempt <= paymentPostRetries; attempt++ {
		resp, err = h.paymentService.PostPayment(c.Request.Context(), req, actor)
		if err == nil || !errors.Is(err, apperrors.ErrConflict) {
			break
		}
		logger.Warn("Payment posting conflicted, retrying", slog.Int("attempt", attempt))
	}
	if err != nil {
		respondServiceError(c, logger, err, "Failed to post payment")
		return
	}

	logger.Info("Payment posted", slog.String("gl_transaction_id", resp.GLTransactionID))
	c.JSON(http.StatusOK, resp)
}

// registerPaymentRoutes registers payment specific routes
func registerPaymentRoutes(group *gin.RouterGroup, paymentService portssvc.PaymentAllocationSvcFacade) {
	h := newPaymentHandler(paymentService)

	group.POST("/payments", h.postPayment)
}
