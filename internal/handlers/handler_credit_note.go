package handlers

import (
	"net/http"

	portssvc "github.com/curasoft/hospital_billing_app/internal/core/ports/services"
	"github.com/curasoft/hospital_billing_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// creditNoteHandler serves credit note lookups. Credit notes are only ever
// created by plan discontinuation, so there is no create route here.
type creditNoteHandler struct {
	creditNoteService portssvc.CreditNoteSvcFacade
}

// newCreditNoteHandler creates a new creditNoteHandler.
func newCreditNoteHandler(creditNoteService portssvc.CreditNoteSvcFacade) *creditNoteHandler {
	return &creditNoteHandler{
		creditNoteService: creditNoteService,
	}
}

// getCreditNote godoc
// @Summary Get a credit note
// @Tags credit-notes
// @Produce  json
// @Param   creditNoteID path string true "Credit note ID"
// @Success 200 {object} domain.PatientCreditNote
// @Failure 404 {object} map[string]string "Credit note not found"
// @Router /credit-notes/{creditNoteID} [get]
func (h *creditNoteHandler) getCreditNote(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	creditNoteID := c.Param("creditNoteID")

	note, err := h.creditNoteService.GetCreditNote(c.Request.Context(), creditNoteID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve credit note")
		return
	}

	c.JSON(http.StatusOK, note)
}

// registerCreditNoteRoutes registers credit note routes
func registerCreditNoteRoutes(group *gin.RouterGroup, creditNoteService portssvc.CreditNoteSvcFacade) {
	h := newCreditNoteHandler(creditNoteService)

	group.GET("/credit-notes/:creditNoteID", h.getCreditNote)
}
