package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	portssvc "github.com/curasoft/hospital_billing_app/internal/core/ports/services"
	"github.com/curasoft/hospital_billing_app/internal/dto"
	"github.com/curasoft/hospital_billing_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// planHandler handles HTTP requests for package payment plans.
type planHandler struct {
	planService portssvc.PackagePlanSvcFacade
}

// newPlanHandler creates a new planHandler.
func newPlanHandler(planService portssvc.PackagePlanSvcFacade) *planHandler {
	return &planHandler{
		planService: planService,
	}
}

// createPlan godoc
// @Summary Create a package payment plan
// @Description Creates a plan funded by a package invoice line item and generates its installment and session schedule. Installment amounts sum exactly to the plan total.
// @Tags plans
// @Accept  json
// @Produce  json
// @Param   plan body dto.CreatePlanRequest true "Plan"
// @Success 201 {object} dto.PlanResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 409 {object} map[string]string "Line item already funds a plan"
// @Router /plans [post]
func (h *planHandler) createPlan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.CreatePlanRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for CreatePlan", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.planService.CreatePlan(c.Request.Context(), req, actor)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create plan")
		return
	}

	logger.Info("Plan created", slog.String("plan_id", resp.PlanID))
	c.JSON(http.StatusCreated, resp)
}

// getPlan godoc
// @Summary Get a plan with its schedule
// @Tags plans
// @Produce  json
// @Param   planID path string true "Plan ID"
// @Success 200 {object} dto.PlanResponse
// @Failure 404 {object} map[string]string "Plan not found"
// @Router /plans/{planID} [get]
func (h *planHandler) getPlan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	planID := c.Param("planID")

	resp, err := h.planService.GetPlan(c.Request.Context(), planID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve plan")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// replanPlan godoc
// @Summary Change the session/installment counts of an active plan
// @Description Re-amortizes the unpaid balance over the remaining installments. Paid installments are never touched; shrinking below the paid count is rejected without mutation.
// @Tags plans
// @Accept  json
// @Produce  json
// @Param   planID path string true "Plan ID"
// @Param   replan body dto.ReplanRequest true "New counts"
// @Success 200 {object} dto.PlanResponse
// @Failure 400 {object} map[string]string "Counts below completed/paid work"
// @Failure 403 {object} map[string]string "Missing replan_plans permission"
// @Failure 409 {object} map[string]string "Plan not active"
// @Router /plans/{planID}/replan [post]
func (h *planHandler) replanPlan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	planID := c.Param("planID")

	req := dto.ReplanRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for ReplanPlan", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.planService.ReplanPlan(c.Request.Context(), planID, req, actor)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to replan")
		return
	}

	logger.Info("Plan replanned", slog.String("plan_id", planID),
		slog.Int("total_sessions", resp.TotalSessions), slog.Int("installment_count", resp.InstallmentCount))
	c.JSON(http.StatusOK, resp)
}

// discontinuePlan godoc
// @Summary Discontinue an active plan
// @Description Cancels scheduled sessions, waives pending installments, and posts a credit note for the unused package value in one unit of work.
// @Tags plans
// @Accept  json
// @Produce  json
// @Param   planID path string true "Plan ID"
// @Param   discontinue body dto.DiscontinueRequest true "Reason"
// @Success 200 {object} dto.DiscontinuationResponse
// @Failure 400 {object} map[string]string "Missing reason"
// @Failure 403 {object} map[string]string "Missing discontinue_plans permission"
// @Failure 409 {object} map[string]string "Plan not active"
// @Router /plans/{planID}/discontinue [post]
func (h *planHandler) discontinuePlan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	planID := c.Param("planID")

	req := dto.DiscontinueRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for DiscontinuePlan", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.planService.DiscontinuePlan(c.Request.Context(), planID, req, actor)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to discontinue plan")
		return
	}

	logger.Info("Plan discontinued", slog.String("plan_id", planID),
		slog.String("credit_note_number", resp.CreditNoteNumber))
	c.JSON(http.StatusOK, resp)
}

// completeSession godoc
// @Summary Mark a scheduled session completed
// @Description Completes one session; the plan moves to completed once every session is done and every installment settled.
// @Tags plans
// @Produce  json
// @Param   planID path string true "Plan ID"
// @Param   sessionNumber path int true "Session number"
// @Success 200 {object} dto.PlanResponse
// @Failure 404 {object} map[string]string "Plan or session not found"
// @Failure 409 {object} map[string]string "Session not in scheduled state"
// @Router /plans/{planID}/sessions/{sessionNumber}/complete [post]
func (h *planHandler) completeSession(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	planID := c.Param("planID")

	sessionNumber, err := strconv.Atoi(c.Param("sessionNumber"))
	if err != nil || sessionNumber < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session number must be a positive integer"})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.planService.CompleteSession(c.Request.Context(), planID, sessionNumber, actor)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to complete session")
		return
	}

	logger.Info("Session completed", slog.String("plan_id", planID), slog.Int("session_number", sessionNumber))
	c.JSON(http.StatusOK, resp)
}

// registerPlanRoutes registers plan lifecycle routes
func registerPlanRoutes(group *gin.RouterGroup, planService portssvc.PackagePlanSvcFacade) {
	h := newPlanHandler(planService)

	plans := group.Group("/plans")
	plans.POST("", h.createPlan)
	plans.GET("/:planID", h.getPlan)
	plans.POST("/:planID/replan", h.replanPlan)
	plans.POST("/:planID/discontinue", h.discontinuePlan)
	plans.POST("/:planID/sessions/:sessionNumber/complete", h.completeSession)
}
