package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	portssvc "github.com/SscSPs/delivery_pricing_app/internal/core/ports/services"
	"github.com/SscSPs/delivery_pricing_app/internal/dto"
	"github.com/SscSPs/delivery_pricing_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

type pricingRuleHandler struct {
	pricingRuleService portssvc.PricingRuleSvcFacade
}

func newPricingRuleHandler(prs portssvc.PricingRuleSvcFacade) *pricingRuleHandler {
	return &pricingRuleHandler{pricingRuleService: prs}
}

// registerPricingRuleRoutes registers routes related to pricing rules.
func registerPricingRuleRoutes(rg *gin.RouterGroup, pricingRuleService portssvc.PricingRuleSvcFacade) {
	h := newPricingRuleHandler(pricingRuleService)

	rules := rg.Group("/pricing-rules")
	{
		rules.POST("", h.createPricingRule)
		rules.GET("", h.listPricingRules)
		rules.POST("/preview", h.previewFare)
		rules.GET("/active/:code", h.getActivePricingRule)
		rules.GET("/:ruleID", h.getPricingRule)
		rules.PATCH("/:ruleID", h.updatePricingRule)
		rules.DELETE("/:ruleID", h.deletePricingRule)
		rules.POST("/:ruleID/activate", h.activatePricingRule)
		rules.POST("/:ruleID/clone", h.clonePricingRule)
	}
}

// createPricingRule godoc
// @Summary Create a draft pricing rule
// @Tags pricing rules
// @Accept  json
// @Produce  json
// @Param   rule body dto.CreatePricingRuleRequest true "Rule with its distance tiers"
// @Success 201 {object} dto.PricingRuleResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Security BearerAuth
// @Router /pricing-rules [post]
func (h *pricingRuleHandler) createPricingRule(c *gin.Context) {
	var req dto.CreatePricingRuleRequest
	if !bindJSON(c, &req, "CreatePricingRule") {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	rule, err := h.pricingRuleService.CreatePricingRule(c.Request.Context(), req, userID)
	if err != nil {
		respondWithError(c, err, "Failed to create pricing rule")
		return
	}
	c.JSON(http.StatusCreated, dto.ToPricingRuleResponse(rule))
}

// listPricingRules godoc
// @Summary List pricing rules
// @Tags pricing rules
// @Produce  json
// @Param   currency query string false "Currency Code"
// @Param   status query string false "draft, active or archived"
// @Success 200 {array} dto.PricingRuleResponse
// @Security BearerAuth
// @Router /pricing-rules [get]
func (h *pricingRuleHandler) listPricingRules(c *gin.Context) {
	var params dto.ListPricingRulesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	rules, err := h.pricingRuleService.ListPricingRules(c.Request.Context(), params)
	if err != nil {
		respondWithError(c, err, "Failed to list pricing rules")
		return
	}
	c.JSON(http.StatusOK, dto.ToListPricingRuleResponse(rules))
}

// getPricingRule godoc
// @Summary Get a pricing rule
// @Tags pricing rules
// @Produce  json
// @Param   ruleID path string true "Pricing Rule ID"
// @Success 200 {object} dto.PricingRuleResponse
// @Failure 404 {object} map[string]string "Pricing rule not found"
// @Security BearerAuth
// @Router /pricing-rules/{ruleID} [get]
func (h *pricingRuleHandler) getPricingRule(c *gin.Context) {
	rule, err := h.pricingRuleService.GetPricingRule(c.Request.Context(), c.Param("ruleID"))
	if err != nil {
		respondWithError(c, err, "Failed to get pricing rule")
		return
	}
	c.JSON(http.StatusOK, dto.ToPricingRuleResponse(rule))
}

// getActivePricingRule godoc
// @Summary Get the active pricing rule of a currency
// @Tags pricing rules
// @Produce  json
// @Param   code path string true "Currency Code"
// @Success 200 {object} dto.PricingRuleResponse
// @Failure 404 {object} map[string]string "No active rule"
// @Security BearerAuth
// @Router /pricing-rules/active/{code} [get]
func (h *pricingRuleHandler) getActivePricingRule(c *gin.Context) {
	rule, err := h.pricingRuleService.GetActivePricingRule(c.Request.Context(), strings.ToUpper(c.Param("code")))
	if err != nil {
		respondWithError(c, err, "Failed to get active pricing rule")
		return
	}
	c.JSON(http.StatusOK, dto.ToPricingRuleResponse(rule))
}

// updatePricingRule godoc
// @Summary Update a draft pricing rule
// @Description Only draft rules can be edited; clone an active rule to change it.
// @Tags pricing rules
// @Accept  json
// @Produce  json
// @Param   ruleID path string true "Pricing Rule ID"
// @Param   rule body dto.UpdatePricingRuleRequest true "Fields to change"
// @Success 200 {object} dto.PricingRuleResponse
// @Failure 409 {object} map[string]string "Rule is not a draft"
// @Security BearerAuth
// @Router /pricing-rules/{ruleID} [patch]
func (h *pricingRuleHandler) updatePricingRule(c *gin.Context) {
	var req dto.UpdatePricingRuleRequest
	if !bindJSON(c, &req, "UpdatePricingRule") {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	rule, err := h.pricingRuleService.UpdatePricingRule(c.Request.Context(), c.Param("ruleID"), req, userID)
	if err != nil {
		respondWithError(c, err, "Failed to update pricing rule")
		return
	}
	c.JSON(http.StatusOK, dto.ToPricingRuleResponse(rule))
}

// deletePricingRule godoc
// @Summary Delete a draft pricing rule
// @Tags pricing rules
// @Param   ruleID path string true "Pricing Rule ID"
// @Success 204
// @Failure 409 {object} map[string]string "Rule is not a draft"
// @Security BearerAuth
// @Router /pricing-rules/{ruleID} [delete]
func (h *pricingRuleHandler) deletePricingRule(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.pricingRuleService.DeletePricingRule(c.Request.Context(), c.Param("ruleID"), userID); err != nil {
		respondWithError(c, err, "Failed to delete pricing rule")
		return
	}
	c.Status(http.StatusNoContent)
}

// activatePricingRule godoc
// @Summary Activate a pricing rule
// @Description Archives the currency's current active rule and activates this one, atomically.
// @Tags pricing rules
// @Produce  json
// @Param   ruleID path string true "Pricing Rule ID"
// @Success 200 {object} dto.PricingRuleResponse
// @Failure 400 {object} map[string]string "Rule has no tiers"
// @Failure 404 {object} map[string]string "Pricing rule not found"
// @Security BearerAuth
// @Router /pricing-rules/{ruleID}/activate [post]
func (h *pricingRuleHandler) activatePricingRule(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	rule, err := h.pricingRuleService.ActivatePricingRule(c.Request.Context(), c.Param("ruleID"), userID)
	if err != nil {
		respondWithError(c, err, "Failed to activate pricing rule")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Pricing rule activated",
		slog.String("pricing_rule_id", rule.PricingRuleID),
		slog.String("currency_code", rule.CurrencyCode),
	)
	c.JSON(http.StatusOK, dto.ToPricingRuleResponse(rule))
}

// clonePricingRule godoc
// @Summary Clone a pricing rule into a new draft
// @Tags pricing rules
// @Accept  json
// @Produce  json
// @Param   ruleID path string true "Pricing Rule ID"
// @Param   clone body dto.ClonePricingRuleRequest false "Optional new name"
// @Success 201 {object} dto.PricingRuleResponse
// @Failure 404 {object} map[string]string "Pricing rule not found"
// @Security BearerAuth
// @Router /pricing-rules/{ruleID}/clone [post]
func (h *pricingRuleHandler) clonePricingRule(c *gin.Context) {
	var req dto.ClonePricingRuleRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req, "ClonePricingRule") {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	rule, err := h.pricingRuleService.ClonePricingRule(c.Request.Context(), c.Param("ruleID"), req.Name, userID)
	if err != nil {
		respondWithError(c, err, "Failed to clone pricing rule")
		return
	}
	c.JSON(http.StatusCreated, dto.ToPricingRuleResponse(rule))
}

// previewFare godoc
// @Summary Preview the fare of a trip
// @Description Prices a trip with the currency's active rule, or a specific rule, without saving anything.
// @Tags pricing rules
// @Accept  json
// @Produce  json
// @Param   trip body dto.PreviewFareRequest true "Trip and adjustments"
// @Success 200 {object} fare.Breakdown
// @Failure 404 {object} map[string]string "No active rule"
// @Failure 422 {object} map[string]string "Distance not covered by any tier"
// @Security BearerAuth
// @Router /pricing-rules/preview [post]
func (h *pricingRuleHandler) previewFare(c *gin.Context) {
	var req dto.PreviewFareRequest
	if !bindJSON(c, &req, "PreviewFare") {
		return
	}

	breakdown, err := h.pricingRuleService.PreviewFare(c.Request.Context(), req)
	if err != nil {
		respondWithError(c, err, "Failed to preview fare")
		return
	}
	c.JSON(http.StatusOK, breakdown)
}
