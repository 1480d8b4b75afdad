package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/delivery_pricing_app/internal/apperrors"
	portssvc "github.com/SscSPs/delivery_pricing_app/internal/core/ports/services"
	"github.com/SscSPs/delivery_pricing_app/internal/dto"
	"github.com/SscSPs/delivery_pricing_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// currencyHandler handles HTTP requests related to currencies.
type currencyHandler struct {
	currencyService portssvc.CurrencySvcFacade
}

// newCurrencyHandler creates a new currencyHandler.
func newCurrencyHandler(cs portssvc.CurrencySvcFacade) *currencyHandler {
	return &currencyHandler{
		currencyService: cs,
	}
}

// registerCurrencyRoutes registers routes related to currencies.
func registerCurrencyRoutes(rg *gin.RouterGroup, currencyService portssvc.CurrencySvcFacade) {
	h := newCurrencyHandler(currencyService)

	currencies := rg.Group("/currencies")
	{
		currencies.POST("", h.createCurrency)
		currencies.GET("", h.listCurrencies)
		currencies.GET("/:code", h.getCurrencyByCode)
		currencies.PATCH("/:code", h.updateCurrency)
		currencies.POST("/:code/base", h.setBaseCurrency)
	}
}

// baseCode returns the base currency code, or "" when none is configured yet.
func (h *currencyHandler) baseCode(c *gin.Context) string {
	base, err := h.currencyService.GetBaseCurrency(c.Request.Context())
	if err != nil {
		return ""
	}
	return base.CurrencyCode
}

// createCurrency godoc
// @Summary Create a new currency
// @Description Adds a new, non-base currency with its display precision and rounding policy
// @Tags currencies
// @Accept  json
// @Produce  json
// @Param   currency body dto.CreateCurrencyRequest true "Currency details"
// @Success 201 {object} dto.CurrencyResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Currency code already exists"
// @Failure 500 {object} map[string]string "Failed to create currency"
// @Security BearerAuth
// @Router /currencies [post]
func (h *currencyHandler) createCurrency(c *gin.Context) {
	var req dto.CreateCurrencyRequest
	if !bindJSON(c, &req, "CreateCurrency") {
		return
	}
	creatorUserID, ok := requireUserID(c)
	if !ok {
		return
	}

	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Info("Received request to create currency", slog.String("currency_code", req.CurrencyCode))

	createdCurrency, err := h.currencyService.CreateCurrency(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondWithError(c, err, "Failed to create currency")
		return
	}

	logger.Info("Currency created successfully", slog.String("currency_code", createdCurrency.CurrencyCode))
	c.JSON(http.StatusCreated, dto.ToCurrencyResponse(createdCurrency, h.baseCode(c)))
}

// getCurrencyByCode godoc
// @Summary Get a currency by code
// @Description Retrieves a currency, including its live rate against the base currency
// @Tags currencies
// @Produce  json
// @Param   code path string true "Currency Code (3 letters)" MinLength(3) MaxLength(3)
// @Success 200 {object} dto.CurrencyResponse
// @Failure 404 {object} map[string]string "Currency not found"
// @Failure 500 {object} map[string]string "Failed to retrieve currency"
// @Security BearerAuth
// @Router /currencies/{code} [get]
func (h *currencyHandler) getCurrencyByCode(c *gin.Context) {
	currencyCode := strings.ToUpper(c.Param("code"))
	if len(currencyCode) != 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Currency code must be 3 letters"})
		return
	}

	currency, err := h.currencyService.GetCurrencyByCode(c.Request.Context(), currencyCode)
	if err != nil {
		respondWithError(c, err, "Failed to retrieve currency")
		return
	}

	c.JSON(http.StatusOK, dto.ToCurrencyResponse(currency, h.baseCode(c)))
}

// listCurrencies godoc
// @Summary List currencies
// @Description Retrieves all currencies, or only enabled ones with ?enabled=true
// @Tags currencies
// @Produce  json
// @Param   enabled query bool false "Only enabled currencies"
// @Success 200 {array} dto.CurrencyResponse
// @Failure 500 {object} map[string]string "Failed to list currencies"
// @Security BearerAuth
// @Router /currencies [get]
func (h *currencyHandler) listCurrencies(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	enabledOnly := c.Query("enabled") == "true"

	currencies, err := h.currencyService.ListCurrencies(c.Request.Context(), enabledOnly)
	if err != nil {
		respondWithError(c, err, "Failed to list currencies")
		return
	}

	logger.Info("Currencies listed successfully", slog.Int("count", len(currencies)))
	c.JSON(http.StatusOK, dto.ToListCurrencyResponse(currencies))
}

// updateCurrency godoc
// @Summary Update a currency
// @Description Changes symbol, name, precision, rounding policy or enabled flag. The base currency cannot be disabled.
// @Tags currencies
// @Accept  json
// @Produce  json
// @Param   code path string true "Currency Code"
// @Param   currency body dto.UpdateCurrencyRequest true "Fields to change"
// @Success 200 {object} dto.CurrencyResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Currency not found"
// @Failure 409 {object} map[string]string "Base currency cannot be disabled"
// @Security BearerAuth
// @Router /currencies/{code} [patch]
func (h *currencyHandler) updateCurrency(c *gin.Context) {
	var req dto.UpdateCurrencyRequest
	if !bindJSON(c, &req, "UpdateCurrency") {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	currency, err := h.currencyService.UpdateCurrency(c.Request.Context(), strings.ToUpper(c.Param("code")), req, userID)
	if err != nil {
		respondWithError(c, err, "Failed to update currency")
		return
	}
	c.JSON(http.StatusOK, dto.ToCurrencyResponse(currency, h.baseCode(c)))
}

// setBaseCurrency godoc
// @Summary Make a currency the base currency
// @Description Moves the base flag. Stored live rates are cleared; existing quotes keep their currency and amounts.
// @Tags currencies
// @Produce  json
// @Param   code path string true "Currency Code"
// @Success 200 {object} dto.CurrencyResponse
// @Failure 404 {object} map[string]string "Currency not found"
// @Failure 400 {object} map[string]string "Currency is disabled"
// @Security BearerAuth
// @Router /currencies/{code}/base [post]
func (h *currencyHandler) setBaseCurrency(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	currency, err := h.currencyService.SetBaseCurrency(c.Request.Context(), strings.ToUpper(c.Param("code")), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Currency not found"})
			return
		}
		respondWithError(c, err, "Failed to set base currency")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Base currency changed", slog.String("currency_code", currency.CurrencyCode))
	c.JSON(http.StatusOK, dto.ToCurrencyResponse(currency, currency.CurrencyCode))
}
