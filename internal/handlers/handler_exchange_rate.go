package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/delivery_pricing_app/internal/core/domain"
	portssvc "github.com/SscSPs/delivery_pricing_app/internal/core/ports/services"
	"github.com/SscSPs/delivery_pricing_app/internal/dto"
	"github.com/SscSPs/delivery_pricing_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

const (
	defaultRateHistoryLimit = 30
	maxRateHistoryLimit     = 366
)

// exchangeRateHandler handles HTTP requests related to exchange rates.
type exchangeRateHandler struct {
	exchangeRateService portssvc.ExchangeRateSvcFacade
}

// newExchangeRateHandler creates a new exchangeRateHandler.
func newExchangeRateHandler(ers portssvc.ExchangeRateSvcFacade) *exchangeRateHandler {
	return &exchangeRateHandler{
		exchangeRateService: ers,
	}
}

// registerExchangeRateRoutes registers the JWT protected exchange rate routes.
func registerExchangeRateRoutes(rg *gin.RouterGroup, exchangeRateService portssvc.ExchangeRateSvcFacade) {
	h := newExchangeRateHandler(exchangeRateService)

	exchangeRates := rg.Group("/exchange-rates")
	{
		exchangeRates.POST("", h.upsertExchangeRate)
		exchangeRates.GET("/:code", h.listExchangeRates)
		exchangeRates.GET("/:code/daily", h.getRatesMap)
	}
}

// registerRateSyncRoute registers the sync trigger. It accepts either the
// scheduler's API key or an admin JWT and is rate limited per client IP.
func registerRateSyncRoute(rg *gin.RouterGroup, exchangeRateService portssvc.ExchangeRateSvcFacade, authChain ...gin.HandlerFunc) {
	h := newExchangeRateHandler(exchangeRateService)
	rg.POST("/exchange-rates/sync", append(authChain, h.syncRates)...)
}

// upsertExchangeRate godoc
// @Summary Store a daily exchange rate
// @Description Stores the rate of a non-base currency for one day, replacing a rate already stored for that day. Rates for the latest day also update the currency's live rate.
// @Tags exchange rates
// @Accept  json
// @Produce  json
// @Param   rate body dto.UpsertExchangeRateRequest true "Exchange Rate details"
// @Success 200 {object} dto.ExchangeRateResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to store exchange rate"
// @Security BearerAuth
// @Router /exchange-rates [post]
func (h *exchangeRateHandler) upsertExchangeRate(c *gin.Context) {
	var req dto.UpsertExchangeRateRequest
	if !bindJSON(c, &req, "UpsertExchangeRate") {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Info("Received request to store exchange rate",
		slog.String("currency_code", req.CurrencyCode),
		slog.String("rate", req.Rate.String()),
		slog.Time("rate_date", req.RateDate),
	)

	rate, err := h.exchangeRateService.UpsertExchangeRate(c.Request.Context(), req, userID)
	if err != nil {
		respondWithError(c, err, "Failed to store exchange rate")
		return
	}
	c.JSON(http.StatusOK, dto.ToExchangeRateResponse(rate))
}

// listExchangeRates godoc
// @Summary List the rate history of a currency
// @Description Returns stored daily rates newest first. Pass nextToken from the previous page to continue.
// @Tags exchange rates
// @Produce  json
// @Param   code path string true "Currency Code"
// @Param   limit query int false "Page size (default 30, max 366)"
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListExchangeRatesResponse
// @Failure 400 {object} map[string]string "Invalid parameters"
// @Failure 404 {object} map[string]string "Currency not found"
// @Security BearerAuth
// @Router /exchange-rates/{code} [get]
func (h *exchangeRateHandler) listExchangeRates(c *gin.Context) {
	limit := defaultRateHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(parsed, maxRateHistoryLimit)
	}
	var nextToken *string
	if raw := c.Query("nextToken"); raw != "" {
		nextToken = &raw
	}

	rates, next, err := h.exchangeRateService.ListExchangeRates(c.Request.Context(), strings.ToUpper(c.Param("code")), limit, nextToken)
	if err != nil {
		respondWithError(c, err, "Failed to list exchange rates")
		return
	}

	c.JSON(http.StatusOK, dto.ListExchangeRatesResponse{
		Rates:     dto.ToListExchangeRateResponse(rates),
		NextToken: next,
	})
}

// getRatesMap godoc
// @Summary Get day-keyed rates of a currency
// @Description Returns {"YYYY-MM-DD": rate} for the inclusive day range
// @Tags exchange rates
// @Produce  json
// @Param   code path string true "Currency Code"
// @Param   from query string true "First day (YYYY-MM-DD)"
// @Param   to query string true "Last day (YYYY-MM-DD)"
// @Success 200 {object} dto.RatesMapResponse
// @Failure 400 {object} map[string]string "Invalid range"
// @Security BearerAuth
// @Router /exchange-rates/{code}/daily [get]
func (h *exchangeRateHandler) getRatesMap(c *gin.Context) {
	from, errFrom := time.Parse(domain.RateDateLayout, c.Query("from"))
	to, errTo := time.Parse(domain.RateDateLayout, c.Query("to"))
	if errFrom != nil || errTo != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to must be dates formatted YYYY-MM-DD"})
		return
	}

	code := strings.ToUpper(c.Param("code"))
	rates, err := h.exchangeRateService.GetRatesMap(c.Request.Context(), code, from, to)
	if err != nil {
		respondWithError(c, err, "Failed to get exchange rates")
		return
	}
	c.JSON(http.StatusOK, dto.RatesMapResponse{CurrencyCode: code, Rates: rates})
}

// syncRates godoc
// @Summary Sync today's rates from the external feed
// @Description Fetches rates for every enabled non-base currency. Accepts a JWT or the scheduler's x-api-key header.
// @Tags exchange rates
// @Produce  json
// @Success 200 {object} dto.SyncRatesResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 429 {object} map[string]string "Too many requests"
// @Failure 503 {object} map[string]string "No rate feed configured"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /exchange-rates/sync [post]
func (h *exchangeRateHandler) syncRates(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	results, err := h.exchangeRateService.SyncRates(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err, "Failed to sync exchange rates")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Exchange rates synced", slog.Int("currencies", len(results)))
	c.JSON(http.StatusOK, dto.SyncRatesResponse{Results: results})
}
