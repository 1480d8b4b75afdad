package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/delivery_pricing_app/internal/core/domain"
	portssvc "github.com/SscSPs/delivery_pricing_app/internal/core/ports/services"
	"github.com/SscSPs/delivery_pricing_app/internal/dto"
	"github.com/SscSPs/delivery_pricing_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// quoteHandler handles quote pricing and lifecycle requests.
type quoteHandler struct {
	quoteService portssvc.QuoteSvcFacade
}

func newQuoteHandler(qs portssvc.QuoteSvcFacade) *quoteHandler {
	return &quoteHandler{quoteService: qs}
}

// registerQuoteRoutes registers routes related to quotes.
func registerQuoteRoutes(rg *gin.RouterGroup, quoteService portssvc.QuoteSvcFacade) {
	h := newQuoteHandler(quoteService)

	quotes := rg.Group("/quotes")
	{
		quotes.POST("", h.createQuote)
		quotes.GET("", h.listQuotesByOrder)
		quotes.GET("/:quoteID", h.getQuote)
		quotes.PATCH("/:quoteID", h.updateQuote)
		quotes.DELETE("/:quoteID", h.deleteQuote)
		quotes.GET("/:quoteID/display", h.getQuoteInCurrency)

		quotes.POST("/:quoteID/send", h.transition("send", quoteService.SendQuote))
		quotes.POST("/:quoteID/accept", h.transition("accept", quoteService.AcceptQuote))
		quotes.POST("/:quoteID/reject", h.transition("reject", quoteService.RejectQuote))
		quotes.POST("/:quoteID/expire", h.transition("expire", quoteService.ExpireQuote))
		quotes.POST("/:quoteID/finalize", h.transition("finalize", quoteService.FinalizeQuote))
	}
}

// createQuote godoc
// @Summary Price a new draft quote
// @Description Prices an order with the active rule of the requested currency (base by default). Give distanceKm, or origin and destination to estimate it.
// @Tags quotes
// @Accept  json
// @Produce  json
// @Param   quote body dto.CreateQuoteRequest true "Order and trip details"
// @Success 201 {object} dto.QuoteResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "No active pricing rule"
// @Failure 422 {object} map[string]string "Distance not covered by any tier"
// @Security BearerAuth
// @Router /quotes [post]
func (h *quoteHandler) createQuote(c *gin.Context) {
	var req dto.CreateQuoteRequest
	if !bindJSON(c, &req, "CreateQuote") {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	quote, err := h.quoteService.CreateQuote(c.Request.Context(), req, userID)
	if err != nil {
		respondWithError(c, err, "Failed to create quote")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Quote created",
		slog.String("quote_id", quote.QuoteID),
		slog.String("order_id", quote.OrderID),
		slog.Int("version", quote.Version),
	)
	c.JSON(http.StatusCreated, dto.ToQuoteResponse(quote))
}

// listQuotesByOrder godoc
// @Summary List the quote versions of an order
// @Tags quotes
// @Produce  json
// @Param   orderID query string true "Order ID"
// @Success 200 {array} dto.QuoteResponse
// @Failure 400 {object} map[string]string "orderID is required"
// @Security BearerAuth
// @Router /quotes [get]
func (h *quoteHandler) listQuotesByOrder(c *gin.Context) {
	orderID := c.Query("orderID")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "orderID query parameter is required"})
		return
	}

	quotes, err := h.quoteService.ListQuotesByOrder(c.Request.Context(), orderID)
	if err != nil {
		respondWithError(c, err, "Failed to list quotes")
		return
	}
	c.JSON(http.StatusOK, dto.ToListQuoteResponse(quotes))
}

// getQuote godoc
// @Summary Get a quote
// @Tags quotes
// @Produce  json
// @Param   quoteID path string true "Quote ID"
// @Success 200 {object} dto.QuoteResponse
// @Failure 404 {object} map[string]string "Quote not found"
// @Security BearerAuth
// @Router /quotes/{quoteID} [get]
func (h *quoteHandler) getQuote(c *gin.Context) {
	quote, err := h.quoteService.GetQuote(c.Request.Context(), c.Param("quoteID"))
	if err != nil {
		respondWithError(c, err, "Failed to get quote")
		return
	}
	c.JSON(http.StatusOK, dto.ToQuoteResponse(quote))
}

// updateQuote godoc
// @Summary Update a draft quote
// @Description Changes the pricing inputs of a draft and reprices it against the active rule.
// @Tags quotes
// @Accept  json
// @Produce  json
// @Param   quoteID path string true "Quote ID"
// @Param   quote body dto.UpdateQuoteRequest true "Fields to change"
// @Success 200 {object} dto.QuoteResponse
// @Failure 409 {object} map[string]string "Quote is not a draft"
// @Security BearerAuth
// @Router /quotes/{quoteID} [patch]
func (h *quoteHandler) updateQuote(c *gin.Context) {
	var req dto.UpdateQuoteRequest
	if !bindJSON(c, &req, "UpdateQuote") {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	quote, err := h.quoteService.UpdateQuote(c.Request.Context(), c.Param("quoteID"), req, userID)
	if err != nil {
		respondWithError(c, err, "Failed to update quote")
		return
	}
	c.JSON(http.StatusOK, dto.ToQuoteResponse(quote))
}

// deleteQuote godoc
// @Summary Delete a draft quote
// @Tags quotes
// @Param   quoteID path string true "Quote ID"
// @Success 204
// @Failure 409 {object} map[string]string "Quote is not a draft"
// @Security BearerAuth
// @Router /quotes/{quoteID} [delete]
func (h *quoteHandler) deleteQuote(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.quoteService.DeleteQuote(c.Request.Context(), c.Param("quoteID"), userID); err != nil {
		respondWithError(c, err, "Failed to delete quote")
		return
	}
	c.Status(http.StatusNoContent)
}

// transition builds the handler of one lifecycle action.
// @Summary Move a quote through its lifecycle
// @Description send, accept, reject, expire or finalize. Illegal transitions answer 409.
// @Tags quotes
// @Produce  json
// @Param   quoteID path string true "Quote ID"
// @Success 200 {object} dto.QuoteResponse
// @Failure 404 {object} map[string]string "Quote not found"
// @Failure 409 {object} map[string]string "Transition not allowed"
// @Security BearerAuth
// @Router /quotes/{quoteID}/send [post]
// @Router /quotes/{quoteID}/accept [post]
// @Router /quotes/{quoteID}/reject [post]
// @Router /quotes/{quoteID}/expire [post]
// @Router /quotes/{quoteID}/finalize [post]
func (h *quoteHandler) transition(action string, apply func(ctx context.Context, quoteID string, userID string) (*domain.Quote, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}

		quoteID := c.Param("quoteID")
		quote, err := apply(c.Request.Context(), quoteID, userID)
		if err != nil {
			respondWithError(c, err, "Failed to "+action+" quote")
			return
		}

		middleware.GetLoggerFromCtx(c.Request.Context()).Info("Quote transitioned",
			slog.String("quote_id", quoteID),
			slog.String("action", action),
			slog.String("status", string(quote.Status)),
		)
		c.JSON(http.StatusOK, dto.ToQuoteResponse(quote))
	}
}

// getQuoteInCurrency godoc
// @Summary Display a quote in another currency
// @Description Converts every amount. Paid quotes use the rate of their creation day; others use the live rate. When no rate exists, rateAvailable is false and no amounts are returned.
// @Tags quotes
// @Produce  json
// @Param   quoteID path string true "Quote ID"
// @Param   currency query string true "Display Currency Code"
// @Success 200 {object} domain.QuoteInCurrency
// @Failure 404 {object} map[string]string "Quote or currency not found"
// @Security BearerAuth
// @Router /quotes/{quoteID}/display [get]
func (h *quoteHandler) getQuoteInCurrency(c *gin.Context) {
	currencyCode := strings.ToUpper(c.Query("currency"))
	if len(currencyCode) != 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "currency query parameter must be a 3 letter code"})
		return
	}

	view, err := h.quoteService.GetQuoteInCurrency(c.Request.Context(), c.Param("quoteID"), currencyCode)
	if err != nil {
		respondWithError(c, err, "Failed to convert quote")
		return
	}
	c.JSON(http.StatusOK, view)
}
