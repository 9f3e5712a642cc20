package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "quantfolio/internal/errors"
	"quantfolio/internal/models"
	"quantfolio/internal/pagination"
	"quantfolio/internal/services"
)

// PortfolioHandler handles holdings and ledger requests.
type PortfolioHandler struct {
	portfolioService services.PortfolioServicer
	activityService  services.ActivityServicer
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolioService services.PortfolioServicer, activityService services.ActivityServicer) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService, activityService: activityService}
}

// TradeRequest represents a buy or sell request. Quantity and price travel
// as strings so fixed-point precision survives JSON.
type TradeRequest struct {
	InvestmentID uint   `json:"investment_id" binding:"required"`
	Quantity     string `json:"quantity" binding:"required"`
	Price        string `json:"price" binding:"required"`
}

// transactionQuery holds the ledger list query parameters.
type transactionQuery struct {
	pagination.PageRequest
	InvestmentID *uint      `form:"investment_id"`
	Type         *string    `form:"type" binding:"omitempty,transaction_type"`
	FromDate     *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate       *time.Time `form:"to_date" time_format:"2006-01-02"`
}

// parseTrade converts the string amounts of a TradeRequest into decimals.
func parseTrade(req TradeRequest) (quantity, price decimal.Decimal, err error) {
	quantity, err = decimal.NewFromString(req.Quantity)
	if err != nil {
		return decimal.Zero, decimal.Zero, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid quantity")
	}
	price, err = decimal.NewFromString(req.Price)
	if err != nil {
		return decimal.Zero, decimal.Zero, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid price")
	}
	return quantity, price, nil
}

// Buy records a buy transaction and updates the holding.
// @Summary     Record a buy
// @Tags        portfolio
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body TradeRequest true "Buy details"
// @Success     201 {object} models.Transaction "Transaction recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Investment not found"
// @Router      /portfolio/buy [post]
func (h *PortfolioHandler) Buy(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	quantity, price, err := parseTrade(req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.portfolioService.RecordBuy(userID, req.InvestmentID, quantity, price)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.activityService.Log(userID, "buy", "")

	c.JSON(http.StatusCreated, transaction)
}

// Sell records a sell transaction and updates the holding.
// @Summary     Record a sell
// @Tags        portfolio
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body TradeRequest true "Sell details"
// @Success     201 {object} models.Transaction "Transaction recorded"
// @Failure     400 {object} ErrorResponse "Invalid input or insufficient quantity"
// @Failure     404 {object} ErrorResponse "Investment or holding not found"
// @Router      /portfolio/sell [post]
func (h *PortfolioHandler) Sell(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	quantity, price, err := parseTrade(req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.portfolioService.RecordSell(userID, req.InvestmentID, quantity, price)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.activityService.Log(userID, "sell", "")

	c.JSON(http.StatusCreated, transaction)
}

// GetAssets returns the user's holdings.
// @Summary     List holdings
// @Tags        portfolio
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Asset] "Holdings page"
// @Router      /portfolio/assets [get]
func (h *PortfolioHandler) GetAssets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.portfolioService.GetUserAssets(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTransactions returns the user's ledger entries.
// @Summary     List transactions
// @Tags        portfolio
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Param       investment_id query int false "Filter by investment"
// @Param       type query string false "Filter by type (buy|sell)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Ledger page"
// @Router      /portfolio/transactions [get]
func (h *PortfolioHandler) GetTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query transactionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := services.TransactionFilter{
		InvestmentID: query.InvestmentID,
		FromDate:     query.FromDate,
		ToDate:       query.ToDate,
	}
	if query.Type != nil {
		t := models.TransactionType(*query.Type)
		filter.Type = &t
	}

	result, err := h.portfolioService.GetUserTransactions(userID, query.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTransaction returns a single ledger entry.
// @Summary     Get transaction
// @Tags        portfolio
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /portfolio/transactions/{id} [get]
func (h *PortfolioHandler) GetTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.portfolioService.GetTransactionByID(userID, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, transaction)
}
