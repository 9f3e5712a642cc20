package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "quantfolio/internal/errors"
	"quantfolio/internal/pagination"
	"quantfolio/internal/services"
)

// InvestmentHandler handles catalog requests.
type InvestmentHandler struct {
	investmentService services.InvestmentServicer
}

// NewInvestmentHandler creates a new InvestmentHandler.
func NewInvestmentHandler(investmentService services.InvestmentServicer) *InvestmentHandler {
	return &InvestmentHandler{investmentService: investmentService}
}

// CreateInvestmentRequest represents the payload for creating a catalog entry.
type CreateInvestmentRequest struct {
	Name string `json:"name" binding:"required,min=1,max=255"`
	Type string `json:"type" binding:"required,min=1,max=50"`
}

// CreateInvestment handles creating a new catalog entry.
// @Summary     Create investment
// @Description Create a new catalog investment (pipeline endpoint)
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       request body CreateInvestmentRequest true "Investment details"
// @Success     201 {object} models.Investment "Investment created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     503 {object} ErrorResponse "Pipeline not configured"
// @Router      /pipeline/investments [post]
func (h *InvestmentHandler) CreateInvestment(c *gin.Context) {
	var req CreateInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	investment, err := h.investmentService.CreateInvestment(req.Name, req.Type)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, investment)
}

// DeleteInvestment handles removing a catalog entry and its dependents.
// @Summary     Delete investment
// @Description Delete a catalog investment and cascade to holdings, ledger entries and watchlists (pipeline endpoint)
// @Tags        pipeline
// @Produce     json
// @Security    ApiKeyAuth
// @Param       id path int true "Investment ID"
// @Success     200 {object} map[string]interface{} "Investment deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /pipeline/investments/{id} [delete]
func (h *InvestmentHandler) DeleteInvestment(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.investmentService.DeleteInvestment(id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Investment deleted"})
}

// ListInvestments returns a page of catalog entries.
// @Summary     List investments
// @Tags        investments
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Investment] "Catalog page"
// @Router      /investments [get]
func (h *InvestmentHandler) ListInvestments(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.investmentService.ListInvestments(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetInvestment returns one catalog entry.
// @Summary     Get investment
// @Tags        investments
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Investment ID"
// @Success     200 {object} models.Investment "Investment"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /investments/{id} [get]
func (h *InvestmentHandler) GetInvestment(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	investment, err := h.investmentService.GetInvestmentByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, investment)
}
