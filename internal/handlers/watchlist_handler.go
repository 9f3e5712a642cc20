package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "quantfolio/internal/errors"
	"quantfolio/internal/pagination"
	"quantfolio/internal/services"
)

// WatchlistHandler handles watchlist requests.
type WatchlistHandler struct {
	watchlistService services.WatchlistServicer
	activityService  services.ActivityServicer
}

// NewWatchlistHandler creates a new WatchlistHandler.
func NewWatchlistHandler(watchlistService services.WatchlistServicer, activityService services.ActivityServicer) *WatchlistHandler {
	return &WatchlistHandler{watchlistService: watchlistService, activityService: activityService}
}

// AddWatchlistRequest represents the payload for watching an investment.
type AddWatchlistRequest struct {
	InvestmentID uint `json:"investment_id" binding:"required"`
}

// Add puts an investment on the caller's watchlist.
// @Summary     Add to watchlist
// @Tags        watchlist
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AddWatchlistRequest true "Investment to watch"
// @Success     201 {object} map[string]interface{} "Added"
// @Failure     404 {object} ErrorResponse "Investment not found"
// @Failure     409 {object} ErrorResponse "Already watchlisted"
// @Router      /watchlist [post]
func (h *WatchlistHandler) Add(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddWatchlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.watchlistService.Add(userID, req.InvestmentID); err != nil {
		respondWithError(c, err)
		return
	}

	h.activityService.Log(userID, "watchlist_add", "")

	c.JSON(http.StatusCreated, gin.H{"message": "Added to watchlist"})
}

// Remove takes an investment off the caller's watchlist.
// @Summary     Remove from watchlist
// @Tags        watchlist
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Investment ID"
// @Success     200 {object} map[string]interface{} "Removed"
// @Failure     404 {object} ErrorResponse "Not on watchlist"
// @Router      /watchlist/{id} [delete]
func (h *WatchlistHandler) Remove(c *gin.Context) {
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

	if err := h.watchlistService.Remove(userID, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.activityService.Log(userID, "watchlist_remove", "")

	c.JSON(http.StatusOK, gin.H{"message": "Removed from watchlist"})
}

// List returns the caller's watchlist.
// @Summary     List watchlist
// @Tags        watchlist
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Investment] "Watchlist page"
// @Router      /watchlist [get]
func (h *WatchlistHandler) List(c *gin.Context) {
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

	result, err := h.watchlistService.List(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
