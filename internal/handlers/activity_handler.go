package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "quantfolio/internal/errors"
	"quantfolio/internal/pagination"
	"quantfolio/internal/services"
)

// ActivityHandler handles activity feed requests.
type ActivityHandler struct {
	activityService services.ActivityServicer
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(activityService services.ActivityServicer) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// List returns the caller's activity feed.
// @Summary     List account activity
// @Tags        activity
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.ActivityLog] "Activity page"
// @Router      /activity [get]
func (h *ActivityHandler) List(c *gin.Context) {
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

	result, err := h.activityService.ListUserActivity(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
