package services

import (
	"gorm.io/gorm"

	apperrors "quantfolio/internal/errors"
	"quantfolio/internal/logger"
	"quantfolio/internal/models"
	"quantfolio/internal/pagination"
)

// activityService records and lists account activity.
type activityService struct {
	db *gorm.DB
}

// NewActivityService creates a new ActivityServicer.
func NewActivityService(db *gorm.DB) ActivityServicer {
	return &activityService{db: db}
}

// Log records an activity entry. Errors are logged but never propagate
// to avoid disrupting the main operation.
func (s *activityService) Log(userID uint, activityType, details string) {
	entry := &models.ActivityLog{
		UserID:       userID,
		ActivityType: activityType,
		Details:      details,
	}

	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to create activity log entry",
			"error", err,
			"user_id", userID,
			"activity_type", activityType,
		)
	}
}

// ListUserActivity returns the user's activity feed, newest first.
func (s *activityService) ListUserActivity(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.ActivityLog], error) {
	page.Defaults()

	base := s.db.Model(&models.ActivityLog{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var entries []models.ActivityLog
	if err := base.Order("created_at DESC, id DESC").Scopes(pagination.Paginate(page)).
		Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(entries, page.Page, page.PageSize, totalItems)
	return &result, nil
}
