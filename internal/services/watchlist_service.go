package services

import (
	"gorm.io/gorm"

	apperrors "quantfolio/internal/errors"
	"quantfolio/internal/models"
	"quantfolio/internal/pagination"
)

// watchlistService handles the user-to-investment watchlist relation.
type watchlistService struct {
	db                *gorm.DB
	investmentService InvestmentServicer
}

// NewWatchlistService creates a new WatchlistServicer.
func NewWatchlistService(db *gorm.DB, investmentService InvestmentServicer) WatchlistServicer {
	return &watchlistService{db: db, investmentService: investmentService}
}

// Add puts an investment on the user's watchlist.
func (s *watchlistService) Add(userID, investmentID uint) error {
	investment, err := s.investmentService.GetInvestmentByID(investmentID)
	if err != nil {
		return err
	}

	watched, err := s.isWatched(userID, investmentID)
	if err != nil {
		return err
	}
	if watched {
		return apperrors.ErrAlreadyWatchlisted
	}

	user := models.User{Base: models.Base{ID: userID}}
	if err := s.db.Model(&user).Association("Watchlist").Append(investment); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Remove takes an investment off the user's watchlist.
func (s *watchlistService) Remove(userID, investmentID uint) error {
	investment, err := s.investmentService.GetInvestmentByID(investmentID)
	if err != nil {
		return err
	}

	watched, err := s.isWatched(userID, investmentID)
	if err != nil {
		return err
	}
	if !watched {
		return apperrors.ErrNotWatchlisted
	}

	user := models.User{Base: models.Base{ID: userID}}
	if err := s.db.Model(&user).Association("Watchlist").Delete(investment); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// List returns the user's watchlisted investments ordered by name.
func (s *watchlistService) List(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Investment], error) {
	page.Defaults()

	base := s.db.Model(&models.Investment{}).
		Joins("JOIN user_watchlist ON user_watchlist.investment_id = investments.id").
		Where("user_watchlist.user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var investments []models.Investment
	if err := base.Order("investments.name ASC").Scopes(pagination.Paginate(page)).
		Find(&investments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(investments, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func (s *watchlistService) isWatched(userID, investmentID uint) (bool, error) {
	var count int64
	err := s.db.Table("user_watchlist").
		Where("user_id = ? AND investment_id = ?", userID, investmentID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}
