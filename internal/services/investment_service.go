package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "quantfolio/internal/errors"
	"quantfolio/internal/models"
	"quantfolio/internal/pagination"
)

// investmentService handles catalog management.
type investmentService struct {
	db *gorm.DB
}

// NewInvestmentService creates a new InvestmentServicer.
func NewInvestmentService(db *gorm.DB) InvestmentServicer {
	return &investmentService{db: db}
}

// CreateInvestment creates a new catalog entry.
func (s *investmentService) CreateInvestment(name, investmentType string) (*models.Investment, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Name is required")
	}
	if strings.TrimSpace(investmentType) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Type is required")
	}

	investment := &models.Investment{
		Name: name,
		Type: investmentType,
	}

	if err := s.db.Create(investment).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return investment, nil
}

// GetInvestmentByID returns a catalog entry by its ID.
func (s *investmentService) GetInvestmentByID(id uint) (*models.Investment, error) {
	var investment models.Investment
	if err := s.db.First(&investment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvestmentNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &investment, nil
}

// ListInvestments returns a paginated list of catalog entries ordered by name.
func (s *investmentService) ListInvestments(page pagination.PageRequest) (*pagination.PageResponse[models.Investment], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Investment{})
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var investments []models.Investment
	if err := base.Order("name ASC").Scopes(pagination.Paginate(page)).Find(&investments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(investments, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// DeleteInvestment removes a catalog entry and all dependent rows
// (holdings, ledger entries, watchlist links) in a single transaction.
func (s *investmentService) DeleteInvestment(id uint) error {
	investment, err := s.GetInvestmentByID(id)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM user_watchlist WHERE investment_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("investment_id = ?", id).Delete(&models.Asset{}).Error; err != nil {
			return err
		}
		if err := tx.Where("investment_id = ?", id).Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		return tx.Delete(investment).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
