package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "quantfolio/internal/errors"
	"quantfolio/internal/models"
	"quantfolio/internal/pagination"
)

const (
	maxDecimalDigits = 20
	quantityScale    = 4
	priceScale       = 2
)

// portfolioService handles holdings and the buy/sell ledger.
type portfolioService struct {
	db                *gorm.DB
	investmentService InvestmentServicer
}

// NewPortfolioService creates a new PortfolioServicer.
func NewPortfolioService(db *gorm.DB, investmentService InvestmentServicer) PortfolioServicer {
	return &portfolioService{db: db, investmentService: investmentService}
}

// RecordBuy appends a buy ledger entry and creates or grows the holding.
// An existing holding's purchase price becomes the quantity-weighted average.
func (s *portfolioService) RecordBuy(userID, investmentID uint, quantity, price decimal.Decimal) (*models.Transaction, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}
	if _, err := s.investmentService.GetInvestmentByID(investmentID); err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		UserID:       userID,
		InvestmentID: investmentID,
		Type:         models.TransactionTypeBuy,
		Quantity:     quantity,
		Price:        price,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(transaction).Error; err != nil {
			return err
		}

		var asset models.Asset
		err := tx.Where("user_id = ? AND investment_id = ?", userID, investmentID).First(&asset).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			asset = models.Asset{
				UserID:        userID,
				InvestmentID:  investmentID,
				Quantity:      quantity,
				PurchasePrice: price,
			}
			return tx.Create(&asset).Error
		case err != nil:
			return err
		}

		newQuantity := asset.Quantity.Add(quantity)
		// Weighted-average cost across the old holding and this buy.
		totalCost := asset.Quantity.Mul(asset.PurchasePrice).Add(quantity.Mul(price))
		newPrice := totalCost.Div(newQuantity).Round(priceScale)

		return tx.Model(&asset).Updates(map[string]interface{}{
			"quantity":       newQuantity,
			"purchase_price": newPrice,
		}).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return transaction, nil
}

// RecordSell appends a sell ledger entry and shrinks the holding. Selling
// more than is held fails; selling the full quantity removes the holding.
func (s *portfolioService) RecordSell(userID, investmentID uint, quantity, price decimal.Decimal) (*models.Transaction, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}
	if _, err := s.investmentService.GetInvestmentByID(investmentID); err != nil {
		return nil, err
	}

	var asset models.Asset
	if err := s.db.Where("user_id = ? AND investment_id = ?", userID, investmentID).First(&asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAssetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if quantity.GreaterThan(asset.Quantity) {
		return nil, apperrors.ErrInsufficientQuantity
	}

	transaction := &models.Transaction{
		UserID:       userID,
		InvestmentID: investmentID,
		Type:         models.TransactionTypeSell,
		Quantity:     quantity,
		Price:        price,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(transaction).Error; err != nil {
			return err
		}

		newQuantity := asset.Quantity.Sub(quantity)
		if newQuantity.IsZero() {
			return tx.Delete(&asset).Error
		}
		return tx.Model(&asset).Update("quantity", newQuantity).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return transaction, nil
}

// GetUserAssets returns the user's holdings with their catalog entries.
func (s *portfolioService) GetUserAssets(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Asset], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Asset{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var assets []models.Asset
	if err := base.Preload("Investment").Order("id ASC").
		Scopes(pagination.Paginate(page)).Find(&assets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(assets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetUserTransactions returns the user's ledger entries, newest first.
func (s *portfolioService) GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	if filter.InvestmentID != nil {
		base = base.Where("investment_id = ?", *filter.InvestmentID)
	}
	if filter.Type != nil {
		base = base.Where("type = ?", *filter.Type)
	}
	if filter.FromDate != nil {
		base = base.Where("created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		base = base.Where("created_at <= ?", *filter.ToDate)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Preload("Investment").Order("created_at DESC, id DESC").
		Scopes(pagination.Paginate(page)).Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetTransactionByID returns a single ledger entry owned by the user.
func (s *portfolioService) GetTransactionByID(userID, transactionID uint) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Preload("Investment").
		Where("id = ? AND user_id = ?", transactionID, userID).
		First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// validateQuantity enforces the fixed-point contract for share quantities:
// positive, at most 4 fractional digits, at most 20 digits in total.
func validateQuantity(quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Quantity must be positive")
	}
	if !quantity.Equal(quantity.Truncate(quantityScale)) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Quantity allows at most 4 decimal places")
	}
	if totalDigits(quantity) > maxDecimalDigits {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Quantity exceeds 20 significant digits")
	}
	return nil
}

// validatePrice enforces the fixed-point contract for money amounts:
// non-negative, at most 2 fractional digits, at most 20 digits in total.
func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Price must not be negative")
	}
	if !price.Equal(price.Truncate(priceScale)) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Price allows at most 2 decimal places")
	}
	if totalDigits(price) > maxDecimalDigits {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Price exceeds 20 significant digits")
	}
	return nil
}

// totalDigits returns the number of digits d occupies in fixed-point form.
// NumDigits counts coefficient digits only, so exponent notation such as
// "1e25" reads as a single digit while the stored value has 26.
func totalDigits(d decimal.Decimal) int {
	digits := d.NumDigits()
	if exp := int(d.Exponent()); exp > 0 {
		digits += exp
	}
	return digits
}
