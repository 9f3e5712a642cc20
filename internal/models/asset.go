package models

import "github.com/shopspring/decimal"

// Asset represents a user's holding of one catalog investment. An asset
// exists only while both its user and its investment exist; deleting
// either parent removes the holding.
type Asset struct {
	Base
	UserID        uint            `gorm:"not null;index;uniqueIndex:uq_assets_user_investment" json:"user_id"`
	InvestmentID  uint            `gorm:"not null;index;uniqueIndex:uq_assets_user_investment" json:"investment_id"`
	Quantity      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"purchase_price"`

	// Relationships
	User       User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Investment Investment `gorm:"foreignKey:InvestmentID;constraint:OnDelete:CASCADE" json:"investment"`
}
