package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "quantfolio/internal/errors"
)

// TransactionType represents the direction of a ledger entry.
type TransactionType string

const (
	TransactionTypeBuy  TransactionType = "buy"
	TransactionTypeSell TransactionType = "sell"
)

// Transaction represents an immutable buy/sell ledger entry. Rows are
// append-only: the BeforeUpdate hook rejects any mutation after creation.
type Transaction struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	UserID       uint            `gorm:"not null;index" json:"user_id"`
	InvestmentID uint            `gorm:"not null;index" json:"investment_id"`
	Type         TransactionType `gorm:"size:10;not null" json:"type"`
	Quantity     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	Price        decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"price"`
	CreatedAt    time.Time       `json:"created_at"`

	// Relationships
	User       User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Investment Investment `gorm:"foreignKey:InvestmentID;constraint:OnDelete:CASCADE" json:"investment"`
}

// BeforeUpdate enforces the append-only law for ledger entries.
func (t *Transaction) BeforeUpdate(tx *gorm.DB) error {
	return apperrors.ErrTransactionImmutable
}

// ValidTransactionType reports whether v is a member of the TransactionType set.
func ValidTransactionType(v TransactionType) bool {
	switch v {
	case TransactionTypeBuy, TransactionTypeSell:
		return true
	}
	return false
}
