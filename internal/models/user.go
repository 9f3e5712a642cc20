package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// RiskProfile represents a user's investment risk tolerance.
type RiskProfile string

const (
	RiskProfileConservative RiskProfile = "Conservative"
	RiskProfileModerate     RiskProfile = "Moderate"
	RiskProfileAggressive   RiskProfile = "Aggressive"
)

// AccountType represents the type of user account.
type AccountType string

const (
	AccountTypePersonal AccountType = "Personal"
	AccountTypeBusiness AccountType = "Business"
)

// KYCStatus represents the progress of a user's identity verification.
type KYCStatus string

const (
	KYCStatusNotStarted KYCStatus = "Not Started"
	KYCStatusInProgress KYCStatus = "In Progress"
	KYCStatusCompleted  KYCStatus = "Completed"
)

// User represents an account holder.
type User struct {
	Base
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	// Profile
	FullName       string     `json:"full_name"`
	PhoneNumber    string     `gorm:"size:20" json:"phone_number,omitempty"`
	Address        string     `json:"address,omitempty"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	ProfilePicture string     `json:"profile_picture,omitempty"`

	// Account & authentication
	IsVerified  bool       `gorm:"default:false" json:"is_verified"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	// Investment profile
	RiskProfile     RiskProfile         `gorm:"size:15" json:"risk_profile,omitempty"`
	InvestmentGoals string              `json:"investment_goals,omitempty"`
	PortfolioValue  decimal.Decimal     `gorm:"type:decimal(20,2);not null;default:0" json:"portfolio_value"`
	NetWorth        decimal.NullDecimal `gorm:"type:decimal(20,2)" json:"net_worth,omitempty"`
	AccountType     AccountType         `gorm:"size:10;not null;default:'Personal'" json:"account_type"`

	// Preferences
	PreferredInvestments    datatypes.JSON `json:"preferred_investments,omitempty"`
	NotificationPreferences datatypes.JSON `json:"notification_preferences,omitempty"`
	EmailSubscriptions      bool           `gorm:"default:true" json:"email_subscriptions"`
	DailyDigestOptIn        bool           `gorm:"default:false" json:"daily_digest_opt_in"`

	// Security and compliance
	KYCStatus              KYCStatus  `gorm:"size:15;not null;default:'Not Started'" json:"kyc_status"`
	TwoFactorEnabled       bool       `gorm:"default:false" json:"two_factor_enabled"`
	IsSuspended            bool       `gorm:"default:false" json:"-"`
	FailedLoginAttempts    int        `gorm:"default:0;check:failed_login_attempts >= 0" json:"-"`
	LastFailedLoginAttempt *time.Time `json:"-"`
	RefreshTokenHash       string     `gorm:"size:64" json:"-"`

	// Relationships
	Watchlist []Investment `gorm:"many2many:user_watchlist" json:"watchlist,omitempty"`
	Assets    []Asset      `gorm:"foreignKey:UserID" json:"assets,omitempty"`
}

// ValidRiskProfile reports whether v is a member of the RiskProfile set.
// The empty string is allowed because the field is optional.
func ValidRiskProfile(v RiskProfile) bool {
	switch v {
	case "", RiskProfileConservative, RiskProfileModerate, RiskProfileAggressive:
		return true
	}
	return false
}

// ValidAccountType reports whether v is a member of the AccountType set.
func ValidAccountType(v AccountType) bool {
	switch v {
	case AccountTypePersonal, AccountTypeBusiness:
		return true
	}
	return false
}

// ValidKYCStatus reports whether v is a member of the KYCStatus set.
func ValidKYCStatus(v KYCStatus) bool {
	switch v {
	case KYCStatusNotStarted, KYCStatusInProgress, KYCStatusCompleted:
		return true
	}
	return false
}
