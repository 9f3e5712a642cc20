package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"quantfolio/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique
// username/email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	n := nextID()
	return CreateTestUserWithCredentials(t, db, fmt.Sprintf("user%d", n), fmt.Sprintf("user%d@test.com", n))
}

// CreateTestUserWithCredentials creates a user with the given username and email.
// The password is always "password123" hashed with bcrypt.MinCost.
func CreateTestUserWithCredentials(t *testing.T, db *gorm.DB, username, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username:    username,
		Email:       email,
		Password:    string(hash),
		AccountType: models.AccountTypePersonal,
		KYCStatus:   models.KYCStatusNotStarted,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestInvestment creates a catalog entry.
func CreateTestInvestment(t *testing.T, db *gorm.DB) *models.Investment {
	t.Helper()

	investment := &models.Investment{
		Name: fmt.Sprintf("Test Investment %d", nextID()),
		Type: "stock",
	}
	if err := db.Create(investment).Error; err != nil {
		t.Fatalf("failed to create test investment: %v", err)
	}
	return investment
}

// CreateTestAsset creates a holding of the given investment for the user.
func CreateTestAsset(t *testing.T, db *gorm.DB, userID, investmentID uint) *models.Asset {
	t.Helper()

	asset := &models.Asset{
		UserID:        userID,
		InvestmentID:  investmentID,
		Quantity:      decimal.RequireFromString("10.0000"),
		PurchasePrice: decimal.RequireFromString("100.00"),
	}
	if err := db.Create(asset).Error; err != nil {
		t.Fatalf("failed to create test asset: %v", err)
	}
	return asset
}

// CreateTestTransaction creates a ledger entry of the given type.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID, investmentID uint, txType models.TransactionType) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:       userID,
		InvestmentID: investmentID,
		Type:         txType,
		Quantity:     decimal.RequireFromString("1.0000"),
		Price:        decimal.RequireFromString("50.00"),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestActivity creates an activity log entry.
func CreateTestActivity(t *testing.T, db *gorm.DB, userID uint, activityType string) *models.ActivityLog {
	t.Helper()

	entry := &models.ActivityLog{
		UserID:       userID,
		ActivityType: activityType,
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create test activity entry: %v", err)
	}
	return entry
}
