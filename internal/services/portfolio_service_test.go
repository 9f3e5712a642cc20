package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"quantfolio/internal/models"
	"quantfolio/internal/pagination"
	"quantfolio/internal/testutil"
)

func newPortfolioService(db *gorm.DB) PortfolioServicer {
	return NewPortfolioService(db, NewInvestmentService(db))
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

func TestRecordBuy(t *testing.T) {
	t.Run("creates_holding_and_ledger_entry", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newPortfolioService(db)

		user := testutil.CreateTestUser(t, db)
		investment := testutil.CreateTestInvestment(t, db)

		tx, err := svc.RecordBuy(user.ID, investment.ID, dec(t, "2.5"), dec(t, "100.00"))
		testutil.AssertNoError(t, err)

		if tx.Type != models.TransactionTypeBuy {
			t.Errorf("expected buy transaction, got %s", tx.Type)
		}
		testutil.AssertDecimalEqual(t, tx.Quantity, "2.5")
		testutil.AssertDecimalEqual(t, tx.Price, "100.00")

		var asset models.Asset
		err = db.Where("user_id = ? AND investment_id = ?", user.ID, investment.ID).First(&asset).Error
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, asset.Quantity, "2.5")
		testutil.AssertDecimalEqual(t, asset.PurchasePrice, "100.00")
	})

	t.Run("second_buy_averages_purchase_price", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newPortfolioService(db)

		user := testutil.CreateTestUser(t, db)
		investment := testutil.CreateTestInvestment(t, db)

		_, err := svc.RecordBuy(user.ID, investment.ID, dec(t, "10"), dec(t, "100.00"))
		testutil.AssertNoError(t, err)
		_, err = svc.RecordBuy(user.ID, investment.ID, dec(t, "10"), dec(t, "200.00"))
		testutil.AssertNoError(t, err)

		var asset models.Asset
		err = db.Where("user_id = ? AND investment_id = ?", user.ID, investment.ID).First(&asset).Error
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, asset.Quantity, "20")
		// (10*100 + 10*200) / 20 = 150
		testutil.AssertDecimalEqual(t, asset.PurchasePrice, "150.00")

		var count int64
		db.Model(&models.Asset{}).Where("user_id = ?", user.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected a single holding per (user, investment), got %d", count)
		}
	})

	t.Run("unknown_investment", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newPortfolioService(db)

		user := testutil.CreateTestUser(t, db)
		_, err := svc.RecordBuy(user.ID, 99999, dec(t, "1"), dec(t, "10.00"))
		testutil.AssertAppError(t, err, "INVESTMENT_NOT_FOUND")
	})

	t.Run("rejects_bad_decimals", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newPortfolioService(db)

		user := testutil.CreateTestUser(t, db)
		investment := testutil.CreateTestInvestment(t, db)

		cases := []struct {
			name     string
			quantity string
			price    string
		}{
			{"zero_quantity", "0", "10.00"},
			{"negative_quantity", "-1", "10.00"},
			{"quantity_scale_overflow", "1.00001", "10.00"},
			{"quantity_digit_overflow", "123456789012345678901", "10.00"},
			{"quantity_exponent_overflow", "1e25", "10.00"},
			{"quantity_coefficient_exponent_overflow", "123e18", "10.00"},
			{"negative_price", "1", "-0.01"},
			{"price_scale_overflow", "1", "10.001"},
			{"price_digit_overflow", "1", "123456789012345678901.00"},
			{"price_exponent_overflow", "1", "1e25"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.RecordBuy(user.ID, investment.ID, dec(t, tc.quantity), dec(t, tc.price))
				testutil.AssertAppError(t, err, "INVALID_INPUT")
			})
		}

		// Nothing may have reached the ledger.
		var count int64
		db.Model(&models.Transaction{}).Where("user_id = ?", user.ID).Count(&count)
		if count != 0 {
			t.Errorf("expected no ledger entries after rejected buys, got %d", count)
		}
	})

	t.Run("zero_price_allowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newPortfolioService(db)

		user := testutil.CreateTestUser(t, db)
		investment := testutil.CreateTestInvestment(t, db)

		_, err := svc.RecordBuy(user.ID, investment.ID, dec(t, "1"), dec(t, "0"))
		testutil.AssertNoError(t, err)
	})

	t.Run("twenty_digits_allowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newPortfolioService(db)

		user := testutil.CreateTestUser(t, db)
		investment := testutil.CreateTestInvestment(t, db)

		// Exactly at the cap, in both plain and exponent notation.
		_, err := svc.RecordBuy(user.ID, investment.ID, dec(t, "12345678901234567890"), dec(t, "10.00"))
		testutil.AssertNoError(t, err)
		_, err = svc.RecordBuy(user.ID, investment.ID, dec(t, "1e19"), dec(t, "10.00"))
		testutil.AssertNoError(t, err)
	})
}

func TestRecordSell(t *testing.T) {
	t.Run("decrements_holding", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newPortfolioService(db)

		user := testutil.CreateTestUser(t, db)
		investment := testutil.CreateTestInvestment(t, db)
		testutil.CreateTestAsset(t, db, user.ID, investment.ID) // 10.0000 @ 100.00

		tx, err := svc.RecordSell(user.ID, investment.ID, dec(t, "4"), dec(t, "110.00"))
		testutil.AssertNoError(t, err)
		if tx.Type != models.TransactionTypeSell {
			t.Errorf("expected sell transaction, got %s", tx.Type)
		}

		var asset models.Asset
		err = db.Where("user_id = ? AND investment_id = ?", user.ID, investment.ID).First(&asset).Error
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, asset.Quantity, "6")
		// The cost basis is untouched by sells.
		testutil.AssertDecimalEqual(t, asset.PurchasePrice, "100.00")
	})

	t.Run("selling_everything_removes_holding", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newPortfolioService(db)

		user := testutil.CreateTestUser(t, db)
		investment := testutil.CreateTestInvestment(t, db)
		testutil.CreateTestAsset(t, db, user.ID, investment.ID)

		_, err := svc.RecordSell(user.ID, investment.ID, dec(t, "10"), dec(t, "100.00"))
		testutil.AssertNoError(t, err)

		var count int64
		db.Model(&models.Asset{}).Where("user_id = ?", user.ID).Count(&count)
		if count != 0 {
			t.Error("expected holding removed after full sell")
		}

		// The ledger keeps the history.
		db.Model(&models.Transaction{}).Where("user_id = ?", user.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected sell ledger entry to remain, got %d", count)
		}
	})

	t.Run("insufficient_quantity", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newPortfolioService(db)

		user := testutil.CreateTestUser(t, db)
		investment := testutil.CreateTestInvestment(t, db)
		testutil.CreateTestAsset(t, db, user.ID, investment.ID)

		_, err := svc.RecordSell(user.ID, investment.ID, dec(t, "10.0001"), dec(t, "100.00"))
		testutil.AssertAppError(t, err, "INSUFFICIENT_QUANTITY")

		// The rejected sell must not touch the holding or the ledger.
		var asset models.Asset
		testutil.AssertNoError(t, db.Where("user_id = ?", user.ID).First(&asset).Error)
		testutil.AssertDecimalEqual(t, asset.Quantity, "10.0000")

		var count int64
		db.Model(&models.Transaction{}).Where("user_id = ?", user.ID).Count(&count)
		if count != 0 {
			t.Errorf("expected no ledger entry after rejected sell, got %d", count)
		}
	})

	t.Run("no_holding", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newPortfolioService(db)

		user := testutil.CreateTestUser(t, db)
		investment := testutil.CreateTestInvestment(t, db)

		_, err := svc.RecordSell(user.ID, investment.ID, dec(t, "1"), dec(t, "100.00"))
		testutil.AssertAppError(t, err, "ASSET_NOT_FOUND")
	})
}

func TestTransactionImmutability(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	investment := testutil.CreateTestInvestment(t, db)
	tx := testutil.CreateTestTransaction(t, db, user.ID, investment.ID, models.TransactionTypeBuy)

	err := db.Model(tx).Update("price", dec(t, "999.99")).Error
	if err == nil {
		t.Fatal("expected update on a ledger entry to fail")
	}

	var fresh models.Transaction
	testutil.AssertNoError(t, db.First(&fresh, tx.ID).Error)
	testutil.AssertDecimalEqual(t, fresh.Price, "50.00")
}

func TestGetUserTransactions(t *testing.T) {
	t.Run("newest_first", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newPortfolioService(db)

		user := testutil.CreateTestUser(t, db)
		investment := testutil.CreateTestInvestment(t, db)
		first := testutil.CreateTestTransaction(t, db, user.ID, investment.ID, models.TransactionTypeBuy)
		second := testutil.CreateTestTransaction(t, db, user.ID, investment.ID, models.TransactionTypeSell)

		page, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)

		if page.TotalItems != 2 {
			t.Fatalf("expected 2 ledger entries, got %d", page.TotalItems)
		}
		if page.Data[0].ID != second.ID || page.Data[1].ID != first.ID {
			t.Error("expected ledger entries ordered newest first")
		}
	})

	t.Run("filter_by_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newPortfolioService(db)

		user := testutil.CreateTestUser(t, db)
		investment := testutil.CreateTestInvestment(t, db)
		testutil.CreateTestTransaction(t, db, user.ID, investment.ID, models.TransactionTypeBuy)
		testutil.CreateTestTransaction(t, db, user.ID, investment.ID, models.TransactionTypeSell)

		sell := models.TransactionTypeSell
		page, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{Type: &sell})
		testutil.AssertNoError(t, err)

		if page.TotalItems != 1 {
			t.Fatalf("expected 1 sell entry, got %d", page.TotalItems)
		}
		if page.Data[0].Type != models.TransactionTypeSell {
			t.Errorf("expected sell entry, got %s", page.Data[0].Type)
		}
	})

	t.Run("scoped_to_owner", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newPortfolioService(db)

		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		investment := testutil.CreateTestInvestment(t, db)
		testutil.CreateTestTransaction(t, db, owner.ID, investment.ID, models.TransactionTypeBuy)

		page, err := svc.GetUserTransactions(other.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 0 {
			t.Errorf("expected no entries for the other user, got %d", page.TotalItems)
		}
	})
}

func TestGetTransactionByID(t *testing.T) {
	t.Run("owned", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newPortfolioService(db)

		user := testutil.CreateTestUser(t, db)
		investment := testutil.CreateTestInvestment(t, db)
		created := testutil.CreateTestTransaction(t, db, user.ID, investment.ID, models.TransactionTypeBuy)

		tx, err := svc.GetTransactionByID(user.ID, created.ID)
		testutil.AssertNoError(t, err)
		if tx.Investment.ID != investment.ID {
			t.Error("expected catalog entry preloaded on the ledger entry")
		}
	})

	t.Run("not_owned", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newPortfolioService(db)

		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		investment := testutil.CreateTestInvestment(t, db)
		created := testutil.CreateTestTransaction(t, db, owner.ID, investment.ID, models.TransactionTypeBuy)

		_, err := svc.GetTransactionByID(other.ID, created.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestGetUserAssets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newPortfolioService(db)

	user := testutil.CreateTestUser(t, db)
	investment := testutil.CreateTestInvestment(t, db)
	testutil.CreateTestAsset(t, db, user.ID, investment.ID)

	page, err := svc.GetUserAssets(user.ID, pagination.PageRequest{})
	testutil.AssertNoError(t, err)

	if page.TotalItems != 1 {
		t.Fatalf("expected 1 holding, got %d", page.TotalItems)
	}
	if page.Data[0].Investment.Name == "" {
		t.Error("expected catalog entry preloaded on the holding")
	}
}
