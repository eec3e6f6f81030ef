package mysql

import (
	"testing"
	"time"

	contractDomain "creator-marketplace/internal/domain/contract"
	offerDomain "creator-marketplace/internal/domain/offer"
	"creator-marketplace/internal/domain/pricing"
	"creator-marketplace/internal/testutil/dbtest"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return dbtest.Open(t, Models()...)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func makeOffer(offerID, brandID, creatorID string, expires time.Time) *offerDomain.Offer {
	return &offerDomain.Offer{
		OfferID:       offerID,
		BrandID:       brandID,
		CreatorID:     creatorID,
		Title:         "launch video",
		Budget:        dec("1000.00"),
		EstimatedDays: 7,
		Status:        offerDomain.StatusPending,
		ExpiresAt:     expires.UTC(),
	}
}

func makeContract(contractID, offerID, creatorID string) *contractDomain.Contract {
	split := pricing.DefaultPolicy().AtAcceptance(dec("1000.00"))
	return contractDomain.New(contractID, offerID, "BR-1", creatorID, split, time.Now().UTC().Add(7*24*time.Hour))
}
