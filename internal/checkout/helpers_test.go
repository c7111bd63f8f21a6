package checkout

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jengamart/jengamart-backend/pkg/config"
	"github.com/jengamart/jengamart-backend/pkg/db/models"
)

func TestGroupItemsByVendor(t *testing.T) {
	vendorA := uuid.New()
	vendorB := uuid.New()

	items := []models.CartItem{
		{ID: uuid.New(), VendorID: vendorA, Name: "USB cable", UnitPriceCents: 500, Qty: 2},
		{ID: uuid.New(), VendorID: vendorB, Name: "Kikoy", UnitPriceCents: 1500, Qty: 1},
		{ID: uuid.New(), VendorID: vendorA, Name: "Phone case", UnitPriceCents: 900, Qty: 1},
	}

	vendorIDs, groups := GroupItemsByVendor(items)

	assert.Len(t, vendorIDs, 2)
	assert.Len(t, groups[vendorA], 2)
	assert.Len(t, groups[vendorB], 1)

	// Same input always yields the same vendor order.
	again, _ := GroupItemsByVendor(items)
	assert.Equal(t, vendorIDs, again)

	// No line is dropped or duplicated across groups.
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	assert.Equal(t, len(items), total)
}

func TestGroupItemsByVendorEmpty(t *testing.T) {
	vendorIDs, groups := GroupItemsByVendor(nil)
	assert.Empty(t, vendorIDs)
	assert.Empty(t, groups)
}

func TestSubtotalCents(t *testing.T) {
	items := []models.CartItem{
		{UnitPriceCents: 500, Qty: 2},
		{UnitPriceCents: 900, Qty: 3},
	}
	assert.Equal(t, int64(3700), SubtotalCents(items))
	assert.Equal(t, int64(0), SubtotalCents(nil))
}

func TestShippingFeeCents(t *testing.T) {
	cfg := config.ShippingConfig{FlatFeeCents: 500, FreeThresholdCents: 500000}

	tests := []struct {
		name     string
		subtotal int64
		want     int64
	}{
		{name: "below threshold pays flat fee", subtotal: 3700, want: 500},
		{name: "at threshold ships free", subtotal: 500000, want: 0},
		{name: "above threshold ships free", subtotal: 750000, want: 0},
		{name: "zero subtotal pays flat fee", subtotal: 0, want: 500},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ShippingFeeCents(tc.subtotal, cfg))
		})
	}
}

func TestShippingFeeCentsNoThreshold(t *testing.T) {
	cfg := config.ShippingConfig{FlatFeeCents: 500, FreeThresholdCents: 0}
	assert.Equal(t, int64(500), ShippingFeeCents(10_000_000, cfg))
}
