package checkout

import (
	"sort"

	"github.com/google/uuid"

	"github.com/jengamart/jengamart-backend/pkg/config"
	"github.com/jengamart/jengamart-backend/pkg/db/models"
)

// GroupItemsByVendor partitions cart lines by fulfilling vendor. The returned
// vendor order is sorted so splitting is deterministic.
func GroupItemsByVendor(items []models.CartItem) ([]uuid.UUID, map[uuid.UUID][]models.CartItem) {
	groups := make(map[uuid.UUID][]models.CartItem)
	for _, item := range items {
		groups[item.VendorID] = append(groups[item.VendorID], item)
	}

	vendorIDs := make([]uuid.UUID, 0, len(groups))
	for vendorID := range groups {
		vendorIDs = append(vendorIDs, vendorID)
	}
	sort.Slice(vendorIDs, func(i, j int) bool {
		return vendorIDs[i].String() < vendorIDs[j].String()
	})

	return vendorIDs, groups
}

// SubtotalCents sums line revenue for one vendor's share of the cart.
func SubtotalCents(items []models.CartItem) int64 {
	var subtotal int64
	for _, item := range items {
		subtotal += item.UnitPriceCents * int64(item.Qty)
	}
	return subtotal
}

// ShippingFeeCents applies the flat per-vendor fee, waived above the
// free-shipping threshold.
func ShippingFeeCents(subtotalCents int64, cfg config.ShippingConfig) int64 {
	if cfg.FreeThresholdCents > 0 && subtotalCents >= int64(cfg.FreeThresholdCents) {
		return 0
	}
	return int64(cfg.FlatFeeCents)
}
