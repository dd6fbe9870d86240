package ledger_test

import (
	"testing"
	"time"

	"github.com/ariefcatur/go-campus-grub.git/internal/ledger"
	"github.com/stretchr/testify/require"
)

func TestPriceLookup(t *testing.T) {
	p, ok := ledger.PriceCentsFor("Lasagna")
	require.True(t, ok)
	require.Equal(t, 1399, p)

	_, ok = ledger.PriceCentsFor("Mystery Meat")
	require.False(t, ok)

	it, ok := ledger.ItemByID("sw3")
	require.True(t, ok)
	require.Equal(t, "Sweet & Sour Pork", it.Name)
	require.Equal(t, 2, it.StoreID)
}

func TestDiscountedCents(t *testing.T) {
	require.Equal(t, 1049, ledger.DiscountedCents(1399, 25))
	require.Equal(t, 799, ledger.DiscountedCents(999, 20))
	require.Equal(t, 769, ledger.DiscountedCents(1099, 30))
	require.Equal(t, 0, ledger.DiscountedCents(1399, 100))
}

func TestDealPerStore(t *testing.T) {
	now := time.Now().UTC()
	mk := func(id string, storeID int, in time.Duration) ledger.Offering {
		return ledger.Offering{ID: id, StoreID: storeID, ItemName: id, ExpiresAt: now.Add(in), Status: ledger.OfferingActive}
	}
	active := []ledger.Offering{
		mk("a-late", 1, 3*time.Hour),
		mk("a-soon", 1, 30*time.Minute),
		mk("b-only", 2, 2*time.Hour),
		mk("c-soon", 3, 10*time.Minute),
		mk("c-late", 3, time.Hour),
	}

	deals := ledger.DealPerStore(active)
	require.Len(t, deals, 3)
	// soonest-expiring first, one per store
	require.Equal(t, "c-soon", deals[0].ID)
	require.Equal(t, "a-soon", deals[1].ID)
	require.Equal(t, "b-only", deals[2].ID)
}

func TestDealPerStoreEmpty(t *testing.T) {
	require.Empty(t, ledger.DealPerStore(nil))
}
