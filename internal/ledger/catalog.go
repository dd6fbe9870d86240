package ledger

import "sort"

// Static campus catalog. Stores and base prices are configuration, not
// ledger state; the ledger only references them by id/name.

type Store struct {
	ID      int
	Name    string
	Cuisine string
	ETAMins int
}

type MenuItem struct {
	ID         string
	StoreID    int
	Name       string
	PriceCents int
}

var Stores = []Store{
	{ID: 1, Name: "Pasta Palace", Cuisine: "Italian", ETAMins: 25},
	{ID: 2, Name: "Sizzling Wok", Cuisine: "Asian Fusion", ETAMins: 20},
	{ID: 3, Name: "Burger Barn", Cuisine: "American", ETAMins: 18},
	{ID: 4, Name: "Curry Corner", Cuisine: "Indian", ETAMins: 30},
}

var MenuItems = []MenuItem{
	{ID: "pp1", StoreID: 1, Name: "Spaghetti Carbonara", PriceCents: 1299},
	{ID: "pp2", StoreID: 1, Name: "Fettuccine Alfredo", PriceCents: 1199},
	{ID: "pp3", StoreID: 1, Name: "Lasagna", PriceCents: 1399},
	{ID: "pp4", StoreID: 1, Name: "Penne Arrabbiata", PriceCents: 1099},
	{ID: "sw1", StoreID: 2, Name: "Kung Pao Chicken", PriceCents: 1099},
	{ID: "sw2", StoreID: 2, Name: "Vegetable Lo Mein", PriceCents: 899},
	{ID: "sw3", StoreID: 2, Name: "Sweet & Sour Pork", PriceCents: 1149},
	{ID: "bb1", StoreID: 3, Name: "Classic Cheeseburger", PriceCents: 999},
	{ID: "bb2", StoreID: 3, Name: "Loaded Fries", PriceCents: 599},
	{ID: "bb3", StoreID: 3, Name: "Hand-Spun Shake", PriceCents: 449},
	{ID: "cc1", StoreID: 4, Name: "Chicken Tikka Masala", PriceCents: 1399},
	{ID: "cc2", StoreID: 4, Name: "Vegetable Biryani", PriceCents: 1149},
	{ID: "cc3", StoreID: 4, Name: "Tandoori Roti", PriceCents: 299},
}

func StoreByID(id int) (Store, bool) {
	for _, s := range Stores {
		if s.ID == id {
			return s, true
		}
	}
	return Store{}, false
}

func ItemByID(itemID string) (MenuItem, bool) {
	for _, it := range MenuItems {
		if it.ID == itemID {
			return it, true
		}
	}
	return MenuItem{}, false
}

// PriceCentsFor looks up the base menu price by item name; offering rows
// carry the name, not the menu item id.
func PriceCentsFor(itemName string) (int, bool) {
	for _, it := range MenuItems {
		if it.Name == itemName {
			return it.PriceCents, true
		}
	}
	return 0, false
}

// DiscountedCents applies a percent discount to a cents price, rounding
// half up.
func DiscountedCents(priceCents, discountPercent int) int {
	return (priceCents*(100-discountPercent) + 50) / 100
}

// DealPerStore picks one offering per store from an active set: the one
// expiring soonest. Input order does not matter; output is sorted by
// expiry ascending so the storefront can render soonest-ending first.
func DealPerStore(active []Offering) []Offering {
	byStore := map[int]Offering{}
	for _, o := range active {
		cur, ok := byStore[o.StoreID]
		if !ok || o.ExpiresAt.Before(cur.ExpiresAt) {
			byStore[o.StoreID] = o
		}
	}
	out := make([]Offering, 0, len(byStore))
	for _, o := range byStore {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	return out
}
