package httpx_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ariefcatur/go-campus-grub.git/internal/httpx"
	"github.com/ariefcatur/go-campus-grub.git/internal/ledger"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

// capturePublisher records published messages instead of touching Kafka.
type capturePublisher struct {
	keys   [][]byte
	values [][]byte
}

func (c *capturePublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	c.keys = append(c.keys, key)
	c.values = append(c.values, value)
}

func newStorefront(store *ledger.MemStore) (*capturePublisher, http.Handler) {
	return newStorefrontRedis(store, nil)
}

func newStorefrontRedis(store *ledger.MemStore, rdb *redis.Client) (*capturePublisher, http.Handler) {
	pub := &capturePublisher{}
	h := &httpx.StorefrontHandler{
		Offerings: store,
		Users:     store,
		Orders:    store,
		Purchaser: store,
		Producer:  pub,
		Redis:     rdb,
		Service:   "grub-api-test",
	}
	r := httpx.NewRouter()
	h.Register(r)
	return pub, r
}

func seedActive(store *ledger.MemStore, id, item string, storeID int, expiresIn time.Duration) {
	store.SeedOffering(ledger.Offering{
		ID: id, CatererID: "cat-1", StoreID: storeID, ItemName: item, DiscountPercent: 25,
		CreatedAt: time.Now().UTC(), ExpiresAt: time.Now().UTC().Add(expiresIn),
		Status: ledger.OfferingActive,
	})
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCheckoutHappyPath(t *testing.T) {
	store := ledger.NewMemStore()
	seedActive(store, "off-1", "Lasagna", 1, 2*time.Hour)
	store.SeedUser(ledger.User{ID: "stu-1", Email: "amy@campus.edu", Role: ledger.RoleStudent, BalanceCents: 25000})
	pub, r := newStorefront(store)

	w := doJSON(t, r, "POST", "/checkout", map[string]any{
		"student_id":    "stu-1",
		"student_email": "amy@campus.edu",
		"items":         []map[string]any{{"offering_id": "off-1", "amount_cents": 1049}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		OrderID         string `json:"order_id"`
		NewBalanceCents int    `json:"new_balance_cents"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.OrderID)
	require.Equal(t, 23951, resp.NewBalanceCents)

	// one order.placed event, keyed by order id
	require.Len(t, pub.values, 1)
	require.Equal(t, resp.OrderID, string(pub.keys[0]))
	var env ledger.Envelope
	require.NoError(t, json.Unmarshal(pub.values[0], &env))
	require.Equal(t, ledger.EventOrderPlaced, env.EventType)
	var payload ledger.OrderPlacedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	require.Equal(t, "off-1", payload.OfferingID)
	require.Equal(t, 1049, payload.TotalCents)
}

func TestCheckoutRejectsMultipleItems(t *testing.T) {
	store := ledger.NewMemStore()
	_, r := newStorefront(store)

	w := doJSON(t, r, "POST", "/checkout", map[string]any{
		"student_id": "stu-1",
		"items": []map[string]any{
			{"offering_id": "off-1", "amount_cents": 1049},
			{"offering_id": "off-2", "amount_cents": 599},
		},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "one item at a time")
}

func TestCheckoutErrorMessages(t *testing.T) {
	store := ledger.NewMemStore()
	seedActive(store, "off-live", "Lasagna", 1, 2*time.Hour)
	seedActive(store, "off-old", "Loaded Fries", 3, -time.Second)
	store.SeedUser(ledger.User{ID: "poor", Role: ledger.RoleStudent, BalanceCents: 500})
	pub, r := newStorefront(store)

	line := func(offering string) map[string]any {
		return map[string]any{
			"student_id": "poor",
			"items":      []map[string]any{{"offering_id": offering, "amount_cents": 1049}},
		}
	}

	// distinct message per failure kind
	w := doJSON(t, r, "POST", "/checkout", line("off-old"))
	require.Equal(t, http.StatusGone, w.Code)
	require.Contains(t, w.Body.String(), "This deal has expired")

	w = doJSON(t, r, "POST", "/checkout", line("missing"))
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "Offering not found")

	w = doJSON(t, r, "POST", "/checkout", line("off-live"))
	require.Equal(t, http.StatusPaymentRequired, w.Code)
	require.Contains(t, w.Body.String(), "Insufficient Dining Dollars. Balance: $5.00")

	// buy it out, then hit the sold path
	store.SeedUser(ledger.User{ID: "rich", Role: ledger.RoleStudent, BalanceCents: 25000})
	w = doJSON(t, r, "POST", "/checkout", map[string]any{
		"student_id": "rich",
		"items":      []map[string]any{{"offering_id": "off-live", "amount_cents": 1049}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, "POST", "/checkout", line("off-live"))
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "no longer available")

	// only the successful checkout published
	require.Len(t, pub.values, 1)
}

func TestListDealsOnePerStore(t *testing.T) {
	store := ledger.NewMemStore()
	seedActive(store, "pp-soon", "Lasagna", 1, 30*time.Minute)
	seedActive(store, "pp-late", "Penne Arrabbiata", 1, 3*time.Hour)
	seedActive(store, "bb-only", "Classic Cheeseburger", 3, time.Hour)
	_, r := newStorefront(store)

	w := doJSON(t, r, "GET", "/deals", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var deals []struct {
		ID              string `json:"id"`
		StoreName       string `json:"store_name"`
		OriginalCents   int    `json:"original_cents"`
		DiscountedCents int    `json:"discounted_cents"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &deals))
	require.Len(t, deals, 2)
	require.Equal(t, "pp-soon", deals[0].ID)
	require.Equal(t, "Pasta Palace", deals[0].StoreName)
	require.Equal(t, 1399, deals[0].OriginalCents)
	require.Equal(t, 1049, deals[0].DiscountedCents)
	require.Equal(t, "bb-only", deals[1].ID)
}

func TestListOfferingsSoonestFirst(t *testing.T) {
	store := ledger.NewMemStore()
	seedActive(store, "late", "Lasagna", 1, 3*time.Hour)
	seedActive(store, "soon", "Classic Cheeseburger", 3, 10*time.Minute)
	seedActive(store, "gone", "Loaded Fries", 3, -time.Minute)
	_, r := newStorefront(store)

	w := doJSON(t, r, "GET", "/offerings", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var views []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
	require.Len(t, views, 2) // expired one filtered out
	require.Equal(t, "soon", views[0].ID)
	require.Equal(t, "late", views[1].ID)
}

func TestCreateAndGetUser(t *testing.T) {
	store := ledger.NewMemStore()
	_, r := newStorefront(store)

	w := doJSON(t, r, "POST", "/users", map[string]any{
		"id": "stu-9", "email": "Zed@Campus.EDU", "role": "student",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	u, err := store.GetUser(context.Background(), "stu-9")
	require.NoError(t, err)
	require.Equal(t, "zed@campus.edu", u.Email)
	require.Equal(t, ledger.StartingBalanceCents, u.BalanceCents)

	w = doJSON(t, r, "GET", "/users/stu-9", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"balance_cents":25000`)

	w = doJSON(t, r, "GET", "/users/ghost", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, "POST", "/users", map[string]any{"id": "x", "email": "x@y", "role": "admin"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStudentOrdersEndpoint(t *testing.T) {
	store := ledger.NewMemStore()
	seedActive(store, "off-1", "Lasagna", 1, time.Hour)
	store.SeedUser(ledger.User{ID: "stu-1", Role: ledger.RoleStudent, BalanceCents: 25000})
	_, r := newStorefront(store)

	w := doJSON(t, r, "POST", "/checkout", map[string]any{
		"student_id": "stu-1",
		"items":      []map[string]any{{"offering_id": "off-1", "amount_cents": 1049}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, "GET", "/students/stu-1/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var open []ledger.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &open))
	require.Len(t, open, 1)

	w = doJSON(t, r, "GET", "/students/stu-1/orders?picked_up=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var past []ledger.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &past))
	require.Empty(t, past)
}

func TestCreateUserTwiceKeepsDebitedBalance(t *testing.T) {
	store := ledger.NewMemStore()
	seedActive(store, "off-1", "Lasagna", 1, time.Hour)
	_, r := newStorefront(store)

	w := doJSON(t, r, "POST", "/users", map[string]any{
		"id": "stu-1", "email": "amy@campus.edu", "role": "student",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, "POST", "/checkout", map[string]any{
		"student_id": "stu-1",
		"items":      []map[string]any{{"offering_id": "off-1", "amount_cents": 1049}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	// repeated create answers with the stored, debited balance
	w = doJSON(t, r, "POST", "/users", map[string]any{
		"id": "stu-1", "email": "amy@campus.edu", "role": "student",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), `"balance_cents":23951`)
}

func TestUserBalanceServedFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	store := ledger.NewMemStore()
	seedActive(store, "off-1", "Lasagna", 1, time.Hour)
	store.SeedUser(ledger.User{ID: "stu-1", Role: ledger.RoleStudent, BalanceCents: 25000})
	_, r := newStorefrontRedis(store, rdb)

	w := doJSON(t, r, "POST", "/checkout", map[string]any{
		"student_id": "stu-1",
		"items":      []map[string]any{{"offering_id": "off-1", "amount_cents": 1049}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	// checkout primed the cache and the balance endpoint reads it
	cached, err := mr.Get("balance:stu-1")
	require.NoError(t, err)
	require.Equal(t, "23951", cached)

	w = doJSON(t, r, "GET", "/users/stu-1/balance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"balance_cents":23951`)

	// cache wins over the store until it expires
	mr.Set("balance:stu-1", "11111")
	w = doJSON(t, r, "GET", "/users/stu-1/balance", nil)
	require.Contains(t, w.Body.String(), `"balance_cents":11111`)

	// miss falls back to the store and re-primes
	store.SeedUser(ledger.User{ID: "stu-2", Role: ledger.RoleStudent, BalanceCents: 500})
	w = doJSON(t, r, "GET", "/users/stu-2/balance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"balance_cents":500`)
	cached, err = mr.Get("balance:stu-2")
	require.NoError(t, err)
	require.Equal(t, "500", cached)

	w = doJSON(t, r, "GET", "/users/ghost/balance", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
