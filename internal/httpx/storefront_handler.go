package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-campus-grub.git/internal/ledger"
	"github.com/ariefcatur/go-campus-grub.git/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/go-campus-grub.git/internal/kafka"
)

// OfferingStore is everything the handlers need from the offerings side:
// the queue-release slice plus the caterer listing.
type OfferingStore interface {
	ledger.OfferingStore
	ListCatererOfferings(ctx context.Context, catererID string) ([]ledger.Offering, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, id, email string, role ledger.Role) (ledger.User, error)
	GetUser(ctx context.Context, id string) (ledger.User, error)
}

type OrderStore interface {
	GetOrder(ctx context.Context, id string) (ledger.Order, error)
	ListStudentOrders(ctx context.Context, studentID string, pickedUp bool) ([]ledger.Order, error)
	ListAllOrders(ctx context.Context) ([]ledger.Order, error)
	MarkPickedUp(ctx context.Context, orderID string) (ledger.Order, error)
}

type Purchaser interface {
	Purchase(ctx context.Context, in ledger.PurchaseInput) (ledger.PurchaseResult, error)
}

// Publisher matches the kafka producer; tests swap in a capture.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// StorefrontHandler serves the student side: browse, checkout, history.
type StorefrontHandler struct {
	Offerings OfferingStore
	Users     UserStore
	Orders    OrderStore
	Purchaser Purchaser
	Producer  Publisher
	Redis     *redis.Client
	Service   string
}

func (h *StorefrontHandler) Register(r *chi.Mux) {
	r.Get("/offerings", h.listOfferings)
	r.Get("/deals", h.listDeals)
	r.Post("/users", h.createUser)
	r.Get("/users/{id}", h.getUser)
	r.Get("/users/{id}/balance", h.userBalance)
	r.Post("/checkout", h.checkout)
	r.Get("/students/{id}/orders", h.studentOrders)
}

type offeringView struct {
	ID              string    `json:"id"`
	StoreID         int       `json:"store_id"`
	StoreName       string    `json:"store_name"`
	ItemName        string    `json:"item_name"`
	DiscountPercent int       `json:"discount_percent"`
	OriginalCents   int       `json:"original_cents"`
	DiscountedCents int       `json:"discounted_cents"`
	ExpiresAt       time.Time `json:"expires_at"`
}

func toView(o ledger.Offering) offeringView {
	v := offeringView{
		ID:              o.ID,
		StoreID:         o.StoreID,
		ItemName:        o.ItemName,
		DiscountPercent: o.DiscountPercent,
		ExpiresAt:       o.ExpiresAt,
	}
	if s, ok := ledger.StoreByID(o.StoreID); ok {
		v.StoreName = s.Name
	}
	if price, ok := ledger.PriceCentsFor(o.ItemName); ok {
		v.OriginalCents = price
		v.DiscountedCents = ledger.DiscountedCents(price, o.DiscountPercent)
	}
	return v
}

func (h *StorefrontHandler) listOfferings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	offs, err := h.Offerings.ListActiveOfferings(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]offeringView, 0, len(offs))
	for _, o := range offs {
		views = append(views, toView(o))
	}
	writeJSON(w, http.StatusOK, views)
}

// listDeals returns one offering per store, soonest expiring, enriched with
// catalog pricing. The snapshot is cached briefly in Redis; expiry is still
// enforced at purchase time, the cache is only a read-path shortcut.
func (h *StorefrontHandler) listDeals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, redisx.KeyDeals).Result(); err == nil && s != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(s))
			return
		}
	}

	offs, err := h.Offerings.ListActiveOfferings(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	deals := ledger.DealPerStore(offs)
	views := make([]offeringView, 0, len(deals))
	for _, o := range deals {
		views = append(views, toView(o))
	}
	body, _ := json.Marshal(views)
	if h.Redis != nil {
		_ = h.Redis.Set(ctx, redisx.KeyDeals, body, redisx.TTLDeals).Err()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

type createUserReq struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (h *StorefrontHandler) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.ID == "" || req.Email == "" || req.Role == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	u, err := h.Users.CreateUser(ctx, req.ID, req.Email, ledger.Role(req.Role))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id": u.ID, "email": u.Email, "role": u.Role, "balance_cents": u.BalanceCents,
	})
}

func (h *StorefrontHandler) getUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	u, err := h.Users.GetUser(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id": u.ID, "email": u.Email, "role": u.Role, "balance_cents": u.BalanceCents,
	})
}

type cartLine struct {
	OfferingID  string `json:"offering_id"`
	AmountCents int    `json:"amount_cents"`
}

type checkoutReq struct {
	StudentID    string     `json:"student_id"`
	StudentEmail string     `json:"student_email"`
	Items        []cartLine `json:"items"`
}

type checkoutResp struct {
	OrderID         string `json:"order_id"`
	NewBalanceCents int    `json:"new_balance_cents"`
}

func (h *StorefrontHandler) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.StudentID == "" || len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}
	// Offerings are single-unit deals; the coordinator takes exactly one.
	if len(req.Items) > 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Please checkout one item at a time"})
		return
	}
	line := req.Items[0]
	if line.OfferingID == "" || line.AmountCents <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cart item"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Purchaser.Purchase(ctx, ledger.PurchaseInput{
		OfferingID:   line.OfferingID,
		StudentID:    req.StudentID,
		StudentEmail: req.StudentEmail,
		AmountCents:  line.AmountCents,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if h.Redis != nil {
		// refresh the balance cache and drop the stale deals snapshot
		_ = h.Redis.Set(ctx, redisKeyBalance(req.StudentID), res.NewBalanceCents, redisx.TTLBalance).Err()
		_ = h.Redis.Del(ctx, redisx.KeyDeals).Err()
	}

	if h.Producer != nil {
		ev := ledger.Envelope{
			EventID:       uuid.NewString(),
			EventType:     ledger.EventOrderPlaced,
			EventVersion:  1,
			OccurredAt:    time.Now().UTC(),
			Producer:      h.Service,
			TraceID:       r.Header.Get("X-Request-Id"),
			CorrelationID: res.OrderID,
		}
		ev.Payload = kafkax.MustMarshal(ledger.OrderPlacedPayload{
			OrderID:         res.OrderID,
			OfferingID:      line.OfferingID,
			StudentID:       req.StudentID,
			StudentEmail:    req.StudentEmail,
			CatererID:       res.CatererID,
			StoreID:         res.StoreID,
			ItemName:        res.ItemName,
			TotalCents:      line.AmountCents,
			NewBalanceCents: res.NewBalanceCents,
		})
		h.Producer.Publish(ledger.PartitionKey(res.OrderID), kafkax.MustMarshal(ev),
			kafkago.Header{Key: "x-event-type", Value: []byte(ledger.EventOrderPlaced)},
			kafkago.Header{Key: "x-event-version", Value: []byte("1")},
		)
	}

	writeJSON(w, http.StatusOK, checkoutResp{OrderID: res.OrderID, NewBalanceCents: res.NewBalanceCents})
}

func redisKeyBalance(userID string) string { return fmt.Sprintf(redisx.KeyBalance, userID) }

// userBalance is the cheap balance refresh the storefront polls after a
// checkout. It serves the cached value checkout wrote and only falls back
// to the store on a miss, re-priming the cache when it does.
func (h *StorefrontHandler) userBalance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	id := chi.URLParam(r, "id")
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, redisKeyBalance(id)).Result(); err == nil {
			if cents, perr := strconv.Atoi(s); perr == nil {
				writeJSON(w, http.StatusOK, map[string]int{"balance_cents": cents})
				return
			}
		}
	}

	u, err := h.Users.GetUser(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if h.Redis != nil {
		_ = h.Redis.Set(ctx, redisKeyBalance(id), u.BalanceCents, redisx.TTLBalance).Err()
	}
	writeJSON(w, http.StatusOK, map[string]int{"balance_cents": u.BalanceCents})
}

func (h *StorefrontHandler) studentOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	pickedUp := r.URL.Query().Get("picked_up") == "true"
	list, err := h.Orders.ListStudentOrders(ctx, chi.URLParam(r, "id"), pickedUp)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
