package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/ariefcatur/go-campus-grub.git/internal/ledger"
	"github.com/ariefcatur/go-campus-grub.git/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/go-campus-grub.git/internal/kafka"
)

// CatererHandler serves the caterer side: the per-session draft queue, the
// offering history, and the order board with the pickup transition.
type CatererHandler struct {
	Offerings OfferingStore
	Orders    OrderStore
	Producer  Publisher
	Redis     *redis.Client
	Service   string

	mu     sync.Mutex
	queues map[string]*ledger.Queue
}

func (h *CatererHandler) Register(r *chi.Mux) {
	r.Get("/caterers/{id}/offerings", h.catererOfferings)
	r.Get("/caterers/{id}/queue", h.getQueue)
	r.Post("/caterers/{id}/queue", h.enqueue)
	r.Delete("/caterers/{id}/queue/{itemID}", h.dequeue)
	r.Post("/caterers/{id}/queue/release", h.release)
	r.Get("/orders", h.allOrders)
	r.Post("/orders/{id}/pickup", h.pickup)
}

// queue returns the session queue for one caterer, creating it on first
// touch. Queues are process-local; restarting the API empties them, which
// is fine because drafts are not durable state.
func (h *CatererHandler) queue(catererID string) *ledger.Queue {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.queues == nil {
		h.queues = map[string]*ledger.Queue{}
	}
	q, ok := h.queues[catererID]
	if !ok {
		q = ledger.NewQueue(catererID)
		h.queues[catererID] = q
	}
	return q
}

func (h *CatererHandler) catererOfferings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	offs, err := h.Offerings.ListCatererOfferings(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, offs)
}

func (h *CatererHandler) getQueue(w http.ResponseWriter, r *http.Request) {
	q := h.queue(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, map[string]any{"count": q.Len(), "drafts": q.Drafts()})
}

type enqueueReq struct {
	ItemID          string `json:"item_id"`
	StoreID         int    `json:"store_id"`
	DiscountPercent int    `json:"discount_percent"`
	Hours           int    `json:"hours"`
	Minutes         int    `json:"minutes"`
}

func (h *CatererHandler) enqueue(w http.ResponseWriter, r *http.Request) {
	var req enqueueReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	q := h.queue(chi.URLParam(r, "id"))
	d, err := q.Enqueue(req.ItemID, req.StoreID, req.DiscountPercent, req.Hours, req.Minutes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *CatererHandler) dequeue(w http.ResponseWriter, r *http.Request) {
	q := h.queue(chi.URLParam(r, "id"))
	q.Dequeue(chi.URLParam(r, "itemID"))
	writeJSON(w, http.StatusOK, map[string]any{"count": q.Len()})
}

func (h *CatererHandler) release(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	q := h.queue(chi.URLParam(r, "id"))
	res, err := q.ReleaseAll(ctx, h.Offerings)
	if res.Released > 0 && h.Redis != nil {
		// new offerings change the deals snapshot, even on a partial batch
		_ = h.Redis.Del(ctx, redisx.KeyDeals).Err()
	}
	if err != nil {
		// partial batches are normal; report what did land before the failure
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error": err.Error(), "released": res.Released, "skipped": res.Skipped,
		})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *CatererHandler) allOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := h.Orders.ListAllOrders(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *CatererHandler) pickup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Orders.MarkPickedUp(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if h.Producer != nil && o.PickedUpAt != nil {
		ev := ledger.Envelope{
			EventID:       uuid.NewString(),
			EventType:     ledger.EventOrderPickedUp,
			EventVersion:  1,
			OccurredAt:    time.Now().UTC(),
			Producer:      h.Service,
			TraceID:       r.Header.Get("X-Request-Id"),
			CorrelationID: o.ID,
		}
		ev.Payload = kafkax.MustMarshal(ledger.OrderPickedUpPayload{
			OrderID: o.ID, StoreID: o.StoreID, PickedUpAt: *o.PickedUpAt,
		})
		h.Producer.Publish(ledger.PartitionKey(o.ID), kafkax.MustMarshal(ev),
			kafkago.Header{Key: "x-event-type", Value: []byte(ledger.EventOrderPickedUp)},
			kafkago.Header{Key: "x-event-version", Value: []byte("1")},
		)
	}

	writeJSON(w, http.StatusOK, o)
}
