package fulfillment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ariefcatur/go-campus-grub.git/internal/ledger"
	"github.com/ariefcatur/go-campus-grub.git/internal/redisx"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/go-campus-grub.git/internal/kafka"
)

// Publisher matches the kafka producer; tests swap in a capture.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Service keeps the per-store pickup board in Redis current from the order
// event stream, so the caterer dashboard reads a cheap snapshot instead of
// hitting the order table.
type Service struct {
	Redis          *redis.Client
	ProducerStaged Publisher // publish order.staged confirmations
	ServiceName    string
}

// HandleOrderPlaced is wired as the order.placed consumer handler.
func (s *Service) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	var env ledger.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != ledger.EventOrderPlaced {
		return nil
	}

	// dedup by event_id; redeliveries are expected with manual commits
	dkey := fmt.Sprintf(redisx.KeyDedup, "fulfillment", env.EventID)
	exists, _ := redisx.Exists(ctx, s.Redis, dkey)
	if exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[ledger.OrderPlacedPayload](env.Payload)
	if err != nil {
		return err
	}

	board := fmt.Sprintf(redisx.KeyPickupQueue, p.StoreID)
	if err := s.Redis.HSet(ctx, board, p.OrderID, kafkax.MustMarshal(p)).Err(); err != nil {
		return err
	}

	s.publishStaged(p.OrderID, p.StoreID, env.TraceID)
	return nil
}

// HandleOrderPickedUp clears the order from its store board.
func (s *Service) HandleOrderPickedUp(ctx context.Context, m kafkago.Message) error {
	var env ledger.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != ledger.EventOrderPickedUp {
		return nil
	}

	p, err := kafkax.UnwrapPayload[ledger.OrderPickedUpPayload](env.Payload)
	if err != nil {
		return err
	}
	board := fmt.Sprintf(redisx.KeyPickupQueue, p.StoreID)
	return s.Redis.HDel(ctx, board, p.OrderID).Err()
}

func (s *Service) publishStaged(orderID string, storeID int, trace string) {
	if s.ProducerStaged == nil {
		return
	}
	ev := ledger.Envelope{
		EventID:       uuid.NewString(),
		EventType:     ledger.EventOrderStaged,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       trace,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(ledger.OrderStagedPayload{OrderID: orderID, StoreID: storeID}),
	}
	s.ProducerStaged.Publish(ledger.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(ledger.EventOrderStaged)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
