// Package events produces order lifecycle records to Kafka. Publishing is a
// best-effort side effect: delivery failures are logged and never surfaced to
// the request that triggered them.
package events

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/pawmart/pawmart-api/models"
	"github.com/twmb/franz-go/pkg/kgo"
)

const Topic = "orders.status-changed"

type Publisher struct {
	client *kgo.Client
}

// NewPublisher connects to the given brokers. Callers with no brokers
// configured should keep a nil *Publisher; every method is nil-safe.
func NewPublisher(brokers []string) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(Topic),
	)
	if err != nil {
		return nil, err
	}
	return &Publisher{client: client}, nil
}

type orderStatusEvent struct {
	OrderID     uint               `json:"order_id"`
	OrderRef    string             `json:"order_ref"`
	UserID      uint               `json:"user_id"`
	Status      models.OrderStatus `json:"status"`
	TotalAmount float64            `json:"total_amount"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

// PublishOrderStatus emits one record keyed by order id so all transitions of
// an order land on the same partition.
func (p *Publisher) PublishOrderStatus(ctx context.Context, order *models.Order) {
	if p == nil {
		return
	}

	value, err := json.Marshal(orderStatusEvent{
		OrderID:     order.ID,
		OrderRef:    order.OrderRef,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		OccurredAt:  time.Now(),
	})
	if err != nil {
		log.Printf("❌ Failed to encode order event for order %d: %v", order.ID, err)
		return
	}

	record := &kgo.Record{
		Key:   []byte(strconv.FormatUint(uint64(order.ID), 10)),
		Value: value,
	}
	p.client.Produce(ctx, record, func(r *kgo.Record, err error) {
		if err != nil {
			log.Printf("❌ Failed to publish order event for order %d: %v", order.ID, err)
		}
	})
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.client.Close()
}
