// Package alert notifies downstream consumers when the daily recalculation
// moves a farm into the critical or high distress bands.
package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/farmwatch/farmwatch/pkg/distress"
)

// Event is one distress level transition detected by the daily run.
type Event struct {
	FarmID        string         `json:"farm_id"`
	FarmName      string         `json:"farm_name"`
	Region        string         `json:"region"`
	District      string         `json:"district"`
	Score         float64        `json:"distress_score"`
	Level         distress.Level `json:"distress_level"`
	PreviousLevel distress.Level `json:"previous_level"`
	CalculatedAt  time.Time      `json:"calculated_at"`
}

// Notifier delivers distress transition events. Delivery is best effort;
// the daily run logs and continues on failure.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// LogNotifier writes events to the process log. Used when no broker is
// configured.
type LogNotifier struct{}

// Notify logs the event.
func (LogNotifier) Notify(ctx context.Context, event Event) error {
	log.Printf("distress alert: farm %s (%s) now %s at %.1f (was %s)",
		event.FarmID, event.FarmName, event.Level, event.Score, event.PreviousLevel)
	return nil
}

// KafkaNotifier publishes events to a Kafka topic, keyed by farm ID so a
// farm's transitions stay ordered within a partition.
type KafkaNotifier struct {
	writer *kafka.Writer
}

// NewKafkaNotifier creates a notifier publishing to the given brokers and topic.
func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 250 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}}
}

// Notify publishes the event as JSON.
func (n *KafkaNotifier) Notify(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal alert event: %w", err)
	}
	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.FarmID),
		Value: body,
		Time:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("publish alert for farm %s: %w", event.FarmID, err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
