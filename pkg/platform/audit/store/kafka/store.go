// Package kafka streams audit events to Kafka topics, one per category.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	audit "github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/audit"
)

// Producer is the subset of the platform Kafka producer this store needs.
type Producer interface {
	Produce(ctx context.Context, topic string, key, value []byte) error
}

// Store implements audit.Store. Events are keyed by subject so all events
// about one entity land on the same partition in order.
type Store struct {
	producer    Producer
	topicPrefix string
}

func New(producer Producer, topicPrefix string) *Store {
	return &Store{producer: producer, topicPrefix: topicPrefix}
}

// Topic returns the topic events of category c are written to.
func (s *Store) Topic(c audit.EventCategory) string {
	return s.topicPrefix + "." + string(c)
}

// Topics lists every topic the store writes to, for provisioning.
func (s *Store) Topics() []string {
	return []string{s.Topic(audit.CategoryCompliance), s.Topic(audit.CategoryOperations)}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	return s.producer.Produce(ctx, s.Topic(event.Category), []byte(event.Subject), payload)
}
