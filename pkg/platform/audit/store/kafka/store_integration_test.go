//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	platformkafka "github.com/Rafadormi/105-dirvigisan-perobal/internal/platform/kafka"
	audit "github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/audit"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/platform/audit/store/kafka"
	"github.com/Rafadormi/105-dirvigisan-perobal/pkg/testutil/containers"
)

type KafkaAuditStoreSuite struct {
	suite.Suite
	brokers  []string
	producer *platformkafka.Producer
	store    *kafka.Store
}

func TestKafkaAuditStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaAuditStoreSuite))
}

func (s *KafkaAuditStoreSuite) SetupSuite() {
	s.brokers = containers.GetManager().GetRedpanda(s.T()).Brokers
	producer, err := platformkafka.NewProducer(platformkafka.Config{Brokers: s.brokers, ClientID: "audit-it"}, nil)
	s.Require().NoError(err)
	s.producer = producer
	s.store = kafka.New(producer, "it.audit")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.Require().NoError(producer.EnsureTopics(ctx, 1, 1, s.store.Topics()...))
	s.Require().NoError(producer.EnsureTopics(ctx, 1, 1, s.store.Topics()...), "second call tolerates existing topics")
}

func (s *KafkaAuditStoreSuite) TearDownSuite() {
	s.producer.Close()
}

func (s *KafkaAuditStoreSuite) TestAppendIsConsumable() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.Require().NoError(s.store.Append(ctx, audit.Event{
		Subject:  "11222333000181",
		Action:   string(audit.EventRiskOverridden),
		Decision: "BAIXO",
		ActorID:  "fiscal.ana",
	}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.brokers...),
		kgo.ConsumeTopics(s.store.Topic(audit.CategoryCompliance)),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	s.Require().Empty(fetches.Errors())
	records := fetches.Records()
	s.Require().NotEmpty(records)

	var got audit.Event
	s.Require().NoError(json.Unmarshal(records[0].Value, &got))
	s.Equal("fiscal.ana", got.ActorID)
	s.Equal("11222333000181", string(records[0].Key))
}
