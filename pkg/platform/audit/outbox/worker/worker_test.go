package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"certledger/internal/platform/kafka/producer"
	"certledger/pkg/platform/audit/outbox"
	"certledger/pkg/platform/audit/outbox/metrics"
	"certledger/pkg/platform/audit/outbox/store/memory"
)

type recordingProducer struct {
	mu       sync.Mutex
	messages []*producer.Message
	failFor  map[string]bool
}

func (p *recordingProducer) Produce(_ context.Context, msg *producer.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failFor[msg.Headers["aggregate_id"]] {
		return errors.New("broker unavailable")
	}
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingProducer) sent() []*producer.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*producer.Message(nil), p.messages...)
}

type WorkerSuite struct {
	suite.Suite
	store    *memory.Store
	producer *recordingProducer
	metrics  *metrics.Metrics
	base     time.Time
}

func TestWorkerSuite(t *testing.T) {
	suite.Run(t, new(WorkerSuite))
}

func (s *WorkerSuite) SetupTest() {
	s.store = memory.New()
	s.producer = &recordingProducer{failFor: map[string]bool{}}
	s.metrics = metrics.NewWith(prometheus.NewRegistry())
	s.base = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
}

func (s *WorkerSuite) append(aggregateID string, offset time.Duration) *outbox.Entry {
	e := outbox.NewEntry("mint_request", aggregateID, "certificate_minted", []byte(`{"subject":"`+aggregateID+`"}`), s.base.Add(offset))
	s.Require().NoError(s.store.Append(context.Background(), e))
	return e
}

func (s *WorkerSuite) TestPollRelaysOldestFirst() {
	second := s.append("req-2", time.Second)
	first := s.append("req-1", 0)

	w := New(s.store, s.producer, WithTopic("audit"), WithMetrics(s.metrics))
	s.Equal(2, w.Poll(context.Background()))

	sent := s.producer.sent()
	s.Require().Len(sent, 2)
	s.Equal([]byte(first.ID.String()), sent[0].Key)
	s.Equal([]byte(second.ID.String()), sent[1].Key)
	s.Equal("audit", sent[0].Topic)
	s.Equal("certificate_minted", sent[0].Headers["event_type"])
	s.Equal(2.0, testutil.ToFloat64(s.metrics.PublishedTotal))
	s.Equal(0.0, testutil.ToFloat64(s.metrics.PendingDepth))
}

func (s *WorkerSuite) TestFailedEntryStaysPending() {
	s.append("req-1", 0)
	s.producer.failFor["req-1"] = true

	w := New(s.store, s.producer, WithMetrics(s.metrics))
	s.Equal(0, w.Poll(context.Background()))

	pending, err := s.store.CountPending(context.Background())
	s.Require().NoError(err)
	s.Equal(int64(1), pending)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.PublishFailures))

	delete(s.producer.failFor, "req-1")
	s.Equal(1, w.Poll(context.Background()))
}

func (s *WorkerSuite) TestBatchSizeLimitsClaim() {
	for i := 0; i < 5; i++ {
		s.append("req", time.Duration(i)*time.Millisecond)
	}
	w := New(s.store, s.producer, WithBatchSize(2))
	s.Equal(2, w.Poll(context.Background()))
	s.Len(s.producer.sent(), 2)
}

func (s *WorkerSuite) TestStopDrainsPending() {
	w := New(s.store, s.producer, WithPollInterval(time.Hour), WithBatchSize(2))
	w.Start()
	for i := 0; i < 5; i++ {
		s.append("req", time.Duration(i)*time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Require().NoError(w.Stop(ctx))
	s.Len(s.producer.sent(), 5)
}

func (s *WorkerSuite) TestRetentionDeletesProcessed() {
	s.append("req-1", 0)
	w := New(s.store, s.producer, WithRetention(time.Nanosecond))
	s.Equal(1, w.Poll(context.Background()))

	// the entry is processed during this poll; the next poll removes it
	time.Sleep(time.Millisecond)
	w.Poll(context.Background())
	n, err := s.store.DeleteProcessedBefore(context.Background(), time.Now())
	s.Require().NoError(err)
	s.Zero(n)
}
