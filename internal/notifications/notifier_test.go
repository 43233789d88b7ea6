package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"agora/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() models.ActivityEvent {
	return models.ActivityEvent{
		ActivityID:  11,
		Kind:        models.ActivityUpvote,
		UserID:      2,
		PostID:      5,
		PostSlug:    "hello-abc123",
		AuthorID:    1,
		CommunityID: 3,
		CreatedAt:   time.Unix(1700000000, 0).UTC(),
	}
}

func TestActivityChannel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "activity:user:1", ActivityChannel(1))
	assert.Equal(t, "activity:user:100", ActivityChannel(100))
}

func TestNotifier_NilClientIsNoop(t *testing.T) {
	t.Parallel()
	n := NewNotifier(nil)
	assert.NoError(t, n.Publish(context.Background(), sampleEvent()))
	assert.NoError(t, n.StartActivitySubscriber(context.Background(), func(string, models.ActivityEvent) {}))
}

func TestNotifier_PublishReachesAuthorChannel(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type delivery struct {
		channel string
		event   models.ActivityEvent
	}
	got := make(chan delivery, 1)
	require.NoError(t, n.StartActivitySubscriber(ctx, func(channel string, event models.ActivityEvent) {
		got <- delivery{channel: channel, event: event}
	}))

	require.NoError(t, n.Publish(context.Background(), sampleEvent()))

	select {
	case d := <-got:
		assert.Equal(t, "activity:user:1", d.channel)
		assert.Equal(t, uint(11), d.event.ActivityID)
		assert.Equal(t, models.ActivityUpvote, d.event.Kind)
		assert.Equal(t, "hello-abc123", d.event.PostSlug)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestNotifier_SkipsMalformedPayloads(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan models.ActivityEvent, 2)
	require.NoError(t, n.StartActivitySubscriber(ctx, func(_ string, event models.ActivityEvent) {
		got <- event
	}))

	require.NoError(t, rdb.Publish(context.Background(), ActivityChannel(1), "not json").Err())
	require.NoError(t, n.Publish(context.Background(), sampleEvent()))

	select {
	case event := <-got:
		assert.Equal(t, uint(11), event.ActivityID)
	case <-time.After(2 * time.Second):
		t.Fatal("valid event after malformed one was not delivered")
	}
}

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaProducer_Publish(t *testing.T) {
	t.Parallel()
	w := &fakeWriter{}
	p := &KafkaProducer{writer: w, topic: "agora.activity"}

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "5", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "UPVOTE", string(msg.Headers[0].Value))

	var decoded models.ActivityEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, uint(11), decoded.ActivityID)
	assert.Equal(t, uint(1), decoded.AuthorID)
	assert.True(t, sampleEvent().CreatedAt.Equal(decoded.CreatedAt))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaProducer_WrapsWriteError(t *testing.T) {
	t.Parallel()
	cause := errors.New("leader not available")
	p := &KafkaProducer{writer: &fakeWriter{err: cause}, topic: "agora.activity"}

	err := p.Publish(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "agora.activity")
}

func TestNewKafkaProducer_Validates(t *testing.T) {
	t.Parallel()
	_, err := NewKafkaProducer(KafkaConfig{Topic: "agora.activity"})
	assert.Error(t, err)
	_, err = NewKafkaProducer(KafkaConfig{Brokers: []string{"localhost:9092"}})
	assert.Error(t, err)

	p, err := NewKafkaProducer(KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "agora.activity"})
	require.NoError(t, err)
	assert.Equal(t, "kafka", p.Name())
	assert.NoError(t, p.Close())
}

type stubSink struct {
	name  string
	err   error
	calls int
}

func (s *stubSink) Name() string { return s.name }

func (s *stubSink) Publish(context.Context, models.ActivityEvent) error {
	s.calls++
	return s.err
}

func TestFanout_PublishesToEverySink(t *testing.T) {
	t.Parallel()
	failing := &stubSink{name: "kafka", err: errors.New("down")}
	healthy := &stubSink{name: "redis"}

	f := NewFanout(failing, healthy)
	err := f.Publish(context.Background(), sampleEvent())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "down")
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, healthy.calls, "a failing sink must not block the rest")
	assert.Equal(t, 2, f.Len())

	assert.NoError(t, NewFanout().Publish(context.Background(), sampleEvent()))
}
