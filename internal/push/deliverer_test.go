package push_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/internal/delivery"
	"github.com/dmitrymomot/notifyhub/internal/push"
	"github.com/dmitrymomot/notifyhub/pkg/logger"
)

type reply struct {
	status int
	err    error
}

// scriptedSender answers each endpoint from a queue of replies; the last
// reply repeats.
type scriptedSender struct {
	mu      sync.Mutex
	replies map[string][]reply
	calls   map[string]int
}

func newScriptedSender(replies map[string][]reply) *scriptedSender {
	return &scriptedSender{replies: replies, calls: make(map[string]int)}
}

func (s *scriptedSender) Send(_ context.Context, sub push.Subscription, _ []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.calls[sub.Endpoint]
	s.calls[sub.Endpoint]++
	script := s.replies[sub.Endpoint]
	if len(script) == 0 {
		return http.StatusCreated, nil
	}
	r := script[min(n, len(script)-1)]
	return r.status, r.err
}

func (s *scriptedSender) Calls(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[endpoint]
}

func newDeliverer(store push.SubscriptionStore, sender push.Sender) *push.Deliverer {
	return push.NewDeliverer(store, sender,
		push.WithLogger(logger.Discard()),
		push.WithRetry(1, time.Millisecond))
}

func TestDeliverer_PrunesGoneSubscriptions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := push.NewMemoryStore()
	const (
		alive   = "https://push.example.com/alive"
		gone    = "https://push.example.com/gone"
		missing = "https://push.example.com/missing"
	)
	for _, ep := range []string{alive, gone, missing} {
		require.NoError(t, store.Save(ctx, sub("u1", ep)))
	}

	sender := newScriptedSender(map[string][]reply{
		gone:    {{status: http.StatusGone}},
		missing: {{status: http.StatusNotFound}},
	})
	d := newDeliverer(store, sender)

	rep := d.Deliver(ctx, "u1", push.Payload{Title: "hi"})
	assert.Equal(t, push.Report{Sent: 1, Dead: 2}, rep)
	assert.Equal(t, 1, sender.Calls(gone), "gone endpoints are never retried")
	assert.Equal(t, 1, sender.Calls(missing))

	list, err := store.ListByRecipient(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, alive, list[0].Endpoint)

	// the next delivery does not touch the pruned endpoints again
	rep = d.Deliver(ctx, "u1", push.Payload{Title: "again"})
	assert.Equal(t, push.Report{Sent: 1}, rep)
	assert.Equal(t, 1, sender.Calls(gone))
}

func TestDeliverer_RetriesTransientOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := push.NewMemoryStore()
	const (
		flaky    = "https://push.example.com/flaky"
		down     = "https://push.example.com/down"
		throttle = "https://push.example.com/throttle"
		rejected = "https://push.example.com/rejected"
	)
	for _, ep := range []string{flaky, down, throttle, rejected} {
		require.NoError(t, store.Save(ctx, sub("u1", ep)))
	}

	sender := newScriptedSender(map[string][]reply{
		flaky:    {{err: errors.New("connection reset")}, {status: http.StatusCreated}},
		down:     {{status: http.StatusServiceUnavailable}},
		throttle: {{status: http.StatusTooManyRequests}},
		rejected: {{status: http.StatusBadRequest}},
	})

	rep := newDeliverer(store, sender).Deliver(ctx, "u1", push.Payload{Title: "hi"})
	assert.Equal(t, push.Report{Sent: 1, Failed: 3}, rep)

	assert.Equal(t, 2, sender.Calls(flaky))
	assert.Equal(t, 2, sender.Calls(down))
	assert.Equal(t, 2, sender.Calls(throttle))
	assert.Equal(t, 1, sender.Calls(rejected), "client errors are not retried")

	list, err := store.ListByRecipient(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 4, "only gone endpoints are pruned")
}

type failingStore struct{ push.SubscriptionStore }

func (failingStore) ListByRecipient(context.Context, string) ([]push.Subscription, error) {
	return nil, push.ErrStore
}

func TestDeliverer_Results(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	rep := newDeliverer(push.NewMemoryStore(), newScriptedSender(nil)).Deliver(ctx, "nobody", push.Payload{})
	assert.Equal(t, push.Report{}, rep)
	assert.Equal(t, delivery.StatusNotConnected, rep.Result().Status)

	rep = newDeliverer(failingStore{}, newScriptedSender(nil)).Deliver(ctx, "u1", push.Payload{})
	assert.Equal(t, delivery.StatusFailed, rep.Result().Status)

	assert.True(t, push.Report{Sent: 1, Dead: 3}.Result().OK())
	res := push.Report{Dead: 1}.Result()
	assert.Equal(t, delivery.StatusFailed, res.Status)
	assert.Equal(t, push.Channel, res.Channel)
}
