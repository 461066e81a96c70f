package consumer_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/internal/delivery"
	"github.com/dmitrymomot/notifyhub/internal/event"
	"github.com/dmitrymomot/notifyhub/internal/notification"
	"github.com/dmitrymomot/notifyhub/internal/push"
	"github.com/dmitrymomot/notifyhub/pkg/eventlog"
)

func message(t *testing.T, p event.Payload) (eventlog.Message, event.Envelope) {
	t.Helper()

	env, err := event.New(p, time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	data, err := env.Marshal()
	require.NoError(t, err)

	topic, _ := event.TopicFor(p.Type())
	return eventlog.Message{Topic: topic, ID: "1-0", Key: env.PartitionKey, Value: data}, env
}

type staticFollowers map[string][]string

func (s staticFollowers) Followers(_ context.Context, userID string) ([]string, error) {
	return s[userID], nil
}

type recordingLive struct {
	mu     sync.Mutex
	got    []notification.Notification
	result delivery.Result
}

func (r *recordingLive) Deliver(_ context.Context, n notification.Notification) delivery.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
	if r.result.Status == 0 {
		return delivery.NotConnected("live")
	}
	return r.result
}

func (r *recordingLive) Recipients() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.got))
	for _, n := range r.got {
		out = append(out, n.RecipientID)
	}
	return out
}

type recordingPush struct {
	mu       sync.Mutex
	payloads map[string][]push.Payload
	block    chan struct{}
}

func newRecordingPush() *recordingPush {
	return &recordingPush{payloads: make(map[string][]push.Payload)}
}

func (r *recordingPush) Deliver(ctx context.Context, recipientID string, p push.Payload) push.Report {
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return push.Report{Failed: 1}
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads[recipientID] = append(r.payloads[recipientID], p)
	return push.Report{Sent: 1}
}

func (r *recordingPush) Count(recipientID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payloads[recipientID])
}

func (r *recordingPush) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.payloads {
		n += len(p)
	}
	return n
}
