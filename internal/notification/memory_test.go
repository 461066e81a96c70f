package notification_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/internal/notification"
)

func newRow(recipient, eventID string, at time.Time) notification.Notification {
	return notification.Notification{
		ID:          uuid.NewString(),
		RecipientID: recipient,
		Type:        notification.TypeLike,
		Message:     "someone liked your post",
		EventID:     eventID,
		CreatedAt:   at,
	}
}

func TestMemoryStore_SkipsDuplicateEvents(t *testing.T) {
	t.Parallel()

	s := notification.NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	created, err := s.CreateBatch(ctx, []notification.Notification{
		newRow("a", "e1", now),
		newRow("b", "e1", now),
	})
	require.NoError(t, err)
	assert.Len(t, created, 2)

	// redelivery of e1 creates nothing, a new event for a creates one row
	created, err = s.CreateBatch(ctx, []notification.Notification{
		newRow("a", "e1", now),
		newRow("b", "e1", now),
		newRow("a", "e2", now),
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "e2", created[0].EventID)

	ok, err := s.Create(ctx, newRow("a", "e2", now))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_ListNewestFirst(t *testing.T) {
	t.Parallel()

	s := notification.NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := range 5 {
		_, err := s.Create(ctx, newRow("a", fmt.Sprint(i), base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}
	_, err := s.Create(ctx, newRow("other", "x", base))
	require.NoError(t, err)

	list, err := s.List(ctx, "a", notification.ListOptions{Limit: 3})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"4", "3", "2"}, []string{list[0].EventID, list[1].EventID, list[2].EventID})

	list, err = s.List(ctx, "a", notification.ListOptions{Offset: 4})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "0", list[0].EventID)

	list, err = s.List(ctx, "nobody", notification.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMemoryStore_ListTiesNewestInsertedFirst(t *testing.T) {
	t.Parallel()

	s := notification.NewMemoryStore()
	ctx := context.Background()
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, id := range []string{"t1", "t2", "t3"} {
		_, err := s.Create(ctx, newRow("a", id, at))
		require.NoError(t, err)
	}

	list, err := s.List(ctx, "a", notification.ListOptions{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"t3", "t2", "t1"}, []string{list[0].EventID, list[1].EventID, list[2].EventID})
}

func TestMemoryStore_ReadState(t *testing.T) {
	t.Parallel()

	s := notification.NewMemoryStore()
	ctx := context.Background()
	r1, r2 := newRow("a", "1", time.Now()), newRow("a", "2", time.Now())
	_, err := s.CreateBatch(ctx, []notification.Notification{r1, r2})
	require.NoError(t, err)

	require.NoError(t, s.MarkRead(ctx, r1.ID))
	n, err := s.CountUnread(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	unread, err := s.List(ctx, "a", notification.ListOptions{OnlyUnread: true})
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, r2.ID, unread[0].ID)

	changed, err := s.MarkAllRead(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	assert.ErrorIs(t, s.MarkRead(ctx, "missing"), notification.ErrNotFound)
	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, notification.ErrNotFound)
}

func TestMemoryStore_RejectsInvalidRows(t *testing.T) {
	t.Parallel()

	s := notification.NewMemoryStore()
	bad := newRow("a", "1", time.Now())
	bad.RelatedPostID, bad.RelatedReelID = "p", "r"

	_, err := s.CreateBatch(context.Background(), []notification.Notification{newRow("a", "0", time.Now()), bad})
	assert.ErrorIs(t, err, notification.ErrBothTargets)

	n, err := s.CountUnread(context.Background(), "a")
	require.NoError(t, err)
	assert.Zero(t, n, "batch is all or nothing")
}
