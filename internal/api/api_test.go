package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/internal/api"
	"github.com/dmitrymomot/notifyhub/internal/event"
	"github.com/dmitrymomot/notifyhub/internal/live"
	"github.com/dmitrymomot/notifyhub/internal/notification"
	"github.com/dmitrymomot/notifyhub/internal/producer"
	"github.com/dmitrymomot/notifyhub/internal/push"
	"github.com/dmitrymomot/notifyhub/internal/social"
	"github.com/dmitrymomot/notifyhub/pkg/cache"
	"github.com/dmitrymomot/notifyhub/pkg/httpserver"
	"github.com/dmitrymomot/notifyhub/pkg/jwt"
	"github.com/dmitrymomot/notifyhub/pkg/logger"
)

type recordingLog struct {
	mu     sync.Mutex
	topics []string
	types  []event.Type
}

func (l *recordingLog) Publish(_ context.Context, topic, _ string, payload []byte) bool {
	env, err := event.Decode(payload)
	if err != nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.topics = append(l.topics, topic)
	l.types = append(l.types, env.Type)
	return true
}

func (l *recordingLog) published() []event.Type {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]event.Type(nil), l.types...)
}

type fixture struct {
	tokens        *jwt.Service
	notifications *notification.Service
	subscriptions *push.MemoryStore
	cache         *cache.Cache
	events        *recordingLog
	handler       http.Handler
}

func newFixture(t *testing.T, opts ...api.Option) *fixture {
	t.Helper()

	tokens, err := jwt.New(jwt.Config{Secret: "api-test-secret", Issuer: "notifyhub", TTL: time.Hour})
	require.NoError(t, err)

	c := cache.New(cache.NewMemoryStore(100), cache.WithLogger(logger.Discard()))
	t.Cleanup(c.Wait)

	events := &recordingLog{}
	socialSvc := social.NewService(social.NewGraph(), c,
		producer.New(events, producer.WithLogger(logger.Discard())),
		social.WithLogger(logger.Discard()))

	f := &fixture{
		tokens:        tokens,
		notifications: notification.NewService(notification.NewMemoryStore(), notification.WithCache(c)),
		subscriptions: push.NewMemoryStore(),
		cache:         c,
		events:        events,
	}
	opts = append([]api.Option{
		api.WithLogger(logger.Discard()),
		api.WithSocial(socialSvc),
		api.WithHealth(httpserver.HealthHandler(logger.Discard(), time.Second)),
	}, opts...)
	f.handler = api.NewServer(live.NewAuthenticator(tokens), f.notifications, f.subscriptions, opts...).Router()
	return f
}

func (f *fixture) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		tok, err := f.tokens.Generate(userID, userID+"_name")
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) seed(t *testing.T, recipient string, n int) []notification.Notification {
	t.Helper()

	base := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	rows := make([]notification.Notification, 0, n)
	for i := range n {
		rows = append(rows, notification.Notification{
			ID:          fmt.Sprintf("%s-n%d", recipient, i),
			RecipientID: recipient,
			Type:        notification.TypeFollow,
			Message:     fmt.Sprintf("user%d started following you", i),
			EventID:     fmt.Sprintf("evt-%d", i),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		})
	}
	created, err := f.notifications.Persist(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, created, n)
	return created
}

type listMeta struct {
	Count int `json:"count"`
}

type envelope[T any] struct {
	Data  T                `json:"data"`
	Meta  listMeta         `json:"meta"`
	Error *api.ErrorDetail `json:"error"`
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var out envelope[T]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out), rec.Body.String())
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody[json.RawMessage](t, rec)
	require.NotNil(t, body.Error)
	return body.Error.Code
}

func TestAuthRequired(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/notifications", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"reason":"missing"`)

	req := httptest.NewRequest(http.MethodGet, "/notifications/unread-count", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"reason":"malformed"`)
	assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
}

func TestListNotifications(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seed(t, "alice", 3)
	f.seed(t, "bob", 1)

	rec := f.do(t, http.MethodGet, "/notifications?limit=2", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[[]notification.Notification](t, rec)
	require.Len(t, body.Data, 2)
	assert.Equal(t, 2, body.Meta.Count)
	assert.Equal(t, "alice-n2", body.Data[0].ID, "most recent first")
	assert.Equal(t, "alice-n1", body.Data[1].ID)

	rec = f.do(t, http.MethodGet, "/notifications", "carol", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[],"meta":{"count":0}}`, rec.Body.String())

	for _, limit := range []string{"abc", "0", "-3"} {
		rec = f.do(t, http.MethodGet, "/notifications?limit="+limit, "alice", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, limit)
		assert.Equal(t, "bad_request", errorCode(t, rec))
	}
}

func TestMarkRead(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	rows := f.seed(t, "alice", 2)
	other := f.seed(t, "bob", 1)

	unread := func() int {
		rec := f.do(t, http.MethodGet, "/notifications/unread-count", "alice", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		f.cache.Wait()
		return decodeBody[struct {
			Count int `json:"count"`
		}](t, rec).Data.Count
	}
	require.Equal(t, 2, unread())

	path := "/notifications/" + rows[0].ID + "/read"
	for range 2 {
		rec := f.do(t, http.MethodPut, path, "alice", nil)
		require.Equal(t, http.StatusOK, rec.Code, "marking twice succeeds")
		n := decodeBody[notification.Notification](t, rec).Data
		assert.True(t, n.IsRead)
		assert.Equal(t, rows[0].ID, n.ID)
	}
	assert.Equal(t, 1, unread())

	rec := f.do(t, http.MethodPut, "/notifications/"+other[0].ID+"/read", "alice", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", errorCode(t, rec))

	rec = f.do(t, http.MethodPut, "/notifications/does-not-exist/read", "alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorCode(t, rec))

	rec = f.do(t, http.MethodPut, "/notifications/read-all", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"updated":1}}`, rec.Body.String())
	assert.Equal(t, 0, unread())
}

func TestPushSubscriptions(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	valid := map[string]any{
		"endpoint": "https://push.example.com/send/abc",
		"keys":     map[string]string{"p256dh": "BPublicKey", "auth": "secret"},
	}
	rec := f.do(t, http.MethodPost, "/push/subscriptions", "alice", valid)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sub := decodeBody[push.Subscription](t, rec).Data
	assert.Equal(t, "alice", sub.RecipientID, "recipient comes from the token")

	rec = f.do(t, http.MethodPost, "/push/subscriptions", "alice", valid)
	require.Equal(t, http.StatusCreated, rec.Code, "subscribing again is an upsert")

	rec = f.do(t, http.MethodGet, "/push/subscriptions", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]push.Subscription](t, rec).Data, 1)

	insecure := map[string]any{
		"endpoint": "http://push.example.com/send/abc",
		"keys":     map[string]string{"p256dh": "k", "auth": "a"},
	}
	rec = f.do(t, http.MethodPost, "/push/subscriptions", "alice", insecure)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "validation_error", errorCode(t, rec))

	rec = f.do(t, http.MethodPost, "/push/subscriptions", "alice", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodDelete, "/push/subscriptions", "alice", map[string]string{"endpoint": "https://push.example.com/send/abc"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	subs, err := f.subscriptions.ListByRecipient(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestVAPIDPublicKey(t *testing.T) {
	t.Parallel()

	rec := newFixture(t).do(t, http.MethodGet, "/push/vapid-public-key", "alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_enabled", errorCode(t, rec))

	rec = newFixture(t, api.WithVAPIDPublicKey("BPub")).do(t, http.MethodGet, "/push/vapid-public-key", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"publicKey":"BPub"}}`, rec.Body.String())
}

func TestSocialEndpoints(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/users/bob/follow", "alice", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodPost, "/users/alice/follow", "alice", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "self follow")

	rec = f.do(t, http.MethodGet, "/users/bob/stats", "carol", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"followers":1,"following":0}}`, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/posts", "bob", map[string]bool{"anonymous": false})
	require.Equal(t, http.StatusCreated, rec.Code)
	post := decodeBody[social.Content](t, rec).Data
	assert.Equal(t, event.TargetPost, post.Type)

	rec = f.do(t, http.MethodPost, "/posts/"+post.ID+"/likes", "alice", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodPost, "/reels/"+post.ID+"/likes", "alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "a post is not a reel")

	rec = f.do(t, http.MethodPost, "/posts/"+post.ID+"/comments", "alice", map[string]string{"text": "  "})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(t, http.MethodPost, "/posts/"+post.ID+"/comments", "alice", map[string]string{"text": "nice"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/posts/"+post.ID+"/views", "alice", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, []event.Type{
		event.TypeUserFollowed,
		event.TypePostCreated,
		event.TypePostLiked,
		event.TypeCommentCreated,
		event.TypePostViewed,
	}, f.events.published())
}

func TestHealthAndRequestID(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, "health needs no token")
	assert.NotEmpty(t, rec.Header().Get(api.RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(api.RequestIDHeader, "req-123")
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(api.RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(api.RequestIDHeader, "bad id with spaces")
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.NotEqual(t, "bad id with spaces", rec.Header().Get(api.RequestIDHeader))
}

func TestRecover(t *testing.T) {
	t.Parallel()

	h := api.Recover(logger.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":{"code":"internal_error","message":"Internal Server Error"}}`, rec.Body.String())
}
