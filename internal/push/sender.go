package push

import (
	"context"
	"io"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// Sender transmits one encrypted message to one subscription and reports the
// HTTP status of the push service. A non-nil error means no status was received.
type Sender interface {
	Send(ctx context.Context, sub Subscription, payload []byte) (int, error)
}

// WebPushSender sends through a push service using VAPID authentication.
type WebPushSender struct {
	opts webpush.Options
}

// NewWebPushSender builds a sender from cfg. client may be nil.
func NewWebPushSender(cfg Config, client *http.Client) (*WebPushSender, error) {
	if !cfg.Enabled() {
		return nil, ErrMissingVAPIDKeys
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &WebPushSender{opts: webpush.Options{
		HTTPClient:      client,
		Subscriber:      cfg.Subscriber,
		TTL:             int(cfg.TTL.Seconds()),
		Urgency:         urgency(cfg.Urgency),
		VAPIDPublicKey:  cfg.VAPIDPublicKey,
		VAPIDPrivateKey: cfg.VAPIDPrivateKey,
	}}, nil
}

func (s *WebPushSender) Send(ctx context.Context, sub Subscription, payload []byte) (int, error) {
	opts := s.opts
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys:     webpush.Keys{P256dh: sub.Keys.P256dh, Auth: sub.Keys.Auth},
	}, &opts)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func urgency(v string) webpush.Urgency {
	switch webpush.Urgency(v) {
	case webpush.UrgencyVeryLow, webpush.UrgencyLow, webpush.UrgencyHigh:
		return webpush.Urgency(v)
	default:
		return webpush.UrgencyNormal
	}
}

// GenerateVAPIDKeys returns a new private and public key pair.
func GenerateVAPIDKeys() (private, public string, err error) {
	return webpush.GenerateVAPIDKeys()
}
