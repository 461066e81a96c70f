package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrymomot/notifyhub/internal/delivery"
	"github.com/dmitrymomot/notifyhub/pkg/logger"
	"github.com/dmitrymomot/notifyhub/pkg/retry"
)

// Channel is the delivery channel name reported in results.
const Channel = "push"

// Report summarises one delivery across a recipient's subscriptions.
type Report struct {
	Sent   int
	Dead   int
	Failed int
}

func (r Report) Total() int { return r.Sent + r.Dead + r.Failed }

// Result folds the report into a channel result.
func (r Report) Result() delivery.Result {
	switch {
	case r.Total() == 0:
		return delivery.NotConnected(Channel)
	case r.Sent > 0:
		return delivery.Delivered(Channel)
	default:
		return delivery.Failed(Channel, fmt.Sprintf("%d dead, %d failed", r.Dead, r.Failed))
	}
}

// Deliverer sends a payload to every subscription of a recipient.
type Deliverer struct {
	store   SubscriptionStore
	sender  Sender
	log     *slog.Logger
	retries int
	backoff retry.Backoff
}

// DelivererOption configures a Deliverer.
type DelivererOption func(*Deliverer)

func WithLogger(l *slog.Logger) DelivererOption {
	return func(d *Deliverer) {
		if l != nil {
			d.log = l
		}
	}
}

// WithRetry sets how many extra attempts a transient failure gets and the
// pause between them.
func WithRetry(extra int, backoff time.Duration) DelivererOption {
	return func(d *Deliverer) {
		d.retries = max(extra, 0)
		d.backoff = retry.Fixed(backoff)
	}
}

func NewDeliverer(store SubscriptionStore, sender Sender, opts ...DelivererOption) *Deliverer {
	d := &Deliverer{
		store:   store,
		sender:  sender,
		log:     slog.Default(),
		retries: 1,
		backoff: retry.Fixed(500 * time.Millisecond),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Deliver sends p to each subscription of recipientID concurrently.
func (d *Deliverer) Deliver(ctx context.Context, recipientID string, p Payload) Report {
	subs, err := d.store.ListByRecipient(ctx, recipientID)
	if err != nil {
		d.log.ErrorContext(ctx, "push subscriptions unavailable", logger.RecipientID(recipientID), logger.Error(err))
		return Report{Failed: 1}
	}
	if len(subs) == 0 {
		return Report{}
	}

	body, err := p.Marshal()
	if err != nil {
		d.log.ErrorContext(ctx, "push payload not encodable", logger.RecipientID(recipientID), logger.Error(err))
		return Report{Failed: len(subs)}
	}

	var (
		mu  sync.Mutex
		rep Report
		wg  sync.WaitGroup
	)
	for _, sub := range subs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := d.sendOne(ctx, sub, body)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				rep.Sent++
			case errors.Is(err, ErrSubscriptionGone):
				rep.Dead++
			default:
				rep.Failed++
			}
		}()
	}
	wg.Wait()
	return rep
}

func (d *Deliverer) sendOne(ctx context.Context, sub Subscription, body []byte) error {
	err := retry.Do(ctx, 1+d.retries, d.backoff, func(ctx context.Context, attempt int) error {
		status, err := d.sender.Send(ctx, sub, body)
		if err != nil {
			return errors.Join(ErrTransient, err)
		}
		return classify(status)
	})
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrSubscriptionGone) {
		if derr := d.store.Delete(ctx, sub.RecipientID, sub.Endpoint); derr != nil {
			d.log.ErrorContext(ctx, "dead push subscription not pruned",
				logger.RecipientID(sub.RecipientID), logger.Endpoint(sub.Endpoint), logger.Error(derr))
		} else {
			d.log.InfoContext(ctx, "pruned dead push subscription",
				logger.RecipientID(sub.RecipientID), logger.Endpoint(sub.Endpoint))
		}
		return err
	}

	d.log.WarnContext(ctx, "push delivery failed",
		logger.RecipientID(sub.RecipientID), logger.Endpoint(sub.Endpoint), logger.Error(err))
	return err
}

// classify maps a push service status to a delivery outcome.
func classify(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound || status == http.StatusGone:
		return retry.Permanent(fmt.Errorf("%w: status %d", ErrSubscriptionGone, status))
	case status == http.StatusTooManyRequests || status >= 500:
		return fmt.Errorf("%w: status %d", ErrTransient, status)
	default:
		return retry.Permanent(fmt.Errorf("%w: status %d", ErrRejected, status))
	}
}
