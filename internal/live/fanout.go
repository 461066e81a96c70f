package live

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/notifyhub/internal/delivery"
	"github.com/dmitrymomot/notifyhub/internal/notification"
)

// Channel is the delivery channel name reported in results.
const Channel = "live"

// Fanout pushes new notifications to the recipient's live sessions.
type Fanout struct {
	registry *Registry
}

func NewFanout(r *Registry) *Fanout {
	return &Fanout{registry: r}
}

// Deliver sends a newNotification frame to every session of n.RecipientID.
func (f *Fanout) Deliver(ctx context.Context, n notification.Notification) delivery.Result {
	if err := ctx.Err(); err != nil {
		return delivery.Failed(Channel, err.Error())
	}

	stats := f.registry.Broadcast(n.RecipientID, NewNotificationFrame(n))
	switch {
	case stats.Sessions == 0:
		return delivery.NotConnected(Channel)
	case stats.Delivered > 0:
		return delivery.Delivered(Channel)
	default:
		return delivery.Failed(Channel, fmt.Sprintf("dropped by all %d sessions", stats.Sessions))
	}
}
