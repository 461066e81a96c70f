package consumer

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/dmitrymomot/notifyhub/internal/event"
	"github.com/dmitrymomot/notifyhub/pkg/eventlog"
	"github.com/dmitrymomot/notifyhub/pkg/logger"
)

// dispatch decodes msg and hands it to v. Records that cannot be decoded are
// acknowledged. A record without an eventId gets one derived from its log
// position, so redeliveries of it keep deduplicating.
func dispatch(ctx context.Context, log *slog.Logger, group string, msg eventlog.Message, v event.Visitor) error {
	env, err := event.Decode(msg.Value)
	if err != nil {
		log.WarnContext(ctx, "skipping undecodable event",
			logger.ConsumerGroup(group),
			logger.Topic(msg.Topic),
			logger.Partition(msg.Partition),
			slog.String("message_id", msg.ID),
			logger.Error(err),
		)
		return nil
	}
	if env.ID == "" {
		env.ID = event.DeriveID(msg.Topic + "/" + strconv.Itoa(msg.Partition) + "/" + msg.ID)
	}
	if env.Timestamp == 0 {
		env.Timestamp = time.Now().UnixMilli()
	}
	return env.Accept(ctx, v)
}
