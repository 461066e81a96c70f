// Package logger builds the *slog.Logger used across notifyhub and exposes
// attribute helpers that keep key names consistent between components.
//
// New selects a text or JSON handler, attaches static attributes and wraps the
// result in ContextHandler, which copies request- or message-scoped values out
// of a context.Context on every record.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "notifyd"),
//	    logger.WithContextValue("request_id", requestIDKey),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "notification stored",
//	    logger.RecipientID(n.RecipientID),
//	    logger.EventID(n.EventID),
//	)
//
// Error and Errors return an empty slog.Attr for nil errors, so callers can
// pass them unconditionally.
package logger
