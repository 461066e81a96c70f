// Package httpserver runs an http.Server with graceful shutdown and exposes
// a readiness handler built from named dependency checks.
//
// Run blocks until its context is canceled, then drains in-flight requests
// within the shutdown timeout. Signal handling belongs to the caller, usually
// through signal.NotifyContext in main:
//
//	srv := httpserver.NewFromConfig(cfg.HTTP,
//		httpserver.WithLogger(log),
//		httpserver.WithOnShutdown(registry.Close),
//	)
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("http server", logger.Error(err))
//	}
//
// Listen failures are wrapped with ErrStart and drain failures with
// ErrShutdown.
package httpserver
