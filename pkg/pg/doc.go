// Package pg connects to PostgreSQL through a pgx pool, applies embedded goose
// migrations and classifies driver errors.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	if err := pg.Migrate(ctx, pool, notification.Migrations, cfg, log); err != nil {
//	    return err
//	}
package pg
