// Package mongo connects to MongoDB with the official v2 driver.
//
//	db, err := mongo.NewDatabase(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	subs := push.NewMongoStore(db)
package mongo
