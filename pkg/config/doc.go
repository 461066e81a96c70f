// Package config loads environment-driven configuration structs.
//
// Structs declare their variables with caarlos0/env tags. A .env file in the
// working directory is read once (via godotenv) before the first parse, and
// every struct type is parsed at most once per process:
//
//	var cfg redis.Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
// Parse skips the cache and is what tests use together with t.Setenv.
package config
