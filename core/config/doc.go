// Package config loads the service configuration.
//
// Values come from environment variables, optionally seeded from a .env file
// (joho/godotenv), and are decoded with Viper. Every package owns its own
// Config struct; defaults live in `default:"..."` tags and are registered by
// reflection so AutomaticEnv can see every key. Nested keys map to
// underscored variables: database.batch_size is DATABASE_BATCH_SIZE.
//
// # Sections
//
//   - server: port, API key, timeouts
//   - log: level and format
//   - database: driver (mysql, sqlite) and connection details
//   - storage: S3/MinIO credentials and bucket
//   - stats, items: optional dataset overrides for the normalizer and classifier
//   - index: search backend (sql, setindex) and set-index tuning
//   - ingest: feed source, polling and league filter
//   - builds: worker count, idle sleep and lease watchdog
//
// Durations parse from strings such as "10s"; lists are comma-separated.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
