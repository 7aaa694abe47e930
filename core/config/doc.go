// Package config loads the service configuration.
//
// Values come from environment variables, optionally seeded from a .env file.
// Every section struct declares its keys with `mapstructure` tags and its
// defaults with `default` tags; nested keys map to SECTION_KEY variables
// (sync.interval_seconds is SYNC_INTERVAL_SECONDS).
//
// Sections:
//   - Server: HTTP port, API key
//   - Log: level and format
//   - Database: the local ledger database
//   - Source: the automated storage controller database (read-only)
//   - Redis: notifier channels and the cycle lock
//   - Storage: snapshot archive bucket
//   - Sync: cycle interval, exit point mapping, buffer slots, producer tag
package config
