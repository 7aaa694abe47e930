// Package redisdb connects to Redis.
//
// Redis carries two optional concerns of the sync service: the live-update
// channels the change notifier publishes to, and the distributed lock that keeps
// two replicas from running a reconciliation cycle at the same time.
package redisdb
