// Package notify broadcasts cycle outcomes.
//
// The Redis notifier publishes on three channels, by default tlf:snapshot,
// tlf:snapshot:aggregate and tlf:sync:error. Without Redis the service falls
// back to the log notifier.
package notify
