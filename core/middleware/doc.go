// Package middleware groups the Fiber middleware of the service.
//
//   - auth: API key check on the X-API-Key header.
//   - rayid: per-request id in Locals and the X-Ray-ID header, picked up by
//     logger.WithRayID.
package middleware
