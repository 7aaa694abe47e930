// Package server holds the HTTP server configuration.
//
// The main application entry point handles the server startup; this package only
// defines the listen port, the API key protecting the endpoints, and the instance
// name used to identify a replica.
package server
