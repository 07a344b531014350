// Package server holds the HTTP serve-surface configuration.
//
// While the serve command handles the server startup, this package defines
// the configuration structure for it: the listen port and the optional API
// key protecting the endpoints.
package server
