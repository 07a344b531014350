// Package library exposes the reconciled game library over HTTP. It is
// the presentation boundary: the handler runs a reconciliation per
// request and serves the resulting records as JSON, never writing back to
// any of the engine's sources.
package library
