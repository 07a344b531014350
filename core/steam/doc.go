// Package steam holds the Steam installation context: the install root and
// its well-known file locations, the primary account credentials, and the
// import toggles that drive a reconciliation run.
package steam
