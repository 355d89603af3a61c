// Package server holds the HTTP server configuration and builds the fiber app.
//
// New installs the shared middleware chain:
//
//  1. rayid: tags every request with an X-Ray-ID
//  2. request logging through zap, carrying the ray id
//  3. auth: X-API-Key check, disabled when no key is configured
//
// GET /health is registered before auth so probes need no key. Features
// register their routes on the returned app through core/loader.
package server
