// Package middleware groups the fiber middleware mounted by core/server.
//
//   - auth: checks the X-API-Key header against server.api_key. An empty key
//     leaves the HTTP surface open, which is how local runs and tests use it.
//   - rayid: tags each request with an X-Ray-ID, reusing the caller's value
//     when one is sent, so handler logs and build queue logs can be joined.
package middleware
