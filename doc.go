// Package membership implements the authentication and lifecycle core of a
// club membership backend: server-side sessions with hashed bearer tokens,
// session-bound CSRF tokens, the middleware gate chain, the member status
// lifecycle with its dues-expiration sweep, and an integration dispatcher
// that fans lifecycle events out to external systems.
package membership
