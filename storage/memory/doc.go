// Package memory provides in-memory implementations of the storage
// capability interfaces.
//
// They honor the same contracts as the production backends (generated ids,
// merge semantics, lower-is-closer distances) and are used by tests and
// local development; the optional hook fields let tests force backend
// failures without a network.
package memory
