// Package store provides persistent storage for hookrelay using SQLite.
//
// # Architecture
//
// All persistence goes through the Store interface, implemented by SQLiteStore
// (modernc.org/sqlite via database/sql) and by MockStore for tests. The schema
// is created automatically on startup.
//
// # Data Models
//
//   - Principal: Registered identity (username + bcrypt password hash)
//   - Subscription: A webhook registration (url, source, secret, owner)
//   - Delivery: One pending or attempted notification to one subscriber,
//     with status Pending, Delivered, or Failed
//
// Timestamps are stored as RFC 3339 strings in UTC. Delivery payloads are
// stored verbatim as the raw JSON submitted by the producer.
//
// # Errors
//
// Lookups of absent entities return ErrNotFound. Registering a username that
// already exists returns ErrDuplicateUsername. All other errors are wrapped
// infrastructure faults.
package store
