// Package history keeps a local SQLite ledger of per-item sync outcomes.
//
// The ledger is an audit trail for the `history` command. It is never consulted
// for deduplication; the remote catalog remains the only authority on which
// lessons already exist.
package history
