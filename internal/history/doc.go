// Package history persists a ledger of publish and mirror runs in SQLite.
//
// Each run gets one row with its counts and summary line; publish runs also
// record one row per staged file with the uid, outcome, error text, and the
// object keys that were uploaded. The ledger is informational: the pipeline
// never reads it back to decide what to do.
package history
