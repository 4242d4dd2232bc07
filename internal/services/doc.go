// Package services defines shared utilities consumed by the publish pipeline,
// mirror sync, and the object store and codec integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and asset uids for
//     logging and history records.
//   - Structured error markers plus the Wrap helper that classify failures as
//     storage, io, codec, validation, or configuration problems.
//
// Use these helpers when wiring new pipeline logic so error handling and
// observability stay uniform across components.
package services
