// Package main hosts the assetsync CLI entrypoint and command graph.
//
// The Cobra-based command tree loads configuration once, builds the
// structured logger, and hands an explicit hostrun.Env to the publish and
// mirror operations. Inspection commands (records, history, status) read the
// metadata directories, the run ledger, and preflight checks directly.
//
// Keep this package lean: add functionality to the internal packages first,
// then surface it through dedicated commands or flags here.
package main
