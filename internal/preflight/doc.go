// Package preflight provides readiness checks for the filesystem paths and
// object store that assetsync depends on.
//
// These checks run in two contexts:
//   - hostrun calls RunAll before a publish run and refuses to start when a
//     required directory is unusable.
//   - The CLI "assetsync status" command renders every Result, including the
//     optional store reachability probe.
package preflight
