// Package preflight provides readiness checks for the filesystem paths and
// external binaries songpatch depends on.
//
// These checks run in two contexts:
//   - The pipeline calls CheckReadable and CheckDirectoryAccess before
//     starting work so a bad path fails fast with a clear message.
//   - The CLI "songpatch doctor" command runs RunAll and CheckSystemDeps to
//     display overall health.
package preflight
