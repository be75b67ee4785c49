// Package preflight provides readiness checks for the external tools and
// filesystem paths the pipeline depends on.
//
// These checks run in two contexts:
//   - The daemon calls RunAll at startup and logs anything failing so a bad
//     install is visible before the first job arrives.
//   - The CLI "clipline health" command uses the same results to display
//     tool and directory status.
//
// The upload handler additionally gates new submissions on FreeSpaceOK.
package preflight
