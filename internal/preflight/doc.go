// Package preflight provides readiness checks for the external tools and
// filesystem paths onepace depends on.
//
// These checks run in two contexts:
//   - The pipeline calls RunAll before dispatching anything. If a required
//     check fails, the run halts before half of the work has been started.
//   - The CLI "onepace check" command renders every result as a table,
//     including the optional index-page reachability probe.
package preflight
