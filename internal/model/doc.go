// Package model defines the data structures shared by the diagnostic and
// repair runs of tunnelcheck.
//
// This package contains the following main types:
//   - ProbeTarget / ProbeResult: one reachability attempt against host:port
//   - CorsTrial / CorsOutcome: one preflight request for a literal origin
//   - ConfigIssue / Recommendation: findings of the configuration inspector
//   - DiagnosticReport: the accumulator filled by the diagnostic pipeline
//   - Summary: the aggregated result handed to report writers
//   - RepairReport: change log, backups and errors of one repair run
//
// Design decision: We separate models into their own package to avoid
// circular dependencies. The probe, cors, inspect, repair and report packages
// all exchange these types, so centralizing them prevents import cycles.
//
// All types are serializable to JSON for report output and history storage.
package model
