// Package suggestion defines the improvement suggestion taxonomy shared by the
// rule engine, the reporters, and the remediation planner.
//
// It exposes the closed Category, Priority, and RemediationKind enumerations,
// the append-only Store that assigns dense identifiers within one analysis run,
// and the Filter and GroupByCategory helpers that derive views without mutating
// the store.
package suggestion
