// Package rules implements the repository detection rules and the engine that
// composes them.
//
// Every rule is a read-only pass over a repository.Snapshot returning findings.
// The Engine evaluates the enabled rules in registry order and appends their
// findings to a fresh suggestion.Store, which assigns the identifiers.
package rules
