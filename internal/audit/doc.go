// Package audit drives one inspection of an Ansible-style repository.
//
// Service resolves the repository root, loads a snapshot, evaluates the
// configured rules into a fresh suggestion store, and returns the filtered
// view. The analyze and remediate commands each run their own inspection.
package audit
