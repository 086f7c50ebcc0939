// Package repository loads a read-only snapshot of a configuration-management
// repository: the roles under roles/ and the playbooks under playbooks/ and at
// the repository root.
package repository
