// Package cli constructs the roleaudit command-line interface, wiring the
// Cobra command hierarchy, configuration loader, and structured logging
// primitives around the analyze and remediate commands.
package cli
