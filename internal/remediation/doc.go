// Package remediation turns suggestions into prompt and draft artifacts.
//
// For each suggestion the Planner writes prompt_<n>.md, then, unless the run is
// a dry run, asks a Synthesizer for a draft and writes improvement_<n>.md. A
// manifest.json describing the batch is written last. Drafts are selected by
// the structured remediation tag a rule stamps onto its suggestion.
package remediation
