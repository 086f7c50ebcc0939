// Package analyze implements the analyze command, which inspects a repository
// and renders the improvement suggestions as console text, JSON, or Markdown.
package analyze
