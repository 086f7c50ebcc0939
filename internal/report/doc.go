// Package report renders suggestion views as console text, JSON, or Markdown.
package report
