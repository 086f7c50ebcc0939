// Package remediate implements the remediate command, which turns the
// suggestions of a fresh inspection into prompt files and improvement drafts.
package remediate
