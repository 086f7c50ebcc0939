// Package credentials resolves API tokens for the remote draft synthesis engine.
package credentials
