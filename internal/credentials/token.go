package credentials

import (
	"os"
	"strings"
)

// Environment variable names consulted when no explicit token is supplied.
const (
	EnvRoleAuditToken  = "ROLEAUDIT_TOKEN"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
)

// DefaultTokenVariables lists the environment variables consulted by default, in
// preference order.
func DefaultTokenVariables() []string {
	return []string{EnvRoleAuditToken, EnvAnthropicAPIKey}
}

// LookupFunc resolves an environment variable.
type LookupFunc func(key string) (string, bool)

// ResolveToken returns the explicit token when it is not blank, otherwise the
// first non-empty value among the named environment variables. A nil lookup
// reads the process environment.
func ResolveToken(explicit string, variableNames []string, lookup LookupFunc) (string, bool) {
	if trimmed := strings.TrimSpace(explicit); len(trimmed) > 0 {
		return trimmed, true
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if len(variableNames) == 0 {
		variableNames = DefaultTokenVariables()
	}
	for _, variableName := range variableNames {
		value, exists := lookup(strings.TrimSpace(variableName))
		if !exists {
			continue
		}
		value = strings.TrimSpace(value)
		if len(value) > 0 {
			return value, true
		}
	}
	return "", false
}

// MapLookup adapts a static map into a LookupFunc.
func MapLookup(environment map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		value, exists := environment[key]
		return value, exists
	}
}
