package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const homeShortcutConstant = "~"

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// EnvironmentLookup resolves an environment variable.
type EnvironmentLookup func(name string) (string, bool)

// HomeExpander rewrites user supplied locations such as "~/ansible" or
// "$ANSIBLE_HOME/site" into concrete paths. Unknown variables are left as written.
type HomeExpander struct {
	homeDirectoryProvider HomeDirectoryProvider
	environmentLookup     EnvironmentLookup
	homeDirectoryOnce     sync.Once
	homeDirectory         string
}

// NewHomeExpander constructs a HomeExpander backed by the operating system.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(os.UserHomeDir)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom home lookup.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	return &HomeExpander{homeDirectoryProvider: provider, environmentLookup: os.LookupEnv}
}

// WithEnvironment replaces the environment lookup.
func (expander *HomeExpander) WithEnvironment(lookup EnvironmentLookup) *HomeExpander {
	if expander != nil && lookup != nil {
		expander.environmentLookup = lookup
	}
	return expander
}

// Expand resolves a leading home shortcut and then environment references.
func (expander *HomeExpander) Expand(candidatePath string) string {
	if expander == nil || len(candidatePath) == 0 {
		return candidatePath
	}
	return expander.expandEnvironment(expander.expandHome(candidatePath))
}

func (expander *HomeExpander) expandHome(candidatePath string) string {
	if !strings.HasPrefix(candidatePath, homeShortcutConstant) {
		return candidatePath
	}

	remainder := strings.TrimPrefix(candidatePath, homeShortcutConstant)
	if len(remainder) > 0 && remainder[0] != '/' && remainder[0] != os.PathSeparator {
		// "~user" forms are not supported.
		return candidatePath
	}

	homeDirectory := expander.resolveHomeDirectory()
	if len(homeDirectory) == 0 {
		return candidatePath
	}
	return filepath.Join(homeDirectory, remainder)
}

func (expander *HomeExpander) expandEnvironment(candidatePath string) string {
	if !strings.Contains(candidatePath, "$") || expander.environmentLookup == nil {
		return candidatePath
	}
	return os.Expand(candidatePath, func(variableName string) string {
		if value, found := expander.environmentLookup(variableName); found {
			return value
		}
		return "${" + variableName + "}"
	})
}

func (expander *HomeExpander) resolveHomeDirectory() string {
	expander.homeDirectoryOnce.Do(func() {
		if expander.homeDirectoryProvider == nil {
			return
		}
		if homeDirectory, providerError := expander.homeDirectoryProvider(); providerError == nil {
			expander.homeDirectory = homeDirectory
		}
	})
	return expander.homeDirectory
}
