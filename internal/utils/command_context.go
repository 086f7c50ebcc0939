package utils

import "context"

const (
	configurationFilePathContextKeyConstant = commandContextKey("configurationFilePath")
	repositoryRootContextKeyConstant        = commandContextKey("repositoryRoot")
)

type commandContextKey string

// CommandContextAccessor manages values stored in command execution contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath attaches the configuration file path to the provided context.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	return withStringValue(parentContext, configurationFilePathContextKeyConstant, configurationFilePath)
}

// ConfigurationFilePath extracts the configuration file path from the provided context.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	return stringValue(executionContext, configurationFilePathContextKeyConstant)
}

// WithRepositoryRoot attaches the resolved repository root to the provided context.
func (accessor CommandContextAccessor) WithRepositoryRoot(parentContext context.Context, repositoryRoot string) context.Context {
	return withStringValue(parentContext, repositoryRootContextKeyConstant, repositoryRoot)
}

// RepositoryRoot extracts the repository root from the provided context.
func (accessor CommandContextAccessor) RepositoryRoot(executionContext context.Context) (string, bool) {
	return stringValue(executionContext, repositoryRootContextKeyConstant)
}

func withStringValue(parentContext context.Context, key commandContextKey, value string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, key, value)
}

func stringValue(executionContext context.Context, key commandContextKey) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	value, available := executionContext.Value(key).(string)
	if !available {
		return "", false
	}
	return value, true
}
