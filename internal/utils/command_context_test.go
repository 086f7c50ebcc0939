package utils_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/roleaudit/internal/utils"
)

const (
	testContextConfigurationPathConstant = "/etc/roleaudit/config.yaml"
	testContextRepositoryRootConstant    = "/srv/ansible-hpc"
)

func TestCommandContextAccessorRoundTrip(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	executionContext := accessor.WithConfigurationFilePath(context.Background(), testContextConfigurationPathConstant)
	executionContext = accessor.WithRepositoryRoot(executionContext, testContextRepositoryRootConstant)

	configurationPath, configurationAvailable := accessor.ConfigurationFilePath(executionContext)
	require.True(testInstance, configurationAvailable)
	require.Equal(testInstance, testContextConfigurationPathConstant, configurationPath)

	repositoryRoot, repositoryRootAvailable := accessor.RepositoryRoot(executionContext)
	require.True(testInstance, repositoryRootAvailable)
	require.Equal(testInstance, testContextRepositoryRootConstant, repositoryRoot)
}

func TestCommandContextAccessorMissingValues(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	_, repositoryRootAvailable := accessor.RepositoryRoot(context.Background())
	require.False(testInstance, repositoryRootAvailable)

	//nolint:staticcheck
	_, configurationAvailable := accessor.ConfigurationFilePath(nil)
	require.False(testInstance, configurationAvailable)

	//nolint:staticcheck
	executionContext := accessor.WithRepositoryRoot(nil, testContextRepositoryRootConstant)
	repositoryRoot, _ := accessor.RepositoryRoot(executionContext)
	require.Equal(testInstance, testContextRepositoryRootConstant, repositoryRoot)
}
