package audit

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/roleaudit/internal/repository"
	"github.com/temirov/roleaudit/internal/rules"
	"github.com/temirov/roleaudit/internal/suggestion"
	pathutils "github.com/temirov/roleaudit/internal/utils/path"
)

const (
	defaultRepositoryRootConstant              = "."
	fileSystemMissingMessageConstant           = "audit file system must be provided"
	repositoryRootResolveErrorTemplateConstant = "unable to resolve repository root %s: %w"
	repositoryRootNotDirectoryTemplateConstant = "repository root %s is not a directory"
	repositoryLoadErrorTemplateConstant        = "unable to load repository: %w"
	ruleConfigurationErrorTemplateConstant     = "invalid rule configuration: %w"
	inspectionStartedMessageConstant           = "repository inspection started"
	inspectionCompletedMessageConstant         = "repository inspection completed"
	logFieldRepositoryRootConstant             = "repository_root"
	logFieldTotalSuggestionsConstant           = "total_suggestions"
	logFieldMatchingSuggestionsConstant        = "matching_suggestions"
	logFieldCategoryFilterConstant             = "category_filter"
	logFieldRoleFilterConstant                 = "role_filter"
)

// Request selects the repository and the view to return.
type Request struct {
	RepositoryRoot string
	Filter         suggestion.FilterOptions
}

// Result carries the filtered view of one inspection.
type Result struct {
	RepositoryRoot string
	ProjectName    string
	Total          int
	Suggestions    []suggestion.Suggestion
}

// Service runs inspections against repositories on a file system.
type Service struct {
	fileSystem    FileSystem
	configuration Configuration
	clock         suggestion.Clock
	logger        *zap.Logger
	homeExpander  *pathutils.HomeExpander
}

// NewService constructs a Service.
func NewService(fileSystem FileSystem, configuration Configuration, clock suggestion.Clock, logger *zap.Logger) (*Service, error) {
	if fileSystem == nil {
		return nil, errors.New(fileSystemMissingMessageConstant)
	}
	if clock == nil {
		clock = suggestion.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		fileSystem:    fileSystem,
		configuration: configuration.sanitize(),
		clock:         clock,
		logger:        logger,
		homeExpander:  pathutils.NewHomeExpander(),
	}, nil
}

// Inspect analyzes the repository into a fresh store and returns the filtered
// view in identifier order. The store itself is never filtered in place.
func (service *Service) Inspect(request Request) (Result, error) {
	repositoryRoot, resolveError := service.resolveRepositoryRoot(request.RepositoryRoot)
	if resolveError != nil {
		return Result{}, resolveError
	}

	service.logger.Debug(
		inspectionStartedMessageConstant,
		zap.String(logFieldRepositoryRootConstant, repositoryRoot),
		zap.String(logFieldCategoryFilterConstant, string(request.Filter.Category)),
		zap.String(logFieldRoleFilterConstant, request.Filter.Role),
	)

	engine, engineError := rules.NewEngine(service.configuration.RuleConfiguration(), service.clock, service.logger)
	if engineError != nil {
		return Result{}, fmt.Errorf(ruleConfigurationErrorTemplateConstant, engineError)
	}

	snapshot, loadError := repository.Load(service.fileSystem.RepositoryFS(repositoryRoot), repositoryRoot)
	if loadError != nil {
		return Result{}, fmt.Errorf(repositoryLoadErrorTemplateConstant, loadError)
	}

	store := engine.Run(snapshot)
	view := suggestion.Filter(store.All(), request.Filter)

	service.logger.Info(
		inspectionCompletedMessageConstant,
		zap.String(logFieldRepositoryRootConstant, repositoryRoot),
		zap.Int(logFieldTotalSuggestionsConstant, store.Len()),
		zap.Int(logFieldMatchingSuggestionsConstant, len(view)),
	)

	return Result{
		RepositoryRoot: repositoryRoot,
		ProjectName:    service.projectName(repositoryRoot),
		Total:          store.Len(),
		Suggestions:    view,
	}, nil
}

func (service *Service) resolveRepositoryRoot(rawRoot string) (string, error) {
	trimmedRoot := strings.TrimSpace(rawRoot)
	if len(trimmedRoot) == 0 {
		trimmedRoot = defaultRepositoryRootConstant
	}
	expandedRoot := service.homeExpander.Expand(trimmedRoot)

	absoluteRoot, absError := service.fileSystem.Abs(expandedRoot)
	if absError != nil {
		return "", fmt.Errorf(repositoryRootResolveErrorTemplateConstant, trimmedRoot, absError)
	}

	rootInfo, statError := service.fileSystem.Stat(absoluteRoot)
	if statError != nil {
		return "", fmt.Errorf(repositoryRootResolveErrorTemplateConstant, absoluteRoot, statError)
	}
	if !rootInfo.IsDir() {
		return "", fmt.Errorf(repositoryRootNotDirectoryTemplateConstant, absoluteRoot)
	}

	return filepath.Clean(absoluteRoot), nil
}

func (service *Service) projectName(repositoryRoot string) string {
	if len(service.configuration.ProjectName) > 0 {
		return service.configuration.ProjectName
	}
	return filepath.Base(repositoryRoot)
}
