package rules

import (
	"go.uber.org/zap"

	"github.com/temirov/roleaudit/internal/repository"
	"github.com/temirov/roleaudit/internal/suggestion"
)

const (
	ruleEvaluatedMessageConstant    = "rule evaluated"
	engineCompletedMessageConstant  = "analysis rules completed"
	logFieldRuleNameConstant        = "rule"
	logFieldFindingCountConstant    = "findings"
	logFieldRoleCountConstant       = "roles"
	logFieldPlaybookCountConstant   = "playbooks"
	logFieldSuggestionCountConstant = "suggestions"
)

// Rule is a named, read-only detection pass over a snapshot.
type Rule struct {
	Name     string
	Evaluate func(snapshot *repository.Snapshot) []suggestion.Finding
}

// Engine evaluates a fixed, ordered set of rules.
type Engine struct {
	rules  []Rule
	clock  suggestion.Clock
	logger *zap.Logger
}

// NewEngine builds an engine for the enabled rules of the configuration.
func NewEngine(configuration Configuration, clock suggestion.Clock, logger *zap.Logger) (*Engine, error) {
	sanitized := configuration.sanitize()
	if validationError := sanitized.validate(); validationError != nil {
		return nil, validationError
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	enabled := make(map[string]struct{}, len(sanitized.EnabledRules))
	for _, ruleName := range sanitized.EnabledRules {
		enabled[ruleName] = struct{}{}
	}

	var selectedRules []Rule
	for _, registeredRule := range registry(sanitized) {
		if _, isEnabled := enabled[registeredRule.Name]; isEnabled {
			selectedRules = append(selectedRules, registeredRule)
		}
	}

	return &Engine{rules: selectedRules, clock: clock, logger: logger}, nil
}

func registry(configuration Configuration) []Rule {
	return []Rule{
		structureRule(configuration.StandardDirectories),
		documentationRule(configuration.RootReadmeSections, configuration.RoleReadmeSections),
		bestPracticesRule(),
		testingRule(),
		securityRule(),
		maintenanceRule(),
	}
}

// RuleNames returns the names of the rules the engine evaluates, in order.
func (engine *Engine) RuleNames() []string {
	names := make([]string, 0, len(engine.rules))
	for _, selectedRule := range engine.rules {
		names = append(names, selectedRule.Name)
	}
	return names
}

// Run evaluates every rule against the snapshot and returns a new store holding
// the concatenated findings.
func (engine *Engine) Run(snapshot *repository.Snapshot) *suggestion.Store {
	store := suggestion.NewStore(engine.clock)
	for _, selectedRule := range engine.rules {
		findings := selectedRule.Evaluate(snapshot)
		engine.logger.Debug(
			ruleEvaluatedMessageConstant,
			zap.String(logFieldRuleNameConstant, selectedRule.Name),
			zap.Int(logFieldFindingCountConstant, len(findings)),
		)
		store.AddAll(findings)
	}
	engine.logger.Info(
		engineCompletedMessageConstant,
		zap.Int(logFieldRoleCountConstant, len(snapshot.Roles())),
		zap.Int(logFieldPlaybookCountConstant, len(snapshot.Playbooks())),
		zap.Int(logFieldSuggestionCountConstant, store.Len()),
	)
	return store
}
