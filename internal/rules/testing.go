package rules

import (
	"fmt"
	"path"

	"github.com/temirov/roleaudit/internal/repository"
	"github.com/temirov/roleaudit/internal/suggestion"
)

const (
	testsDirectoryNameConstant         = "tests"
	componentTestsDirectoryConstant    = "component_tests"
	integrationTestsDirectoryConstant  = "integration_tests"
	componentTestFileTemplate          = "%s_tests.yml"
	integrationTestFileTemplate        = "%s_integration_tests.yml"
	scenarioDirectoryNameConstant      = "molecule"
	missingTestsTitleTemplate          = "Add tests for '%s' role"
	missingTestsDescriptionTemplate    = "The '%s' role doesn't have dedicated tests. Consider adding component and integration tests to ensure reliability."
	missingScenarioTitleTemplate       = "Add Molecule tests for '%s' role"
	missingScenarioDescriptionTemplate = "The '%s' role doesn't have Molecule tests. Molecule provides a standardized way to test Ansible roles across different platforms."
)

func testingRule() Rule {
	return Rule{
		Name: RuleNameTesting,
		Evaluate: func(snapshot *repository.Snapshot) []suggestion.Finding {
			var findings []suggestion.Finding
			for _, role := range snapshot.Roles() {
				if hasDedicatedTests(snapshot, role) {
					continue
				}
				findings = append(findings, suggestion.Finding{
					Category:    suggestion.CategoryTesting,
					Title:       fmt.Sprintf(missingTestsTitleTemplate, role.Name),
					Description: fmt.Sprintf(missingTestsDescriptionTemplate, role.Name),
					FilePaths:   []string{snapshot.Path(role.RelativePath)},
					Priority:    suggestion.PriorityHigh,
					Remediation: suggestion.Remediation{Kind: suggestion.RemediationKindManual},
				})
			}
			for _, role := range snapshot.Roles() {
				if snapshot.Exists(role.RelativePath, scenarioDirectoryNameConstant) {
					continue
				}
				findings = append(findings, suggestion.Finding{
					Category:    suggestion.CategoryTesting,
					Title:       fmt.Sprintf(missingScenarioTitleTemplate, role.Name),
					Description: fmt.Sprintf(missingScenarioDescriptionTemplate, role.Name),
					FilePaths:   []string{snapshot.Path(role.RelativePath)},
					Priority:    suggestion.PriorityMedium,
					Remediation: suggestion.Remediation{Kind: suggestion.RemediationKindManual},
				})
			}
			return findings
		},
	}
}

func hasDedicatedTests(snapshot *repository.Snapshot, role repository.Role) bool {
	candidates := []string{
		path.Join(testsDirectoryNameConstant, componentTestsDirectoryConstant, fmt.Sprintf(componentTestFileTemplate, role.Name)),
		path.Join(testsDirectoryNameConstant, integrationTestsDirectoryConstant, fmt.Sprintf(integrationTestFileTemplate, role.Name)),
	}
	for _, candidate := range candidates {
		if snapshot.Exists(candidate) {
			return true
		}
	}
	return false
}
