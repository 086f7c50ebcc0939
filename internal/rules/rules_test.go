package rules_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/roleaudit/internal/repository"
	"github.com/temirov/roleaudit/internal/rules"
	"github.com/temirov/roleaudit/internal/suggestion"
)

const (
	testSubtestNameTemplateConstant = "%d_%s"
	testRoleNameConstant            = "web"
	testTaggedTasksContentConstant  = "---\n- name: install web server\n  ansible.builtin.package:\n    name: nginx\n  tags: [web]\n"
	testPlaceholderContentConstant  = "---\n"
)

type fixedClock struct{}

func (fixedClock) Now() time.Time {
	return time.Date(2024, time.March, 9, 8, 0, 0, 0, time.UTC)
}

func writeTestFile(testInstance *testing.T, root string, relativePath string, content string) {
	testInstance.Helper()
	absolutePath := filepath.Join(root, filepath.FromSlash(relativePath))
	require.NoError(testInstance, os.MkdirAll(filepath.Dir(absolutePath), 0o755))
	require.NoError(testInstance, os.WriteFile(absolutePath, []byte(content), 0o600))
}

// writeCompleteRole lays out a role that no rule flags.
func writeCompleteRole(testInstance *testing.T, root string, roleName string) {
	testInstance.Helper()
	rolePath := "roles/" + roleName
	writeTestFile(testInstance, root, rolePath+"/defaults/main.yml", testPlaceholderContentConstant)
	writeTestFile(testInstance, root, rolePath+"/handlers/main.yml", testPlaceholderContentConstant)
	writeTestFile(testInstance, root, rolePath+"/meta/main.yml", "---\ngalaxy_info:\n  author: operations\ndependencies: []\n")
	writeTestFile(testInstance, root, rolePath+"/tasks/main.yml", testTaggedTasksContentConstant)
	writeTestFile(testInstance, root, rolePath+"/templates/site.conf.j2", "listen {{ web_port }};\n")
	writeTestFile(testInstance, root, rolePath+"/vars/main.yml", testPlaceholderContentConstant)
	writeTestFile(testInstance, root, rolePath+"/molecule/default/molecule.yml", testPlaceholderContentConstant)
	writeTestFile(testInstance, root, rolePath+"/README.md", "# "+roleName+"\n## Requirements\n## Role Variables\n## Dependencies\n## Example Playbook\n")
	writeTestFile(testInstance, root, "tests/component_tests/"+roleName+"_tests.yml", testPlaceholderContentConstant)
}

func newRepositoryRoot(testInstance *testing.T) string {
	testInstance.Helper()
	root := testInstance.TempDir()
	writeTestFile(testInstance, root, "playbooks/site.yml", testPlaceholderContentConstant)
	return root
}

func loadSnapshot(testInstance *testing.T, root string) *repository.Snapshot {
	testInstance.Helper()
	snapshot, loadError := repository.Load(os.DirFS(root), root)
	require.NoError(testInstance, loadError)
	return snapshot
}

func runEngine(testInstance *testing.T, configuration rules.Configuration, root string) []suggestion.Suggestion {
	testInstance.Helper()
	engine, engineError := rules.NewEngine(configuration, fixedClock{}, zap.NewNop())
	require.NoError(testInstance, engineError)
	return engine.Run(loadSnapshot(testInstance, root)).All()
}

func configurationFor(ruleNames ...string) rules.Configuration {
	configuration := rules.DefaultConfiguration()
	configuration.EnabledRules = ruleNames
	return configuration
}

func TestCompleteRoleProducesNoSuggestions(testInstance *testing.T) {
	root := newRepositoryRoot(testInstance)
	writeCompleteRole(testInstance, root, testRoleNameConstant)

	require.Empty(testInstance, runEngine(testInstance, rules.DefaultConfiguration(), root))
}

func TestIncompleteRoleYieldsThreeSeparateSuggestions(testInstance *testing.T) {
	root := newRepositoryRoot(testInstance)
	writeCompleteRole(testInstance, root, testRoleNameConstant)
	require.NoError(testInstance, os.RemoveAll(filepath.Join(root, "roles", testRoleNameConstant, "meta")))
	require.NoError(testInstance, os.RemoveAll(filepath.Join(root, "roles", testRoleNameConstant, "vars")))
	require.NoError(testInstance, os.Remove(filepath.Join(root, "roles", testRoleNameConstant, "README.md")))

	suggestions := runEngine(testInstance, rules.DefaultConfiguration(), root)
	require.Len(testInstance, suggestions, 3)

	rolePath := filepath.Join(root, "roles", testRoleNameConstant)

	require.Equal(testInstance, suggestion.CategoryStructure, suggestions[0].Category)
	require.Equal(testInstance, suggestion.PriorityMedium, suggestions[0].Priority)
	require.Contains(testInstance, suggestions[0].Description, "meta, vars")
	require.Equal(testInstance, []string{"meta", "vars"}, suggestions[0].Remediation.Subjects)

	require.Equal(testInstance, suggestion.CategoryDocumentation, suggestions[1].Category)
	require.Equal(testInstance, suggestion.PriorityHigh, suggestions[1].Priority)
	require.Equal(testInstance, "Add README.md for 'web' role", suggestions[1].Title)
	require.Equal(testInstance, suggestion.RemediationKindReadmeSkeleton, suggestions[1].Remediation.Kind)

	require.Equal(testInstance, suggestion.CategoryStructure, suggestions[2].Category)
	require.Equal(testInstance, suggestion.PriorityMedium, suggestions[2].Priority)
	require.Equal(testInstance, "Add meta/main.yml for 'web' role", suggestions[2].Title)

	for suggestionIndex, detected := range suggestions {
		require.Equal(testInstance, suggestionIndex+1, detected.ID)
		require.Equal(testInstance, []string{rolePath}, detected.FilePaths)
		require.Equal(testInstance, "2024-03-09", detected.CreatedDate)
	}
}

func TestHardcodedValuesInTaskFile(testInstance *testing.T) {
	testCases := []struct {
		name           string
		content        string
		expectedTitles []string
		expectedRanks  []suggestion.Priority
	}{
		{
			name:           "ip_and_port",
			content:        "- name: configure upstream\n  ansible.builtin.lineinfile:\n    line: \"upstream 192.168.1.10:8080\"\n  tags: [web]\n",
			expectedTitles: []string{"Replace hardcoded IPs in 'web/upstream.yml'", "Replace hardcoded ports in 'web/upstream.yml'"},
			expectedRanks:  []suggestion.Priority{suggestion.PriorityHigh, suggestion.PriorityMedium},
		},
		{
			name:           "templated_port",
			content:        "- name: configure upstream\n  ansible.builtin.lineinfile:\n    line: \"upstream backend:{{ web_port }} then :8080\"\n",
			expectedTitles: []string{},
			expectedRanks:  []suggestion.Priority{},
		},
		{
			name:           "ip_only",
			content:        "- name: ping\n  ansible.builtin.command: ping 10.0.0.1\n",
			expectedTitles: []string{"Replace hardcoded IPs in 'web/upstream.yml'"},
			expectedRanks:  []suggestion.Priority{suggestion.PriorityHigh},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			root := newRepositoryRoot(testInstance)
			writeCompleteRole(testInstance, root, testRoleNameConstant)
			writeTestFile(testInstance, root, "roles/web/tasks/upstream.yml", testCase.content)

			suggestions := runEngine(testInstance, configurationFor(rules.RuleNameBestPractices), root)

			titles := []string{}
			priorities := []suggestion.Priority{}
			for _, detected := range suggestions {
				require.Equal(testInstance, suggestion.CategoryBestPractices, detected.Category)
				require.Equal(testInstance, suggestion.RemediationKindExternalizeValue, detected.Remediation.Kind)
				titles = append(titles, detected.Title)
				priorities = append(priorities, detected.Priority)
			}
			require.Equal(testInstance, testCase.expectedTitles, titles)
			require.Equal(testInstance, testCase.expectedRanks, priorities)
		})
	}
}

func TestMissingTagsAndTests(testInstance *testing.T) {
	root := newRepositoryRoot(testInstance)
	writeCompleteRole(testInstance, root, testRoleNameConstant)
	writeTestFile(testInstance, root, "roles/web/tasks/main.yml", "- name: install\n  ansible.builtin.package:\n    name: nginx\n")
	require.NoError(testInstance, os.RemoveAll(filepath.Join(root, "tests")))
	require.NoError(testInstance, os.RemoveAll(filepath.Join(root, "roles", testRoleNameConstant, "molecule")))

	suggestions := runEngine(testInstance, configurationFor(rules.RuleNameBestPractices, rules.RuleNameTesting), root)
	require.Len(testInstance, suggestions, 3)
	require.Equal(testInstance, "Add tags to 'web' role tasks", suggestions[0].Title)
	require.Equal(testInstance, suggestion.PriorityLow, suggestions[0].Priority)
	require.Equal(testInstance, "Add tests for 'web' role", suggestions[1].Title)
	require.Equal(testInstance, suggestion.PriorityHigh, suggestions[1].Priority)
	require.Equal(testInstance, "Add Molecule tests for 'web' role", suggestions[2].Title)
	require.Equal(testInstance, suggestion.PriorityMedium, suggestions[2].Priority)
}

func TestIntegrationTestsSatisfyTestingRule(testInstance *testing.T) {
	root := newRepositoryRoot(testInstance)
	writeCompleteRole(testInstance, root, testRoleNameConstant)
	require.NoError(testInstance, os.RemoveAll(filepath.Join(root, "tests")))
	writeTestFile(testInstance, root, "tests/integration_tests/web_integration_tests.yml", testPlaceholderContentConstant)

	require.Empty(testInstance, runEngine(testInstance, configurationFor(rules.RuleNameTesting), root))
}

func TestReadmeSectionsDetection(testInstance *testing.T) {
	root := newRepositoryRoot(testInstance)
	writeCompleteRole(testInstance, root, testRoleNameConstant)
	writeTestFile(testInstance, root, "README.md", "# Cluster\n### installation\n")
	writeTestFile(testInstance, root, "roles/web/README.md", "# web\n## Requirements\n")

	suggestions := runEngine(testInstance, configurationFor(rules.RuleNameDocumentation), root)
	require.Len(testInstance, suggestions, 2)

	require.Equal(testInstance, "Enhance main README.md with additional sections", suggestions[0].Title)
	require.Equal(testInstance, "The main README.md could be improved by adding these sections: Requirements, Usage.", suggestions[0].Description)
	require.Equal(testInstance, []string{filepath.Join(root, "README.md")}, suggestions[0].FilePaths)

	require.Equal(testInstance, "Enhance README.md for 'web' role", suggestions[1].Title)
	require.Equal(testInstance, []string{"Role Variables", "Dependencies", "Example Playbook"}, suggestions[1].Remediation.Subjects)
}

func TestSecurityRule(testInstance *testing.T) {
	testCases := []struct {
		name          string
		relativePath  string
		content       string
		expectFinding bool
	}{
		{name: "literal_password", relativePath: "roles/web/defaults/main.yml", content: "db_password: \"hunter2\"\n", expectFinding: true},
		{name: "template_placeholder", relativePath: "roles/web/defaults/main.yml", content: "db_password: \"{{ vault_db_password }}\"\n", expectFinding: false},
		{name: "empty_literal", relativePath: "roles/web/defaults/main.yml", content: "api_token: ''\n", expectFinding: false},
		{name: "mixed_case_key", relativePath: "roles/web/templates/app.ini.j2", content: "API_KEY: 'abc123'\n", expectFinding: true},
		{name: "placeholder_then_literal", relativePath: "roles/web/vars/main.yml", content: "secret: \"{{ a }}\"\ntoken: 'plain'\n", expectFinding: true},
		{name: "unscanned_extension", relativePath: "roles/web/files/notes.txt", content: "password: 'hunter2'\n", expectFinding: false},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			root := newRepositoryRoot(testInstance)
			writeCompleteRole(testInstance, root, testRoleNameConstant)
			writeTestFile(testInstance, root, testCase.relativePath, testCase.content)

			suggestions := runEngine(testInstance, configurationFor(rules.RuleNameSecurity), root)
			if !testCase.expectFinding {
				require.Empty(testInstance, suggestions)
				return
			}
			require.Len(testInstance, suggestions, 1)
			relativePath := filepath.FromSlash(testCase.relativePath)
			require.Equal(testInstance, fmt.Sprintf("Potential sensitive information in '%s'", relativePath), suggestions[0].Title)
			require.Equal(testInstance, suggestion.PriorityCritical, suggestions[0].Priority)
			require.Equal(testInstance, []string{filepath.Join(root, relativePath)}, suggestions[0].FilePaths)
		})
	}
}

func TestSecurityRuleReportsOncePerFile(testInstance *testing.T) {
	root := newRepositoryRoot(testInstance)
	writeCompleteRole(testInstance, root, testRoleNameConstant)
	writeTestFile(testInstance, root, "roles/web/defaults/main.yml", "password: 'a'\nsecret: 'b'\ntoken: 'c'\nkey: 'd'\n")

	suggestions := runEngine(testInstance, configurationFor(rules.RuleNameSecurity), root)
	require.Len(testInstance, suggestions, 1)
}

func TestUndecodableFilesAreSkipped(testInstance *testing.T) {
	root := newRepositoryRoot(testInstance)
	writeCompleteRole(testInstance, root, testRoleNameConstant)
	writeTestFile(testInstance, root, "roles/web/defaults/main.yml", "password: '\xff\xfe'\n")
	writeTestFile(testInstance, root, "roles/web/tasks/binary.yml", "\xff 10.0.0.1:8080")

	suggestions := runEngine(testInstance, rules.DefaultConfiguration(), root)
	require.Empty(testInstance, suggestions)
}

func TestUnpinnedDependencies(testInstance *testing.T) {
	testCases := []struct {
		name          string
		content       string
		expectFinding bool
	}{
		{name: "empty_list", content: "dependencies: []\n", expectFinding: false},
		{name: "string_entry", content: "dependencies:\n  - common\n", expectFinding: true},
		{name: "mapping_without_version", content: "dependencies:\n  - role: common\n", expectFinding: true},
		{name: "mapping_with_version", content: "dependencies:\n  - role: common\n    version: \"1.2.0\"\n", expectFinding: false},
		{name: "blank_version", content: "dependencies:\n  - role: common\n    version: \"\"\n", expectFinding: true},
		{name: "undecodable_unpinned", content: "dependencies:\n  - role: [common\n", expectFinding: true},
		{name: "undecodable_pinned", content: "dependencies:\n  - role: [common\n    version: '2.0'\n", expectFinding: false},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			root := newRepositoryRoot(testInstance)
			writeCompleteRole(testInstance, root, testRoleNameConstant)
			writeTestFile(testInstance, root, "roles/web/meta/main.yml", testCase.content)

			suggestions := runEngine(testInstance, configurationFor(rules.RuleNameMaintenance), root)
			if !testCase.expectFinding {
				require.Empty(testInstance, suggestions)
				return
			}
			require.Len(testInstance, suggestions, 1)
			require.Equal(testInstance, "Pin dependency versions in 'web' role", suggestions[0].Title)
			require.Equal(testInstance, []string{filepath.Join(root, "roles", "web", "meta", "main.yml")}, suggestions[0].FilePaths)
		})
	}
}

func TestReleaseURLs(testInstance *testing.T) {
	root := newRepositoryRoot(testInstance)
	writeCompleteRole(testInstance, root, testRoleNameConstant)
	releaseURL := "https://github.com/prometheus/node_exporter/releases/download/v1.7.0/node_exporter.tar.gz"
	writeTestFile(testInstance, root, "roles/web/defaults/main.yml", fmt.Sprintf("exporter_url: %s\ndocs_url: https://github.com/prometheus/node_exporter\n", releaseURL))

	suggestions := runEngine(testInstance, configurationFor(rules.RuleNameMaintenance), root)
	require.Len(testInstance, suggestions, 1)
	relativePath := filepath.Join("roles", "web", "defaults", "main.yml")
	require.Equal(testInstance, fmt.Sprintf("Check for newer versions in '%s'", relativePath), suggestions[0].Title)
	require.Contains(testInstance, suggestions[0].Description, releaseURL)
	require.Equal(testInstance, suggestion.PriorityLow, suggestions[0].Priority)
}

func TestEngineRunsAreIdempotent(testInstance *testing.T) {
	root := newRepositoryRoot(testInstance)
	writeCompleteRole(testInstance, root, testRoleNameConstant)
	writeTestFile(testInstance, root, "roles/db/tasks/main.yml", "- name: bind\n  line: 10.0.0.5:5432\n")

	firstRun := runEngine(testInstance, rules.DefaultConfiguration(), root)
	secondRun := runEngine(testInstance, rules.DefaultConfiguration(), root)
	require.NotEmpty(testInstance, firstRun)
	require.Equal(testInstance, firstRun, secondRun)
	for suggestionIndex, detected := range firstRun {
		require.Equal(testInstance, suggestionIndex+1, detected.ID)
	}
}

func TestNewEngineConfiguration(testInstance *testing.T) {
	testCases := []struct {
		name          string
		enabledRules  []string
		expectedNames []string
		expectError   bool
	}{
		{name: "defaults", enabledRules: nil, expectedNames: rules.RuleNames()},
		{name: "subset_keeps_registry_order", enabledRules: []string{" Security ", "structure"}, expectedNames: []string{rules.RuleNameStructure, rules.RuleNameSecurity}},
		{name: "unknown_rule", enabledRules: []string{"performance"}, expectError: true},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			engine, engineError := rules.NewEngine(configurationFor(testCase.enabledRules...), fixedClock{}, nil)
			if testCase.expectError {
				require.Error(testInstance, engineError)
				require.Contains(testInstance, engineError.Error(), "performance")
				return
			}
			require.NoError(testInstance, engineError)
			require.Equal(testInstance, testCase.expectedNames, engine.RuleNames())
		})
	}
}

func TestEngineLogsRuleProgress(testInstance *testing.T) {
	root := newRepositoryRoot(testInstance)
	writeCompleteRole(testInstance, root, testRoleNameConstant)

	observedCore, observedLogs := observer.New(zapcore.DebugLevel)
	engine, engineError := rules.NewEngine(rules.DefaultConfiguration(), fixedClock{}, zap.New(observedCore))
	require.NoError(testInstance, engineError)
	engine.Run(loadSnapshot(testInstance, root))

	require.Equal(testInstance, len(rules.RuleNames()), observedLogs.FilterMessage("rule evaluated").Len())
	completedEntries := observedLogs.FilterMessage("analysis rules completed").All()
	require.Len(testInstance, completedEntries, 1)
	require.Equal(testInstance, int64(1), completedEntries[0].ContextMap()["roles"])
	require.Equal(testInstance, int64(1), completedEntries[0].ContextMap()["playbooks"])
}

func TestSymlinkedRolesAndTaskFilesAreAudited(testInstance *testing.T) {
	sharedRoles := testInstance.TempDir()
	writeTestFile(testInstance, sharedRoles, "web/tasks/main.yml", `---
- name: bind
  ansible.builtin.debug:
    msg: 10.0.0.1
`)

	externalTasks := testInstance.TempDir()
	writeTestFile(testInstance, externalTasks, "cache.yml", `---
- name: cache
  ansible.builtin.debug:
    msg: 10.0.0.2
`)

	root := newRepositoryRoot(testInstance)
	writeCompleteRole(testInstance, root, "db")
	require.NoError(testInstance, os.Symlink(filepath.Join(externalTasks, "cache.yml"), filepath.Join(root, "roles", "db", "tasks", "cache.yml")))
	require.NoError(testInstance, os.Symlink(filepath.Join(sharedRoles, testRoleNameConstant), filepath.Join(root, "roles", testRoleNameConstant)))

	suggestions := runEngine(testInstance, rules.DefaultConfiguration(), root)

	titles := make([]string, 0, len(suggestions))
	for _, detected := range suggestions {
		titles = append(titles, detected.Title)
	}
	require.Contains(testInstance, titles, "Complete directory structure for 'web' role")
	require.Contains(testInstance, titles, "Add README.md for 'web' role")
	require.Contains(testInstance, titles, "Add meta/main.yml for 'web' role")
	require.Contains(testInstance, titles, "Replace hardcoded IPs in 'web/main.yml'")
	require.Contains(testInstance, titles, "Replace hardcoded IPs in 'db/cache.yml'")
}
