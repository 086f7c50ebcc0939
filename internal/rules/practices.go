package rules

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/temirov/roleaudit/internal/repository"
	"github.com/temirov/roleaudit/internal/suggestion"
)

const (
	tasksDirectoryNameConstant       = "tasks"
	tasksMainFileNameConstant        = "main.yml"
	taskFileExtensionConstant        = ".yml"
	tagsDeclarationConstant          = "tags:"
	hardcodedIPSubjectConstant       = "ip"
	hardcodedPortSubjectConstant     = "port"
	hardcodedIPTitleTemplate         = "Replace hardcoded IPs in '%s/%s'"
	hardcodedIPDescriptionTemplate   = "Found hardcoded IP addresses in '%s/%s'. Consider replacing them with variables for better maintainability."
	hardcodedPortTitleTemplate       = "Replace hardcoded ports in '%s/%s'"
	hardcodedPortDescriptionTemplate = "Found hardcoded ports in '%s/%s'. Consider replacing them with variables for better maintainability."
	missingTagsTitleTemplate         = "Add tags to '%s' role tasks"
	missingTagsDescriptionTemplate   = "The tasks in '%s' role don't use tags. Adding tags would improve playbook flexibility and selective execution."
)

var (
	ipAddressPattern     = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
	portPattern          = regexp.MustCompile(`:\d{2,5}\b`)
	templatedPortPattern = regexp.MustCompile(`:\{\{.*\}\}`)
)

func bestPracticesRule() Rule {
	return Rule{
		Name: RuleNameBestPractices,
		Evaluate: func(snapshot *repository.Snapshot) []suggestion.Finding {
			var findings []suggestion.Finding
			for _, role := range snapshot.Roles() {
				findings = append(findings, hardcodedValueFindings(snapshot, role)...)
			}
			for _, role := range snapshot.Roles() {
				if finding, found := missingTagsFinding(snapshot, role); found {
					findings = append(findings, finding)
				}
			}
			return findings
		},
	}
}

func hardcodedValueFindings(snapshot *repository.Snapshot, role repository.Role) []suggestion.Finding {
	var findings []suggestion.Finding
	for _, taskFile := range snapshot.Files(path.Join(role.RelativePath, tasksDirectoryNameConstant)) {
		if !strings.HasSuffix(taskFile, taskFileExtensionConstant) {
			continue
		}
		content, readable := snapshot.ReadText(taskFile)
		if !readable {
			continue
		}
		fileName := path.Base(taskFile)

		if ipAddressPattern.MatchString(content) {
			findings = append(findings, suggestion.Finding{
				Category:    suggestion.CategoryBestPractices,
				Title:       fmt.Sprintf(hardcodedIPTitleTemplate, role.Name, fileName),
				Description: fmt.Sprintf(hardcodedIPDescriptionTemplate, role.Name, fileName),
				FilePaths:   []string{snapshot.Path(taskFile)},
				Priority:    suggestion.PriorityHigh,
				Remediation: suggestion.Remediation{
					Kind:     suggestion.RemediationKindExternalizeValue,
					Subjects: []string{hardcodedIPSubjectConstant},
				},
			})
		}

		if portPattern.MatchString(content) && !templatedPortPattern.MatchString(content) {
			findings = append(findings, suggestion.Finding{
				Category:    suggestion.CategoryBestPractices,
				Title:       fmt.Sprintf(hardcodedPortTitleTemplate, role.Name, fileName),
				Description: fmt.Sprintf(hardcodedPortDescriptionTemplate, role.Name, fileName),
				FilePaths:   []string{snapshot.Path(taskFile)},
				Priority:    suggestion.PriorityMedium,
				Remediation: suggestion.Remediation{
					Kind:     suggestion.RemediationKindExternalizeValue,
					Subjects: []string{hardcodedPortSubjectConstant},
				},
			})
		}
	}
	return findings
}

func missingTagsFinding(snapshot *repository.Snapshot, role repository.Role) (suggestion.Finding, bool) {
	mainTasksPath := path.Join(role.RelativePath, tasksDirectoryNameConstant, tasksMainFileNameConstant)
	content, readable := snapshot.ReadText(mainTasksPath)
	if !readable || strings.Contains(content, tagsDeclarationConstant) {
		return suggestion.Finding{}, false
	}
	return suggestion.Finding{
		Category:    suggestion.CategoryBestPractices,
		Title:       fmt.Sprintf(missingTagsTitleTemplate, role.Name),
		Description: fmt.Sprintf(missingTagsDescriptionTemplate, role.Name),
		FilePaths:   []string{snapshot.Path(mainTasksPath)},
		Priority:    suggestion.PriorityLow,
		Remediation: suggestion.Remediation{Kind: suggestion.RemediationKindManual},
	}, true
}
