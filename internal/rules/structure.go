package rules

import (
	"fmt"
	"strings"

	"github.com/temirov/roleaudit/internal/repository"
	"github.com/temirov/roleaudit/internal/suggestion"
)

const (
	readmeFileNameConstant                = "README.md"
	metaDirectoryNameConstant             = "meta"
	listSeparatorConstant                 = ", "
	missingDirectoriesTitleTemplate       = "Complete directory structure for '%s' role"
	missingDirectoriesDescriptionTemplate = "The '%s' role is missing standard directories: %s. Consider adding these directories to follow Ansible role conventions."
	missingReadmeTitleTemplate            = "Add README.md for '%s' role"
	missingReadmeDescriptionTemplate      = "The '%s' role is missing a README.md file. Adding documentation will help users understand the role's purpose and usage."
	missingMetadataTitleTemplate          = "Add meta/main.yml for '%s' role"
	missingMetadataDescriptionTemplate    = "The '%s' role is missing meta/main.yml. This file is important for role metadata and dependencies."
)

var metaDescriptorFileNames = []string{"main.yml", "main.yaml"}

func structureRule(standardDirectories []string) Rule {
	return Rule{
		Name: RuleNameStructure,
		Evaluate: func(snapshot *repository.Snapshot) []suggestion.Finding {
			var findings []suggestion.Finding
			for _, role := range snapshot.Roles() {
				if finding, found := missingDirectoriesFinding(snapshot, role, standardDirectories); found {
					findings = append(findings, finding)
				}
				if !snapshot.Exists(role.RelativePath, readmeFileNameConstant) {
					findings = append(findings, suggestion.Finding{
						Category:    suggestion.CategoryDocumentation,
						Title:       fmt.Sprintf(missingReadmeTitleTemplate, role.Name),
						Description: fmt.Sprintf(missingReadmeDescriptionTemplate, role.Name),
						FilePaths:   []string{snapshot.Path(role.RelativePath)},
						Priority:    suggestion.PriorityHigh,
						Remediation: suggestion.Remediation{Kind: suggestion.RemediationKindReadmeSkeleton},
					})
				}
				if _, found := metaDescriptorPath(snapshot, role); !found {
					findings = append(findings, suggestion.Finding{
						Category:    suggestion.CategoryStructure,
						Title:       fmt.Sprintf(missingMetadataTitleTemplate, role.Name),
						Description: fmt.Sprintf(missingMetadataDescriptionTemplate, role.Name),
						FilePaths:   []string{snapshot.Path(role.RelativePath)},
						Priority:    suggestion.PriorityMedium,
						Remediation: suggestion.Remediation{
							Kind:     suggestion.RemediationKindRoleSkeleton,
							Subjects: []string{metaDirectoryNameConstant},
						},
					})
				}
			}
			return findings
		},
	}
}

func missingDirectoriesFinding(snapshot *repository.Snapshot, role repository.Role, standardDirectories []string) (suggestion.Finding, bool) {
	existing := make(map[string]struct{})
	for _, directoryName := range snapshot.Subdirectories(role.RelativePath) {
		existing[directoryName] = struct{}{}
	}

	var missing []string
	for _, directoryName := range standardDirectories {
		if _, present := existing[directoryName]; !present {
			missing = append(missing, directoryName)
		}
	}
	if len(missing) == 0 {
		return suggestion.Finding{}, false
	}

	return suggestion.Finding{
		Category:    suggestion.CategoryStructure,
		Title:       fmt.Sprintf(missingDirectoriesTitleTemplate, role.Name),
		Description: fmt.Sprintf(missingDirectoriesDescriptionTemplate, role.Name, strings.Join(missing, listSeparatorConstant)),
		FilePaths:   []string{snapshot.Path(role.RelativePath)},
		Priority:    suggestion.PriorityMedium,
		Remediation: suggestion.Remediation{
			Kind:     suggestion.RemediationKindRoleSkeleton,
			Subjects: missing,
		},
	}, true
}

// metaDescriptorPath returns the relative path of the role's meta/main descriptor.
func metaDescriptorPath(snapshot *repository.Snapshot, role repository.Role) (string, bool) {
	for _, fileName := range metaDescriptorFileNames {
		candidate := role.RelativePath + "/" + metaDirectoryNameConstant + "/" + fileName
		if snapshot.Exists(candidate) {
			return candidate, true
		}
	}
	return "", false
}
