package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/temirov/roleaudit/internal/repository"
	"github.com/temirov/roleaudit/internal/suggestion"
)

const (
	templateExpressionPrefixConstant  = "{{"
	sensitiveValueTitleTemplate       = "Potential sensitive information in '%s'"
	sensitiveValueDescriptionTemplate = "Found potential hardcoded sensitive information in '%s'. Consider using Ansible Vault or environment variables."
)

var (
	sensitiveKeyPattern       = regexp.MustCompile(`(?i)(password|secret|token|key)\s*:\s*["']`)
	securityScannedExtensions = []string{".yml", ".yaml", ".j2"}
)

func securityRule() Rule {
	return Rule{
		Name: RuleNameSecurity,
		Evaluate: func(snapshot *repository.Snapshot) []suggestion.Finding {
			var findings []suggestion.Finding
			for _, role := range snapshot.Roles() {
				for _, candidatePath := range snapshot.WalkFiles(role.RelativePath) {
					if !hasAnySuffix(candidatePath, securityScannedExtensions) {
						continue
					}
					content, readable := snapshot.ReadText(candidatePath)
					if !readable || !containsLiteralSecret(content) {
						continue
					}
					reportablePath := snapshot.Path(candidatePath)
					relativePath := snapshot.RelativePath(reportablePath)
					findings = append(findings, suggestion.Finding{
						Category:    suggestion.CategorySecurity,
						Title:       fmt.Sprintf(sensitiveValueTitleTemplate, relativePath),
						Description: fmt.Sprintf(sensitiveValueDescriptionTemplate, relativePath),
						FilePaths:   []string{reportablePath},
						Priority:    suggestion.PriorityCritical,
						Remediation: suggestion.Remediation{Kind: suggestion.RemediationKindManual},
					})
				}
			}
			return findings
		},
	}
}

// containsLiteralSecret reports whether a sensitive key is assigned a quoted
// literal. Values that open with a template expression or an empty string do
// not count.
func containsLiteralSecret(content string) bool {
	for _, matchBounds := range sensitiveKeyPattern.FindAllStringIndex(content, -1) {
		valueStart := matchBounds[1]
		if valueStart >= len(content) {
			continue
		}
		remainder := content[valueStart:]
		if strings.HasPrefix(remainder, templateExpressionPrefixConstant) {
			continue
		}
		if remainder[0] == '"' || remainder[0] == '\'' {
			continue
		}
		return true
	}
	return false
}

func hasAnySuffix(candidate string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(candidate, suffix) {
			return true
		}
	}
	return false
}
