package rules

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/temirov/roleaudit/internal/repository"
	"github.com/temirov/roleaudit/internal/suggestion"
)

const (
	dependenciesDeclarationConstant     = "dependencies:"
	releaseHostConstant                 = "github.com"
	releaseDownloadSegmentConstant      = "/releases/download/"
	dependencyVersionKeyConstant        = "version"
	unpinnedDependenciesTitleTemplate   = "Pin dependency versions in '%s' role"
	unpinnedDependenciesDescription     = "The '%s' role has dependencies without version pinning. Consider specifying versions to ensure compatibility."
	releaseReferenceTitleTemplate       = "Check for newer versions in '%s'"
	releaseReferenceDescriptionTemplate = "Found GitHub release URL in '%s': %s. Check if newer versions are available."
)

var (
	urlPattern                   = regexp.MustCompile(`https?://[^\s"')]+`)
	pinnedVersionPattern         = regexp.MustCompile(`version:\s*["'][^"']`)
	maintenanceScannedExtensions = []string{".yml", ".yaml", ".md", ".j2"}
)

type roleMetadata struct {
	Dependencies []any `yaml:"dependencies"`
}

func maintenanceRule() Rule {
	return Rule{
		Name: RuleNameMaintenance,
		Evaluate: func(snapshot *repository.Snapshot) []suggestion.Finding {
			var findings []suggestion.Finding
			for _, role := range snapshot.Roles() {
				metaPath, found := metaDescriptorPath(snapshot, role)
				if !found {
					continue
				}
				content, readable := snapshot.ReadText(metaPath)
				if !readable || !hasUnpinnedDependencies(content) {
					continue
				}
				findings = append(findings, suggestion.Finding{
					Category:    suggestion.CategoryMaintenance,
					Title:       fmt.Sprintf(unpinnedDependenciesTitleTemplate, role.Name),
					Description: fmt.Sprintf(unpinnedDependenciesDescription, role.Name),
					FilePaths:   []string{snapshot.Path(metaPath)},
					Priority:    suggestion.PriorityMedium,
					Remediation: suggestion.Remediation{Kind: suggestion.RemediationKindManual},
				})
			}
			for _, role := range snapshot.Roles() {
				findings = append(findings, releaseReferenceFindings(snapshot, role)...)
			}
			return findings
		},
	}
}

// hasUnpinnedDependencies decodes the role metadata and reports whether any
// declared dependency lacks a version. Content that does not decode falls back
// to a textual check.
func hasUnpinnedDependencies(content string) bool {
	var metadata roleMetadata
	if decodeError := yaml.Unmarshal([]byte(content), &metadata); decodeError != nil {
		return strings.Contains(content, dependenciesDeclarationConstant) && !pinnedVersionPattern.MatchString(content)
	}
	for _, dependency := range metadata.Dependencies {
		dependencyFields, isMapping := dependency.(map[string]any)
		if !isMapping {
			return true
		}
		version, hasVersion := dependencyFields[dependencyVersionKeyConstant]
		if !hasVersion || version == nil || len(strings.TrimSpace(fmt.Sprint(version))) == 0 {
			return true
		}
	}
	return false
}

func releaseReferenceFindings(snapshot *repository.Snapshot, role repository.Role) []suggestion.Finding {
	var findings []suggestion.Finding
	for _, candidatePath := range snapshot.WalkFiles(role.RelativePath) {
		if !hasAnySuffix(candidatePath, maintenanceScannedExtensions) {
			continue
		}
		content, readable := snapshot.ReadText(candidatePath)
		if !readable {
			continue
		}
		reportablePath := snapshot.Path(candidatePath)
		relativePath := snapshot.RelativePath(reportablePath)
		for _, url := range urlPattern.FindAllString(content, -1) {
			if !strings.Contains(url, releaseHostConstant) || !strings.Contains(url, releaseDownloadSegmentConstant) {
				continue
			}
			findings = append(findings, suggestion.Finding{
				Category:    suggestion.CategoryMaintenance,
				Title:       fmt.Sprintf(releaseReferenceTitleTemplate, relativePath),
				Description: fmt.Sprintf(releaseReferenceDescriptionTemplate, relativePath, url),
				FilePaths:   []string{reportablePath},
				Priority:    suggestion.PriorityLow,
				Remediation: suggestion.Remediation{Kind: suggestion.RemediationKindManual},
			})
		}
	}
	return findings
}
