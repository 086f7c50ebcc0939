package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/temirov/roleaudit/internal/repository"
	"github.com/temirov/roleaudit/internal/suggestion"
)

const (
	headingPatternTemplateConstant = `(?i)#+\s*%s`
	rootReadmeTitleConstant        = "Enhance main README.md with additional sections"
	rootReadmeDescriptionTemplate  = "The main README.md could be improved by adding these sections: %s."
	roleReadmeTitleTemplate        = "Enhance README.md for '%s' role"
	roleReadmeDescriptionTemplate  = "The README.md for '%s' role could be improved by adding these sections: %s."
)

type sectionMatcher struct {
	name    string
	pattern *regexp.Regexp
}

func compileSectionMatchers(sections []string) []sectionMatcher {
	matchers := make([]sectionMatcher, 0, len(sections))
	for _, section := range sections {
		matchers = append(matchers, sectionMatcher{
			name:    section,
			pattern: regexp.MustCompile(fmt.Sprintf(headingPatternTemplateConstant, regexp.QuoteMeta(section))),
		})
	}
	return matchers
}

func missingSections(content string, matchers []sectionMatcher) []string {
	var missing []string
	for _, matcher := range matchers {
		if !matcher.pattern.MatchString(content) {
			missing = append(missing, matcher.name)
		}
	}
	return missing
}

func documentationRule(rootSections []string, roleSections []string) Rule {
	rootMatchers := compileSectionMatchers(rootSections)
	roleMatchers := compileSectionMatchers(roleSections)

	return Rule{
		Name: RuleNameDocumentation,
		Evaluate: func(snapshot *repository.Snapshot) []suggestion.Finding {
			var findings []suggestion.Finding

			if content, readable := snapshot.ReadText(readmeFileNameConstant); readable {
				if missing := missingSections(content, rootMatchers); len(missing) > 0 {
					findings = append(findings, readmeSectionsFinding(
						rootReadmeTitleConstant,
						fmt.Sprintf(rootReadmeDescriptionTemplate, strings.Join(missing, listSeparatorConstant)),
						snapshot.Path(readmeFileNameConstant),
						missing,
					))
				}
			}

			for _, role := range snapshot.Roles() {
				readmePath := role.RelativePath + "/" + readmeFileNameConstant
				content, readable := snapshot.ReadText(readmePath)
				if !readable {
					continue
				}
				missing := missingSections(content, roleMatchers)
				if len(missing) == 0 {
					continue
				}
				findings = append(findings, readmeSectionsFinding(
					fmt.Sprintf(roleReadmeTitleTemplate, role.Name),
					fmt.Sprintf(roleReadmeDescriptionTemplate, role.Name, strings.Join(missing, listSeparatorConstant)),
					snapshot.Path(readmePath),
					missing,
				))
			}

			return findings
		},
	}
}

func readmeSectionsFinding(title string, description string, readmePath string, missing []string) suggestion.Finding {
	return suggestion.Finding{
		Category:    suggestion.CategoryDocumentation,
		Title:       title,
		Description: description,
		FilePaths:   []string{readmePath},
		Priority:    suggestion.PriorityMedium,
		Remediation: suggestion.Remediation{
			Kind:     suggestion.RemediationKindReadmeSkeleton,
			Subjects: missing,
		},
	}
}
