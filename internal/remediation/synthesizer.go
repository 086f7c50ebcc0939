package remediation

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/temirov/roleaudit/internal/suggestion"
)

// Engine selects the draft synthesizer.
type Engine string

// Supported synthesis engines.
const (
	EngineTemplate  Engine = "template"
	EngineAnthropic Engine = "anthropic"
)

const (
	draftHeaderTemplate              = "# Improvement for: %s\n\n"
	templatesPatternConstant         = "templates/*.md.tmpl"
	templateLeftDelimiterConstant    = "[["
	templateRightDelimiterConstant   = "]]"
	readmeTemplateNameConstant       = "readme_skeleton.md.tmpl"
	externalizeTemplateNameConstant  = "externalize_value.md.tmpl"
	roleSkeletonTemplateNameConstant = "role_skeleton.md.tmpl"
	manualTemplateNameConstant       = "manual.md.tmpl"
	rolesPathSegmentConstant         = "roles"
	defaultVariablePrefixConstant    = "service"
	unsupportedEngineErrorTemplate   = "unsupported synthesis engine %q (expected one of: %s)"
	unknownKindErrorTemplate         = "suggestion %d has unknown remediation kind %q"
	renderDraftErrorTemplate         = "unable to render draft for suggestion %d: %w"
)

//go:embed templates/*.md.tmpl
var draftTemplateFiles embed.FS

var draftTemplates = template.Must(
	template.New("drafts").
		Delims(templateLeftDelimiterConstant, templateRightDelimiterConstant).
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(draftTemplateFiles, templatesPatternConstant),
)

// Engines lists the supported engine names.
func Engines() []string {
	return []string{string(EngineTemplate), string(EngineAnthropic)}
}

// ParseEngine converts a raw engine name into an Engine.
func ParseEngine(rawValue string) (Engine, error) {
	normalized := Engine(strings.ToLower(strings.TrimSpace(rawValue)))
	switch normalized {
	case EngineTemplate, EngineAnthropic:
		return normalized, nil
	default:
		return "", fmt.Errorf(unsupportedEngineErrorTemplate, rawValue, strings.Join(Engines(), ", "))
	}
}

// Synthesizer produces the draft for a suggestion from its prompt.
type Synthesizer interface {
	Synthesize(executionContext context.Context, item suggestion.Suggestion, prompt string) (string, error)
}

// TemplateSynthesizer renders deterministic drafts from embedded templates.
type TemplateSynthesizer struct {
	repositoryRoot string
	projectName    string
}

// NewTemplateSynthesizer constructs a TemplateSynthesizer. An empty project
// name defaults to the base name of the repository root.
func NewTemplateSynthesizer(repositoryRoot string, projectName string) TemplateSynthesizer {
	if len(strings.TrimSpace(projectName)) == 0 {
		projectName = filepath.Base(filepath.Clean(repositoryRoot))
	}
	return TemplateSynthesizer{repositoryRoot: repositoryRoot, projectName: projectName}
}

type draftData struct {
	Title          string
	Category       suggestion.Category
	RoleName       string
	ProjectName    string
	VariablePrefix string
	Subjects       []string
	remediation    suggestion.Remediation
}

// Has reports whether the remediation names the subject.
func (data draftData) Has(subject string) bool {
	return data.remediation.HasSubject(subject)
}

// Synthesize renders the draft selected by the suggestion's remediation kind.
func (synthesizer TemplateSynthesizer) Synthesize(_ context.Context, item suggestion.Suggestion, _ string) (string, error) {
	var templateName string
	switch item.Remediation.Kind {
	case suggestion.RemediationKindReadmeSkeleton:
		templateName = readmeTemplateNameConstant
	case suggestion.RemediationKindExternalizeValue:
		templateName = externalizeTemplateNameConstant
	case suggestion.RemediationKindRoleSkeleton:
		templateName = roleSkeletonTemplateNameConstant
	case suggestion.RemediationKindManual:
		templateName = manualTemplateNameConstant
	default:
		return "", fmt.Errorf(unknownKindErrorTemplate, item.ID, item.Remediation.Kind)
	}

	roleName := roleNameFromPaths(synthesizer.repositoryRoot, item.FilePaths)
	variablePrefix := defaultVariablePrefixConstant
	if len(roleName) > 0 {
		variablePrefix = strings.ReplaceAll(roleName, "-", "_")
	}

	var rendered bytes.Buffer
	fmt.Fprintf(&rendered, draftHeaderTemplate, item.Title)
	executeError := draftTemplates.ExecuteTemplate(&rendered, templateName, draftData{
		Title:          item.Title,
		Category:       item.Category,
		RoleName:       roleName,
		ProjectName:    synthesizer.projectName,
		VariablePrefix: variablePrefix,
		Subjects:       item.Remediation.Subjects,
		remediation:    item.Remediation,
	})
	if executeError != nil {
		return "", fmt.Errorf(renderDraftErrorTemplate, item.ID, executeError)
	}
	return rendered.String(), nil
}

// roleNameFromPaths returns the directory name following the first roles
// segment of the first file path, resolved against the repository root.
func roleNameFromPaths(repositoryRoot string, filePaths []string) string {
	if len(filePaths) == 0 {
		return ""
	}
	candidatePath := filePaths[0]
	if len(repositoryRoot) > 0 {
		if relativePath, relativeError := filepath.Rel(repositoryRoot, candidatePath); relativeError == nil && !strings.HasPrefix(relativePath, "..") {
			candidatePath = relativePath
		}
	}
	segments := strings.Split(filepath.ToSlash(candidatePath), "/")
	for segmentIndex := 0; segmentIndex+1 < len(segments); segmentIndex++ {
		if segments[segmentIndex] == rolesPathSegmentConstant && len(segments[segmentIndex+1]) > 0 {
			return segments[segmentIndex+1]
		}
	}
	return ""
}
