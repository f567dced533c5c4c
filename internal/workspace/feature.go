package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/pablasso/specflow/internal/tasks"
)

// Stage is one step of the spec workflow.
type Stage string

const (
	StageRequirements Stage = "requirements"
	StageDesign       Stage = "design"
	StageTasks        Stage = "tasks"
)

// Stages lists the workflow stages in order.
var Stages = []Stage{StageRequirements, StageDesign, StageTasks}

// FileName returns the document file name for the stage.
func (s Stage) FileName() string {
	return string(s) + ".md"
}

// Renderer produces the initial content of a stage document.
type Renderer interface {
	Render(stage Stage, feature string) (string, error)
}

// FeatureSummary describes a feature folder for listings.
type FeatureSummary struct {
	Name      string
	Stage     Stage // latest stage with a document, empty if none
	Total     int
	Completed int
}

// NormalizeName converts a feature name to kebab-case.
// Letters and digits are kept (lowercased), spaces, underscores and hyphens
// become single hyphens, everything else is dropped.
func NormalizeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case r == ' ' || r == '_' || r == '-':
			b.WriteRune('-')
		}
	}

	str := b.String()
	for strings.Contains(str, "--") {
		str = strings.ReplaceAll(str, "--", "-")
	}
	return strings.Trim(str, "-")
}

// ResolveFeatureName returns baseName if no feature folder uses it, otherwise
// the first free name of the form baseName-2, baseName-3, ...
func (w *Workspace) ResolveFeatureName(baseName string) (string, error) {
	existing, err := w.featureNames()
	if err != nil {
		return "", err
	}

	taken := make(map[string]bool, len(existing))
	for _, n := range existing {
		taken[n] = true
	}

	if !taken[baseName] {
		return baseName, nil
	}
	for suffix := 2; ; suffix++ {
		candidate := fmt.Sprintf("%s-%d", baseName, suffix)
		if !taken[candidate] {
			return candidate, nil
		}
	}
}

// CreateFeature creates a feature folder with one document per stage and
// returns the final (normalized, collision-free) feature name.
func (w *Workspace) CreateFeature(name string, renderer Renderer) (string, error) {
	base := NormalizeName(name)
	if base == "" {
		return "", fmt.Errorf("invalid feature name %q", name)
	}

	feature, err := w.ResolveFeatureName(base)
	if err != nil {
		return "", err
	}

	dir := w.FeatureDir(feature)
	if err := ensureDir(dir); err != nil {
		return "", err
	}

	for _, stage := range Stages {
		content, err := renderer.Render(stage, feature)
		if err != nil {
			os.RemoveAll(dir)
			return "", fmt.Errorf("failed to render %s: %w", stage.FileName(), err)
		}
		if err := os.WriteFile(filepath.Join(dir, stage.FileName()), []byte(content), 0644); err != nil {
			os.RemoveAll(dir)
			return "", fmt.Errorf("failed to write %s: %w", stage.FileName(), err)
		}
	}

	return feature, nil
}

// FindFeature resolves a user-supplied name to an existing feature. An exact
// match wins; otherwise a unique prefix match is accepted.
func (w *Workspace) FindFeature(name string) (string, error) {
	names, err := w.featureNames()
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no features found. Run 'specflow spec new <name>' first")
	}

	want := NormalizeName(name)
	var matches []string
	for _, n := range names {
		if n == want {
			return n, nil
		}
		if strings.HasPrefix(n, want) {
			matches = append(matches, n)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("feature not found: %s", name)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("multiple features match '%s': %v", name, matches)
	}
}

// ListFeatures returns a summary of every feature folder, sorted by name.
func (w *Workspace) ListFeatures() ([]FeatureSummary, error) {
	names, err := w.featureNames()
	if err != nil {
		return nil, err
	}

	summaries := make([]FeatureSummary, 0, len(names))
	for _, name := range names {
		summary := FeatureSummary{Name: name, Stage: w.CurrentStage(name)}
		if text, err := w.ReadDocument(name); err == nil {
			items := tasks.Parse(text)
			summary.Total = len(items)
			summary.Completed = tasks.CountCompleted(items)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// CurrentStage returns the latest stage whose document exists.
func (w *Workspace) CurrentStage(feature string) Stage {
	var current Stage
	for _, stage := range Stages {
		if _, err := os.Stat(filepath.Join(w.FeatureDir(feature), stage.FileName())); err == nil {
			current = stage
		}
	}
	return current
}

// featureNames returns the sorted names of feature folders.
func (w *Workspace) featureNames() ([]string, error) {
	entries, err := os.ReadDir(w.specsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read specs directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
