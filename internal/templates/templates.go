// Package templates bundles the stage templates and agent prompts shipped with
// specflow and mirrors them into a workspace.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"

	"github.com/pablasso/specflow/internal/workspace"
)

//go:embed bundled
var bundled embed.FS

const (
	stagesDir  = "stages"
	promptsDir = "prompts"
)

// Bundled returns the shipped files rooted at the bundle directory.
func Bundled() fs.FS {
	sub, err := fs.Sub(bundled, "bundled")
	if err != nil {
		panic(err)
	}
	return sub
}

// Data is passed to stage templates.
type Data struct {
	Feature string
	Title   string
}

// PromptData is passed to agent prompts.
type PromptData struct {
	Feature    string
	Title      string
	Dir        string // feature folder
	TaskNumber int    // 1-based, 0 when the prompt is not about one task
	Task       string
}

// Renderer renders stage documents and agent prompts. Templates mirrored into overrideDir take
// precedence over the bundled ones so users can customize them.
type Renderer struct {
	overrideDir string
	files       fs.FS
}

var _ workspace.Renderer = (*Renderer)(nil)

// NewRenderer creates a renderer. overrideDir may be empty.
func NewRenderer(overrideDir string) *Renderer {
	return &Renderer{overrideDir: overrideDir, files: Bundled()}
}

// Render fills the stage template for feature.
func (r *Renderer) Render(stage workspace.Stage, feature string) (string, error) {
	return r.execute(path.Join(stagesDir, stage.FileName()), Data{Feature: feature, Title: Title(feature)})
}

// Prompt fills the named agent prompt, e.g. "implement-task". Title defaults
// to the titled feature name.
func (r *Renderer) Prompt(name string, data PromptData) (string, error) {
	if data.Title == "" {
		data.Title = Title(data.Feature)
	}
	return r.execute(path.Join(promptsDir, name+".md"), data)
}

func (r *Renderer) execute(name string, data any) (string, error) {
	src, err := r.source(name)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(name).Option("missingkey=error").Parse(src)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return buf.String(), nil
}

func (r *Renderer) source(name string) (string, error) {
	if r.overrideDir != "" {
		data, err := os.ReadFile(filepath.Join(r.overrideDir, filepath.FromSlash(name)))
		if err == nil {
			return string(data), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to read template override %s: %w", name, err)
		}
	}

	data, err := fs.ReadFile(r.files, name)
	if err != nil {
		return "", fmt.Errorf("no template for %s: %w", name, err)
	}
	return string(data), nil
}

// Title turns a kebab-case feature name into words with leading capitals.
func Title(feature string) string {
	words := strings.FieldsFunc(feature, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
