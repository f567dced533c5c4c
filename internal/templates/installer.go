package templates

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

// manifestName records the hash of every file as last written by Mirror, so
// files the user never edited can be updated when the bundle changes.
const manifestName = ".manifest.yaml"

// Installer mirrors bundled files into a workspace directory.
type Installer struct {
	targetDir string // .specflow/templates/
	files     fs.FS
}

// MirrorOptions controls how existing files are treated.
type MirrorOptions struct {
	// Force overwrites locally modified files.
	Force bool
}

// Result lists what a mirror pass did, by slash-separated relative path.
type Result struct {
	Written   []string
	Updated   []string // unmodified copies of an older bundle
	Skipped   []string // already identical
	Conflicts []string // locally modified, left untouched
}

// NewInstaller creates an installer targeting the given directory.
func NewInstaller(targetDir string) *Installer {
	return &Installer{targetDir: targetDir, files: Bundled()}
}

// SetFS replaces the bundled files (useful for testing).
func (i *Installer) SetFS(files fs.FS) {
	i.files = files
}

// TargetDir returns the directory files are mirrored into.
func (i *Installer) TargetDir() string {
	return i.targetDir
}

// Mirror copies every bundled file into the target directory.
func (i *Installer) Mirror(opts MirrorOptions) (*Result, error) {
	if err := os.MkdirAll(i.targetDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create templates directory: %w", err)
	}

	names, err := i.bundledFiles()
	if err != nil {
		return nil, err
	}

	manifest, err := i.loadManifest()
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, name := range names {
		want, err := fs.ReadFile(i.files, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read bundled %s: %w", name, err)
		}

		targetPath := filepath.Join(i.targetDir, filepath.FromSlash(name))
		have, err := os.ReadFile(targetPath)
		updated := false
		switch {
		case err == nil && bytes.Equal(have, want):
			manifest[name] = hash(want)
			result.Skipped = append(result.Skipped, name)
			continue
		case err == nil && manifest[name] == hash(have):
			updated = true
		case err == nil && !opts.Force:
			result.Conflicts = append(result.Conflicts, name)
			continue
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("failed to read %s: %w", targetPath, err)
		}

		if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create parent directory for %s: %w", targetPath, err)
		}
		if err := os.WriteFile(targetPath, want, 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", targetPath, err)
		}
		manifest[name] = hash(want)
		if updated {
			result.Updated = append(result.Updated, name)
		} else {
			result.Written = append(result.Written, name)
		}
	}

	if err := i.saveManifest(manifest); err != nil {
		return nil, err
	}
	return result, nil
}

// loadManifest returns an empty manifest when none was written yet.
func (i *Installer) loadManifest() (map[string]string, error) {
	manifest := map[string]string{}
	data, err := os.ReadFile(filepath.Join(i.targetDir, manifestName))
	if errors.Is(err, fs.ErrNotExist) {
		return manifest, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read template manifest: %w", err)
	}
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse template manifest: %w", err)
	}
	if manifest == nil {
		manifest = map[string]string{}
	}
	return manifest, nil
}

func (i *Installer) saveManifest(manifest map[string]string) error {
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to encode template manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(i.targetDir, manifestName), data, 0644); err != nil {
		return fmt.Errorf("failed to write template manifest: %w", err)
	}
	return nil
}

func hash(data []byte) string {
	sum := blake3.Sum256(data)
	return fmt.Sprintf("%x", sum[:])
}

// IsInstalled reports whether every bundled file exists in the target directory.
func (i *Installer) IsInstalled() bool {
	names, err := i.bundledFiles()
	if err != nil {
		return false
	}
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(i.targetDir, filepath.FromSlash(name))); err != nil {
			return false
		}
	}
	return true
}

// Uninstall removes the mirrored files and any directories left empty.
// Files not shipped in the bundle are kept.
func (i *Installer) Uninstall() error {
	names, err := i.bundledFiles()
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(i.targetDir, manifestName)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove template manifest: %w", err)
	}

	dirs := map[string]bool{}
	for _, name := range names {
		targetPath := filepath.Join(i.targetDir, filepath.FromSlash(name))
		if err := os.Remove(targetPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", name, err)
		}
		for d := filepath.Dir(targetPath); d != filepath.Clean(i.targetDir) && d != "."; d = filepath.Dir(d) {
			dirs[d] = true
		}
	}

	// Deepest directories first; os.Remove fails harmlessly on non-empty ones
	ordered := make([]string, 0, len(dirs)+1)
	for d := range dirs {
		ordered = append(ordered, d)
	}
	sort.Slice(ordered, func(a, b int) bool { return len(ordered[a]) > len(ordered[b]) })
	ordered = append(ordered, i.targetDir)
	for _, d := range ordered {
		os.Remove(d)
	}
	return nil
}

// bundledFiles lists regular files in the bundle, sorted. Paths that would
// escape the target directory are rejected.
func (i *Installer) bundledFiles() ([]string, error) {
	var names []string
	err := fs.WalkDir(i.files, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !filepath.IsLocal(filepath.FromSlash(name)) {
			return fmt.Errorf("refusing to install %q outside the templates directory", name)
		}
		names = append(names, name)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list bundled files: %w", err)
	}
	sort.Strings(names)
	return names, nil
}
