package repo

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ModulesFile is the submodule manifest at the repository root.
const ModulesFile = ".gotmodules"

// Submodule is one nested repository declared in the manifest.
type Submodule struct {
	Name string `toml:"name"`
	Path string `toml:"path"` // slash-separated, relative to the parent root
	URL  string `toml:"url,omitempty"`
}

type modulesManifest struct {
	Submodules []Submodule `toml:"submodule"`
}

// Submodules returns the manifest entries in declaration order. A missing
// manifest means no submodules.
func (r *Repo) Submodules() ([]Submodule, error) {
	data, err := os.ReadFile(filepath.Join(r.RootDir, ModulesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read submodules: %w", err)
	}
	var m modulesManifest
	if _, err := toml.Decode(string(data), &m); err != nil {
		return nil, fmt.Errorf("read submodules: decode %s: %w", ModulesFile, err)
	}
	seen := make(map[string]bool, len(m.Submodules))
	for _, sm := range m.Submodules {
		if err := validateSubmodulePath(sm.Path); err != nil {
			return nil, fmt.Errorf("read submodules: %q: %w", sm.Name, err)
		}
		if seen[sm.Path] {
			return nil, fmt.Errorf("read submodules: duplicate path %q", sm.Path)
		}
		seen[sm.Path] = true
	}
	return m.Submodules, nil
}

// AddSubmodule records an existing nested repository at relPath in the
// manifest. The nested repository must already be initialized.
func (r *Repo) AddSubmodule(name, relPath, url string) error {
	relPath = path.Clean(filepath.ToSlash(strings.TrimSpace(relPath)))
	if err := validateSubmodulePath(relPath); err != nil {
		return fmt.Errorf("add submodule: %w", err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = path.Base(relPath)
	}
	if _, err := OpenAt(filepath.Join(r.RootDir, filepath.FromSlash(relPath))); err != nil {
		return fmt.Errorf("add submodule: %w", err)
	}

	existing, err := r.Submodules()
	if err != nil {
		return err
	}
	for _, sm := range existing {
		if sm.Name == name || sm.Path == relPath {
			return fmt.Errorf("add submodule: %q is already registered at %s", sm.Name, sm.Path)
		}
	}

	m := modulesManifest{Submodules: append(existing, Submodule{Name: name, Path: relPath, URL: strings.TrimSpace(url)})}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return fmt.Errorf("add submodule: encode: %w", err)
	}
	return writeFileAtomic(r.RootDir, filepath.Join(r.RootDir, ModulesFile), ".gotmodules-tmp-*", buf.Bytes())
}

// OpenSubmodule opens the nested repository of sm.
func (r *Repo) OpenSubmodule(sm Submodule) (*Repo, error) {
	sub, err := OpenAt(filepath.Join(r.RootDir, filepath.FromSlash(sm.Path)))
	if err != nil {
		return nil, fmt.Errorf("open submodule %q: %w", sm.Name, err)
	}
	return sub, nil
}

func validateSubmodulePath(p string) error {
	switch {
	case strings.TrimSpace(p) == "" || p == ".":
		return fmt.Errorf("submodule path is required")
	case path.IsAbs(p) || filepath.IsAbs(p):
		return fmt.Errorf("submodule path %q must be relative", p)
	case p != path.Clean(p):
		return fmt.Errorf("submodule path %q is not clean", p)
	case p == ".." || strings.HasPrefix(p, "../"):
		return fmt.Errorf("submodule path %q escapes the repository", p)
	case p == gotDirName || strings.HasPrefix(p, gotDirName+"/"):
		return fmt.Errorf("submodule path %q is inside %s", p, gotDirName)
	}
	return nil
}
