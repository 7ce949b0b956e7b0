package repo

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/odvcencio/gotag/pkg/object"
)

// IgnoreFile lists glob patterns excluded from snapshots, one per line.
const IgnoreFile = ".gotignore"

type snapshotter struct {
	r          *Repo
	submodules map[string]Submodule
	ignore     []string
}

// SnapshotTree writes the working tree into the object store and returns
// the root tree hash. Declared submodules become gitlink entries pinned at
// the submodule HEAD; a submodule without commits is an error.
func (r *Repo) SnapshotTree() (object.Hash, error) {
	subs, err := r.Submodules()
	if err != nil {
		return "", err
	}
	ignore, err := readIgnorePatterns(filepath.Join(r.RootDir, IgnoreFile))
	if err != nil {
		return "", err
	}
	s := &snapshotter{r: r, submodules: make(map[string]Submodule, len(subs)), ignore: ignore}
	for _, sm := range subs {
		s.submodules[sm.Path] = sm
	}
	return s.writeDir("")
}

func (s *snapshotter) writeDir(rel string) (object.Hash, error) {
	entries, err := os.ReadDir(filepath.Join(s.r.RootDir, filepath.FromSlash(rel)))
	if err != nil {
		return "", fmt.Errorf("snapshot %q: %w", rel, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	tree := &object.TreeObj{}
	for _, de := range entries {
		name := de.Name()
		if name == gotDirName {
			continue
		}
		childRel := path.Join(rel, name)
		if s.ignored(childRel) {
			continue
		}

		if sm, ok := s.submodules[childRel]; ok {
			sub, err := s.r.OpenSubmodule(sm)
			if err != nil {
				return "", err
			}
			head, err := sub.ResolveRef("HEAD")
			if err != nil {
				return "", fmt.Errorf("snapshot: submodule %q has no commits: %w", sm.Name, err)
			}
			tree.Entries = append(tree.Entries, object.TreeEntry{Name: name, Mode: object.TreeModeSubmodule, CommitHash: head})
			continue
		}

		info, err := de.Info()
		if err != nil {
			return "", fmt.Errorf("snapshot %q: %w", childRel, err)
		}
		switch {
		case info.IsDir():
			h, err := s.writeDir(childRel)
			if err != nil {
				return "", err
			}
			tree.Entries = append(tree.Entries, object.TreeEntry{Name: name, Mode: object.TreeModeDir, SubtreeHash: h})
		case info.Mode().IsRegular():
			data, err := os.ReadFile(filepath.Join(s.r.RootDir, filepath.FromSlash(childRel)))
			if err != nil {
				return "", fmt.Errorf("snapshot %q: %w", childRel, err)
			}
			h, err := s.r.Store.WriteBlob(&object.Blob{Data: data})
			if err != nil {
				return "", err
			}
			tree.Entries = append(tree.Entries, object.TreeEntry{Name: name, Mode: modeFromFileInfo(info), BlobHash: h})
		}
	}
	return s.r.Store.WriteTree(tree)
}

func (s *snapshotter) ignored(rel string) bool {
	base := path.Base(rel)
	for _, pat := range s.ignore {
		target := base
		if strings.Contains(pat, "/") {
			target = rel
		}
		if ok, _ := path.Match(strings.TrimPrefix(pat, "/"), target); ok {
			return true
		}
	}
	return false
}

func readIgnorePatterns(p string) ([]string, error) {
	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", IgnoreFile, err)
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, strings.TrimSuffix(line, "/"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", IgnoreFile, err)
	}
	return out, nil
}
