package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/odvcencio/gotag/pkg/object"
)

var ErrRefCASMismatch = errors.New("ref compare-and-swap mismatch")

const (
	refLockRetryDelay = 5 * time.Millisecond
	refLockWaitLimit  = 2 * time.Second
)

// ResolveRef resolves a ref name to an object hash.
//
// Resolution order:
//  1. "HEAD" follows a symbolic HEAD to its target ref.
//  2. Names starting with "refs/" are read from .got/<name>.
//  3. Otherwise "refs/heads/<name>" is tried.
func (r *Repo) ResolveRef(name string) (object.Hash, error) {
	if name == "HEAD" {
		head, err := r.Head()
		if err != nil {
			return "", err
		}
		if strings.HasPrefix(head, "refs/") {
			return r.ResolveRef(head)
		}
		return object.Hash(head), nil
	}

	refName := name
	if !strings.HasPrefix(name, "refs/") {
		refName = "refs/heads/" + name
	}
	h, err := readRefHash(filepath.Join(r.GotDir, filepath.FromSlash(refName)))
	if err != nil {
		return "", fmt.Errorf("resolve ref %q: %w", name, err)
	}
	if h == "" {
		return "", fmt.Errorf("resolve ref %q: %w", name, os.ErrNotExist)
	}
	return h, nil
}

// UpdateRef writes a hash to the named ref file under .got/.
func (r *Repo) UpdateRef(name string, h object.Hash) error {
	return r.updateRef(name, h, "update", nil)
}

// UpdateRefCAS writes a hash to the named ref only if the ref currently
// holds expectedOld. An empty expectedOld means the ref must not exist yet.
func (r *Repo) UpdateRefCAS(name string, h, expectedOld object.Hash) error {
	return r.updateRef(name, h, "update", &expectedOld)
}

// updateRef writes a ref using lockfile + rename. The reflog entry is
// appended after the rename; a reflog failure leaves the ref updated.
func (r *Repo) updateRef(name string, h object.Hash, reason string, expectedOld *object.Hash) error {
	refPath := filepath.Join(r.GotDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(refPath), 0o755); err != nil {
		return fmt.Errorf("update ref %q: mkdir: %w", name, err)
	}

	lockPath := refPath + ".lock"
	lockFile, err := acquireRefLock(lockPath)
	if err != nil {
		return fmt.Errorf("update ref %q: lock: %w", name, err)
	}
	committed := false
	defer func() {
		if lockFile != nil {
			_ = lockFile.Close()
		}
		if !committed {
			_ = os.Remove(lockPath)
		}
	}()

	oldHash, err := readRefHash(refPath)
	if err != nil {
		return fmt.Errorf("update ref %q: read old hash: %w", name, err)
	}
	if expectedOld != nil && oldHash != *expectedOld {
		return fmt.Errorf("update ref %q: %w (expected %q, found %q)", name, ErrRefCASMismatch, *expectedOld, oldHash)
	}

	if _, err := lockFile.WriteString(string(h) + "\n"); err != nil {
		return fmt.Errorf("update ref %q: write: %w", name, err)
	}
	if err := lockFile.Sync(); err != nil {
		return fmt.Errorf("update ref %q: sync: %w", name, err)
	}
	closeErr := lockFile.Close()
	lockFile = nil
	if closeErr != nil {
		return fmt.Errorf("update ref %q: close: %w", name, closeErr)
	}

	if err := os.Rename(lockPath, refPath); err != nil {
		return fmt.Errorf("update ref %q: rename: %w", name, err)
	}
	committed = true

	if err := r.appendReflog(name, oldHash, h, reason); err != nil {
		return fmt.Errorf("update ref %q: ref updated but reflog append failed: %w", name, err)
	}
	return nil
}

func acquireRefLock(lockPath string) (*os.File, error) {
	deadline := time.Now().Add(refLockWaitLimit)
	for {
		f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, nil
		}
		if !os.IsExist(err) {
			return nil, err
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("timeout waiting for lock %q", lockPath)
		}
		time.Sleep(refLockRetryDelay)
	}
}

func readRefHash(refPath string) (object.Hash, error) {
	data, err := os.ReadFile(refPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return object.Hash(strings.TrimSpace(string(data))), nil
}

// ListRefs lists references under .got/refs.
// Names are returned relative to refs root, e.g. "heads/main", "tags/v1".
// In-flight lock files are skipped.
func (r *Repo) ListRefs(prefix string) (map[string]object.Hash, error) {
	root := filepath.Join(r.GotDir, "refs")
	dir := root
	if strings.TrimSpace(prefix) != "" {
		dir = filepath.Join(root, filepath.FromSlash(prefix))
	}

	refs := make(map[string]object.Hash)
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || strings.HasSuffix(d.Name(), ".lock") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		h, err := readRefHash(path)
		if err != nil {
			return err
		}
		refs[filepath.ToSlash(rel)] = h
		return nil
	})
	if os.IsNotExist(err) {
		return refs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	return refs, nil
}
