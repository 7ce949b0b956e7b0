package repo

import (
	"fmt"
	"strings"
	"time"

	"github.com/odvcencio/gotag/pkg/object"
)

// Commit snapshots the working tree and records it as a new commit on the
// current branch. Submodules are recorded at their current HEAD.
func (r *Repo) Commit(message, author string) (object.Hash, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("commit: message is required")
	}

	treeHash, err := r.SnapshotTree()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	var parents []object.Hash
	parentHash, err := r.ResolveRef("HEAD")
	if err == nil {
		parents = append(parents, parentHash)
	}

	commitHash, err := r.Store.WriteCommit(&object.CommitObj{
		TreeHash:  treeHash,
		Parents:   parents,
		Author:    author,
		Timestamp: time.Now().Unix(),
		Message:   message,
	})
	if err != nil {
		return "", fmt.Errorf("commit: write commit: %w", err)
	}

	head, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("commit: read HEAD: %w", err)
	}
	target := "HEAD"
	if strings.HasPrefix(head, "refs/") {
		target = head
	}
	if err := r.updateRef(target, commitHash, "commit", &parentHash); err != nil {
		return "", fmt.Errorf("commit: update %s: %w", target, err)
	}
	return commitHash, nil
}

// Log walks first-parent history from start, newest first, returning at
// most limit commits (limit <= 0 means no limit).
func (r *Repo) Log(start object.Hash, limit int) ([]*object.CommitObj, error) {
	var out []*object.CommitObj
	cur := start
	for cur != "" {
		if limit > 0 && len(out) >= limit {
			break
		}
		c, err := r.Store.ReadCommit(cur)
		if err != nil {
			return nil, fmt.Errorf("log: %w", err)
		}
		out = append(out, c)
		if len(c.Parents) == 0 {
			break
		}
		cur = c.Parents[0]
	}
	return out, nil
}
