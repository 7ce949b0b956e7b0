// Package repo implements an on-disk got repository: object store, refs,
// tags, configuration and the submodule manifest.
package repo

import (
	"github.com/odvcencio/gotag/pkg/object"
)

// Repo represents an opened got repository.
type Repo struct {
	RootDir string        // working directory root
	GotDir  string        // .got/ directory
	Store   *object.Store // content-addressed object store
}

func newRepo(root, gotDir string) *Repo {
	return &Repo{
		RootDir: root,
		GotDir:  gotDir,
		Store:   object.NewStore(gotDir),
	}
}
