package release

import "context"

// Handle is the view of one repository the release operation needs.
type Handle interface {
	// Name identifies the repository in reports and errors. Names must be
	// unique within a tree.
	Name() string
	TagPrefix() string
	LocalTags() ([]string, error)
	// CreateTag tags the repository's current commit. It must fail if the
	// tag already exists.
	CreateTag(name string) error
	// Submodules returns the direct submodules in declaration order.
	Submodules() ([]Handle, error)
}

// RemoteTagLister is implemented by handles that can list the tags of
// their upstream remote.
type RemoteTagLister interface {
	RemoteTags(ctx context.Context) ([]string, error)
}

// TagNameChecker is implemented by handles that can validate a tag name
// without creating it.
type TagNameChecker interface {
	CheckTagName(name string) error
}
