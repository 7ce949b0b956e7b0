package release

import (
	"context"
	"fmt"
)

type CheckOptions struct {
	// Remote also consults handles implementing RemoteTagLister.
	Remote bool
}

// EnsureAbsent fails with a *TagExistsError if tag is already present on h.
// Errors listing tags are returned wrapped and are not TagExistsErrors.
func EnsureAbsent(ctx context.Context, h Handle, tag TagName, opts CheckOptions) error {
	_, err := checkAbsent(ctx, h, tag, opts)
	return err
}

// checkAbsent is EnsureAbsent that also returns the local tags it read.
func checkAbsent(ctx context.Context, h Handle, tag TagName, opts CheckOptions) ([]string, error) {
	local, err := h.LocalTags()
	if err != nil {
		return nil, fmt.Errorf("list tags of %s: %w", h.Name(), err)
	}
	if containsTag(local, tag) {
		return local, &TagExistsError{Repo: h.Name(), Tag: tag}
	}
	if !opts.Remote {
		return local, nil
	}
	lister, ok := h.(RemoteTagLister)
	if !ok {
		return local, nil
	}
	remote, err := lister.RemoteTags(ctx)
	if err != nil {
		return local, fmt.Errorf("list remote tags of %s: %w", h.Name(), err)
	}
	if containsTag(remote, tag) {
		return local, &TagExistsError{Repo: h.Name(), Tag: tag, Remote: true}
	}
	return local, nil
}

func containsTag(tags []string, tag TagName) bool {
	for _, t := range tags {
		if t == string(tag) {
			return true
		}
	}
	return false
}
