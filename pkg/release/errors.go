package release

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidVersion = errors.New("invalid version")
	ErrInvalidTagName = errors.New("invalid tag name")
	ErrTagExists      = errors.New("tag already exists")
	ErrTagCreation    = errors.New("tag creation failed")
	ErrDeclined       = errors.New("release declined")
)

// InvalidVersionError reports a version string rejected by ParseVersion.
type InvalidVersionError struct {
	Raw    string
	Reason string
}

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid version %q: %s", e.Raw, e.Reason)
}

func (e *InvalidVersionError) Is(target error) bool { return target == ErrInvalidVersion }

// InvalidTagNameError reports a tag name rejected either by ResolveTagName
// or by the repository. Repo is empty when no repository was involved.
type InvalidTagNameError struct {
	Repo   string
	Name   TagName
	Reason string
	Err    error
}

func (e *InvalidTagNameError) Error() string {
	msg := fmt.Sprintf("invalid tag name %q", string(e.Name))
	if e.Repo != "" {
		msg += " in " + e.Repo
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *InvalidTagNameError) Unwrap() error { return e.Err }

func (e *InvalidTagNameError) Is(target error) bool { return target == ErrInvalidTagName }

// TagExistsError reports a tag that is already present in a repository.
type TagExistsError struct {
	Repo   string
	Tag    TagName
	Remote bool
}

func (e *TagExistsError) Error() string {
	where := "local"
	if e.Remote {
		where = "remote"
	}
	return fmt.Sprintf("tag %q already exists in %s (%s)", string(e.Tag), e.Repo, where)
}

func (e *TagExistsError) Is(target error) bool { return target == ErrTagExists }

// TagCreationError reports a failure while tags were being written. Report
// records which repositories were tagged before the failure and which were
// not attempted.
type TagCreationError struct {
	Repo   string
	Tag    TagName
	Report *Report
	Err    error
}

func (e *TagCreationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "create tag %q in %s: %v", string(e.Tag), e.Repo, e.Err)
	if e.Report != nil {
		fmt.Fprintf(&b, " (tagged: %s; not attempted: %s)",
			joinRepos(e.Report.WithStatus(StatusCreated)),
			joinRepos(e.Report.WithStatus(StatusSkipped)))
	}
	return b.String()
}

func (e *TagCreationError) Unwrap() error { return e.Err }

func (e *TagCreationError) Is(target error) bool { return target == ErrTagCreation }

func joinRepos(results []Result) string {
	if len(results) == 0 {
		return "none"
	}
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Repo
	}
	return strings.Join(names, ", ")
}
