// Package releasetest provides an in-memory release.Handle for tests.
package releasetest

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/odvcencio/gotag/pkg/release"
)

// Journal records calls across every Repo sharing it, in call order.
type Journal struct {
	mu     sync.Mutex
	events []string
}

func (j *Journal) add(event string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, event)
}

// Events returns entries of the form "list <repo>", "remote <repo>",
// "check <repo> <tag>" and "create <repo> <tag>".
func (j *Journal) Events() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return slices.Clone(j.events)
}

// Repo is a fake repository. Its exported fields may be changed between
// calls to simulate concurrent activity.
type Repo struct {
	RepoName string
	Prefix   string
	Tags     []string
	Remote   []string
	Children []*Repo

	// FailList, FailRemote and FailSubmodules are returned by the
	// corresponding queries when set.
	FailList       error
	FailRemote     error
	FailSubmodules error
	// FailCreate is returned by CreateTag instead of creating the tag.
	FailCreate error
	// RejectName is consulted by CheckTagName and CreateTag.
	RejectName func(name string) error

	// CreateCalls counts CreateTag invocations, successful or not.
	CreateCalls int
	// Queried counts LocalTags invocations.
	Queried int

	journal *Journal
}

// New returns a fake repository with the given tag prefix and children.
func New(name, prefix string, children ...*Repo) *Repo {
	return &Repo{RepoName: name, Prefix: prefix, Children: children}
}

// WithJournal attaches j to r and all of its descendants.
func (r *Repo) WithJournal(j *Journal) *Repo {
	r.journal = j
	for _, c := range r.Children {
		c.WithJournal(j)
	}
	return r
}

// Walk visits r and its descendants in depth-first preorder.
func (r *Repo) Walk(fn func(*Repo)) {
	fn(r)
	for _, c := range r.Children {
		c.Walk(fn)
	}
}

// TotalCreateCalls sums CreateCalls over r and its descendants.
func (r *Repo) TotalCreateCalls() int {
	n := 0
	r.Walk(func(x *Repo) { n += x.CreateCalls })
	return n
}

func (r *Repo) record(format string, args ...any) {
	if r.journal != nil {
		r.journal.add(fmt.Sprintf(format, args...))
	}
}

func (r *Repo) Name() string      { return r.RepoName }
func (r *Repo) TagPrefix() string { return r.Prefix }

func (r *Repo) LocalTags() ([]string, error) {
	r.Queried++
	r.record("list %s", r.RepoName)
	if r.FailList != nil {
		return nil, r.FailList
	}
	return slices.Clone(r.Tags), nil
}

func (r *Repo) RemoteTags(ctx context.Context) ([]string, error) {
	r.record("remote %s", r.RepoName)
	if r.FailRemote != nil {
		return nil, r.FailRemote
	}
	return slices.Clone(r.Remote), nil
}

func (r *Repo) CheckTagName(name string) error {
	r.record("check %s %s", r.RepoName, name)
	if r.RejectName != nil {
		return r.RejectName(name)
	}
	return nil
}

func (r *Repo) CreateTag(name string) error {
	r.CreateCalls++
	r.record("create %s %s", r.RepoName, name)
	if r.FailCreate != nil {
		return r.FailCreate
	}
	if r.RejectName != nil {
		if err := r.RejectName(name); err != nil {
			return err
		}
	}
	if slices.Contains(r.Tags, name) {
		return &release.TagExistsError{Repo: r.RepoName, Tag: release.TagName(name)}
	}
	r.Tags = append(r.Tags, name)
	return nil
}

func (r *Repo) Submodules() ([]release.Handle, error) {
	if r.FailSubmodules != nil {
		return nil, r.FailSubmodules
	}
	out := make([]release.Handle, len(r.Children))
	for i, c := range r.Children {
		out[i] = c
	}
	return out, nil
}

// HasTag reports whether r holds tag locally.
func (r *Repo) HasTag(tag string) bool { return slices.Contains(r.Tags, tag) }

var (
	_ release.Handle          = (*Repo)(nil)
	_ release.RemoteTagLister = (*Repo)(nil)
	_ release.TagNameChecker  = (*Repo)(nil)
)
