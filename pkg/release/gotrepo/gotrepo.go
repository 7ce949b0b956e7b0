// Package gotrepo adapts on-disk got repositories to release.Handle.
package gotrepo

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/odvcencio/gotag/pkg/release"
	"github.com/odvcencio/gotag/pkg/remote"
	"github.com/odvcencio/gotag/pkg/repo"
)

// DefaultMessage is the annotated tag message used when release.message
// is unset. "{tag}" is replaced with the tag name.
const DefaultMessage = "Release {tag}"

// Options apply to a repository and every submodule opened from it.
type Options struct {
	// Tagger is used for annotated tags of repositories that do not set
	// release.tagger.
	Tagger string
	// Signer signs annotated tags. A signer forces annotated tags.
	Signer repo.TagSigner
	// NewSigner builds a signer from a repository's release.signing_key.
	// Repositories setting the key without NewSigner fail to open.
	NewSigner func(keyPath string) (repo.TagSigner, error)
	// Client configures remote tag listing.
	Client remote.ClientOptions
	Logger *zap.Logger
}

// Handle is a got repository seen through release.Handle.
type Handle struct {
	repo   *repo.Repo
	name   string
	cfg    *repo.Config
	signer repo.TagSigner
	opts   Options
}

// Open opens the repository containing dir. The top repository is named ".".
func Open(dir string, opts Options) (*Handle, error) {
	r, err := repo.Open(dir)
	if err != nil {
		return nil, err
	}
	return New(r, ".", opts)
}

// New wraps r under name, reading its release configuration.
func New(r *repo.Repo, name string, opts Options) (*Handle, error) {
	cfg, err := r.ReadConfig()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	h := &Handle{repo: r, name: name, cfg: cfg, signer: opts.Signer, opts: opts}
	if key := strings.TrimSpace(cfg.Release.SigningKey); key != "" {
		if opts.NewSigner == nil {
			return nil, fmt.Errorf("%s: release.signing_key is set but signing is not available", name)
		}
		signer, err := opts.NewSigner(key)
		if err != nil {
			return nil, fmt.Errorf("%s: load signing key: %w", name, err)
		}
		h.signer = signer
	}
	return h, nil
}

func (h *Handle) Repo() *repo.Repo     { return h.repo }
func (h *Handle) Config() *repo.Config { return h.cfg }
func (h *Handle) Name() string         { return h.name }
func (h *Handle) TagPrefix() string    { return h.cfg.Release.Prefix() }

// Annotated reports whether CreateTag writes annotated tag objects.
func (h *Handle) Annotated() bool { return h.cfg.Release.Annotate || h.signer != nil }

func (h *Handle) LocalTags() ([]string, error) {
	return h.repo.ListTags()
}

// RemoteTags lists tags on the remote named by release.remote. Without
// that setting the repository has no remote to check and nil is returned.
func (h *Handle) RemoteTags(ctx context.Context) ([]string, error) {
	name := strings.TrimSpace(h.cfg.Release.Remote)
	if name == "" {
		h.opts.Logger.Debug("no release remote configured", zap.String("repo", h.name))
		return nil, nil
	}
	url, ok := h.cfg.Remotes[name]
	if !ok || strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("release.remote %q is not a configured remote", name)
	}
	client, err := remote.NewClientWithOptions(url, h.opts.Client)
	if err != nil {
		return nil, err
	}
	tags, err := client.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("remote %s: %w", name, err)
	}
	h.opts.Logger.Debug("listed remote tags",
		zap.String("repo", h.name), zap.String("remote", name), zap.Int("tags", len(tags)))
	return tags, nil
}

func (h *Handle) CheckTagName(name string) error {
	return h.translate(name, repo.ValidateTagName(name))
}

// CreateTag tags HEAD. It never overwrites an existing tag.
func (h *Handle) CreateTag(name string) error {
	head, err := h.repo.ResolveRef("HEAD")
	if err != nil {
		return fmt.Errorf("resolve HEAD of %s: %w", h.name, err)
	}
	if h.Annotated() {
		_, err = h.repo.CreateAnnotatedTag(name, head, repo.AnnotatedTagOptions{
			Tagger:  h.tagger(),
			Message: h.message(name),
			Signer:  h.signer,
		})
	} else {
		err = h.repo.CreateTag(name, head, false)
	}
	return h.translate(name, err)
}

func (h *Handle) tagger() string {
	if t := strings.TrimSpace(h.cfg.Release.Tagger); t != "" {
		return t
	}
	return h.opts.Tagger
}

func (h *Handle) message(tag string) string {
	tmpl := h.cfg.Release.Message
	if strings.TrimSpace(tmpl) == "" {
		tmpl = DefaultMessage
	}
	return strings.ReplaceAll(tmpl, "{tag}", tag)
}

// translate maps repository errors onto the release error taxonomy.
func (h *Handle) translate(name string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrInvalidTagName):
		return &release.InvalidTagNameError{Repo: h.name, Name: release.TagName(name), Reason: err.Error(), Err: err}
	case errors.Is(err, repo.ErrTagExists):
		return &release.TagExistsError{Repo: h.name, Tag: release.TagName(name)}
	}
	return err
}

// Submodules opens the repositories declared in the manifest. A
// submodule's name is its path joined onto the parent's name.
func (h *Handle) Submodules() ([]release.Handle, error) {
	subs, err := h.repo.Submodules()
	if err != nil {
		return nil, err
	}
	out := make([]release.Handle, 0, len(subs))
	for _, sm := range subs {
		r, err := h.repo.OpenSubmodule(sm)
		if err != nil {
			return nil, err
		}
		child, err := New(r, childName(h.name, sm.Path), h.opts)
		if err != nil {
			return nil, err
		}
		out = append(out, child)
	}
	return out, nil
}

func childName(parent, p string) string {
	if parent == "." || parent == "" {
		return p
	}
	return path.Join(parent, p)
}

var (
	_ release.Handle          = (*Handle)(nil)
	_ release.RemoteTagLister = (*Handle)(nil)
	_ release.TagNameChecker  = (*Handle)(nil)
)
