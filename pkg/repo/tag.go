package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/odvcencio/gotag/pkg/object"
)

var (
	ErrInvalidTagName = errors.New("invalid tag name")
	ErrTagExists      = errors.New("tag already exists")
)

// TagSigner signs the canonical tag payload and returns the encoded
// signature persisted in TagObj.Signature.
type TagSigner func(payload []byte) (string, error)

// AnnotatedTagOptions configures CreateAnnotatedTag.
type AnnotatedTagOptions struct {
	Tagger  string
	Message string
	Signer  TagSigner
	Force   bool
}

// CreateTag creates or updates a lightweight tag ref under refs/tags/.
// Without force the ref is created with compare-and-swap against an absent
// ref, so a tag created concurrently by another process yields ErrTagExists.
func (r *Repo) CreateTag(name string, target object.Hash, force bool) error {
	if err := ValidateTagName(name); err != nil {
		return fmt.Errorf("create tag: %w", err)
	}
	if strings.TrimSpace(string(target)) == "" {
		return fmt.Errorf("create tag: target hash is required")
	}
	if err := r.writeTagRef(name, target, force); err != nil {
		return fmt.Errorf("create tag: %w", err)
	}
	return nil
}

// CreateAnnotatedTag stores a tag object pointing at target and creates the
// tag ref pointing at the tag object.
func (r *Repo) CreateAnnotatedTag(name string, target object.Hash, opts AnnotatedTagOptions) (object.Hash, error) {
	if err := ValidateTagName(name); err != nil {
		return "", fmt.Errorf("create annotated tag: %w", err)
	}
	message := strings.TrimSpace(opts.Message)
	if message == "" {
		return "", fmt.Errorf("create annotated tag: message is required")
	}
	tagger := strings.TrimSpace(opts.Tagger)
	if tagger == "" {
		tagger = "unknown"
	}

	targetType, _, err := r.Store.Read(target)
	if err != nil {
		return "", fmt.Errorf("create annotated tag: read target %s: %w", target, err)
	}
	if !opts.Force {
		if _, err := r.ResolveTag(name); err == nil {
			return "", fmt.Errorf("create annotated tag: %w: %q", ErrTagExists, name)
		}
	}

	now := time.Now()
	tag := &object.TagObj{
		TargetHash: target,
		TargetType: targetType,
		Name:       name,
		Tagger:     tagger,
		Timestamp:  now.Unix(),
		Timezone:   formatTimezoneOffset(now),
		Message:    message + "\n",
	}
	if opts.Signer != nil {
		sig, err := opts.Signer(object.MarshalTagPayload(tag))
		if err != nil {
			return "", fmt.Errorf("create annotated tag: sign: %w", err)
		}
		tag.Signature = sig
	}

	tagHash, err := r.Store.WriteTag(tag)
	if err != nil {
		return "", fmt.Errorf("create annotated tag: write tag object: %w", err)
	}
	if err := r.writeTagRef(name, tagHash, opts.Force); err != nil {
		return "", fmt.Errorf("create annotated tag: %w", err)
	}
	return tagHash, nil
}

func (r *Repo) writeTagRef(name string, h object.Hash, force bool) error {
	refName := "refs/tags/" + name
	if force {
		return r.updateRef(refName, h, "tag", nil)
	}
	var absent object.Hash
	err := r.updateRef(refName, h, "tag", &absent)
	if errors.Is(err, ErrRefCASMismatch) {
		return fmt.Errorf("%w: %q", ErrTagExists, name)
	}
	return err
}

// DeleteTag removes a tag ref from refs/tags/.
func (r *Repo) DeleteTag(name string) error {
	if err := ValidateTagName(name); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}

	refPath := filepath.Join(r.GotDir, "refs", "tags", filepath.FromSlash(name))
	if err := os.Remove(refPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("delete tag: tag %q does not exist", name)
		}
		return fmt.Errorf("delete tag: %w", err)
	}
	return nil
}

// ResolveTag resolves a tag name under refs/tags/ to the hash stored in
// the ref (a commit for lightweight tags, a tag object for annotated ones).
func (r *Repo) ResolveTag(name string) (object.Hash, error) {
	if err := ValidateTagName(name); err != nil {
		return "", fmt.Errorf("resolve tag: %w", err)
	}
	return r.ResolveRef("refs/tags/" + name)
}

// PeelTag resolves a tag to the object it finally points at, following
// annotated tag objects.
func (r *Repo) PeelTag(name string) (object.Hash, error) {
	h, err := r.ResolveTag(name)
	if err != nil {
		return "", err
	}
	for depth := 0; depth < 8; depth++ {
		objType, _, err := r.Store.Read(h)
		if err != nil {
			return "", fmt.Errorf("peel tag %q: %w", name, err)
		}
		if objType != object.TypeTag {
			return h, nil
		}
		tag, err := r.Store.ReadTag(h)
		if err != nil {
			return "", fmt.Errorf("peel tag %q: %w", name, err)
		}
		h = tag.TargetHash
	}
	return "", fmt.Errorf("peel tag %q: tag chain too deep", name)
}

// ListTags lists tag names sorted alphabetically.
func (r *Repo) ListTags() ([]string, error) {
	refs, err := r.ListRefs("tags")
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	names := make([]string, 0, len(refs))
	for full := range refs {
		names = append(names, strings.TrimPrefix(full, "tags/"))
	}
	sort.Strings(names)
	return names, nil
}

// ListTagsWithHashes returns tag name -> ref hash.
func (r *Repo) ListTagsWithHashes() (map[string]object.Hash, error) {
	refs, err := r.ListRefs("tags")
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	out := make(map[string]object.Hash, len(refs))
	for full, hash := range refs {
		out[strings.TrimPrefix(full, "tags/")] = hash
	}
	return out, nil
}

// ValidateTagName applies the reference naming rules to a tag name. The
// returned error matches ErrInvalidTagName.
func ValidateTagName(name string) error {
	if reason := tagNameProblem(name); reason != "" {
		return fmt.Errorf("%w %q: %s", ErrInvalidTagName, name, reason)
	}
	return nil
}

func tagNameProblem(name string) string {
	switch {
	case name == "":
		return "name is required"
	case name == "@":
		return `name cannot be "@"`
	case strings.HasPrefix(name, "-"):
		return "name cannot start with '-'"
	case strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/"):
		return "name cannot start or end with '/'"
	case strings.HasSuffix(name, "."):
		return "name cannot end with '.'"
	case strings.Contains(name, ".."):
		return `name cannot contain ".."`
	case strings.Contains(name, "//"):
		return `name cannot contain "//"`
	case strings.Contains(name, "@{"):
		return `name cannot contain "@{"`
	}
	for _, c := range name {
		if c < 0x20 || c == 0x7f {
			return "name cannot contain control characters"
		}
		if strings.ContainsRune(" ~^:?*[\\", c) {
			return fmt.Sprintf("name cannot contain %q", c)
		}
	}
	for _, part := range strings.Split(name, "/") {
		if strings.HasPrefix(part, ".") {
			return "path components cannot start with '.'"
		}
		if strings.HasSuffix(part, ".lock") {
			return `path components cannot end with ".lock"`
		}
	}
	return ""
}

func formatTimezoneOffset(t time.Time) string {
	_, offset := t.Zone()
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	return fmt.Sprintf("%s%02d%02d", sign, offset/3600, (offset%3600)/60)
}
