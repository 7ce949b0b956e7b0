package release_test

import (
	"context"
	"errors"
	"testing"

	"github.com/odvcencio/gotag/pkg/release"
	"github.com/odvcencio/gotag/pkg/release/releasetest"
)

func TestEnsureAbsent(t *testing.T) {
	ctx := context.Background()
	tag := release.TagName("v1.0.0")
	tests := []struct {
		name       string
		local      []string
		remote     []string
		opts       release.CheckOptions
		wantExists bool
		wantRemote bool
	}{
		{name: "absent", local: []string{"v0.9.0"}},
		{name: "local match", local: []string{"v0.9.0", "v1.0.0"}, wantExists: true},
		{name: "prefix is not a match", local: []string{"v1.0.0-rc1", "1.0.0"}},
		{name: "remote ignored by default", remote: []string{"v1.0.0"}},
		{name: "remote match", remote: []string{"v1.0.0"}, opts: release.CheckOptions{Remote: true}, wantExists: true, wantRemote: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := releasetest.New("lib", "v")
			r.Tags = tt.local
			r.Remote = tt.remote
			err := release.EnsureAbsent(ctx, r, tag, tt.opts)
			if !tt.wantExists {
				if err != nil {
					t.Fatalf("EnsureAbsent: %v", err)
				}
				return
			}
			var exists *release.TagExistsError
			if !errors.As(err, &exists) {
				t.Fatalf("EnsureAbsent error = %v, want *TagExistsError", err)
			}
			if !errors.Is(err, release.ErrTagExists) {
				t.Fatal("error does not match ErrTagExists")
			}
			if exists.Repo != "lib" || exists.Tag != tag || exists.Remote != tt.wantRemote {
				t.Fatalf("TagExistsError = %+v, want repo lib tag %s remote %v", exists, tag, tt.wantRemote)
			}
		})
	}
}

func TestEnsureAbsentQueryFailure(t *testing.T) {
	boom := errors.New("refs unreadable")
	r := releasetest.New("lib", "v")
	r.FailList = boom
	err := release.EnsureAbsent(context.Background(), r, "v1.0.0", release.CheckOptions{})
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want %v", err, boom)
	}
	if errors.Is(err, release.ErrTagExists) {
		t.Fatal("query failure reported as an existing tag")
	}

	r = releasetest.New("lib", "v")
	r.FailRemote = boom
	err = release.EnsureAbsent(context.Background(), r, "v1.0.0", release.CheckOptions{Remote: true})
	if !errors.Is(err, boom) {
		t.Fatalf("remote error = %v, want %v", err, boom)
	}
}
