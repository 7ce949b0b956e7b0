package release_test

import (
	"errors"
	"testing"

	"github.com/odvcencio/gotag/pkg/release"
)

func TestResolveTagName(t *testing.T) {
	v := release.MustParseVersion("5.0.0-beta1")
	tests := []struct {
		prefix string
		want   release.TagName
	}{
		{"", "5.0.0-beta1"},
		{"v", "v5.0.0-beta1"},
		{"v.", "v.5.0.0-beta1"},
		{"release/", "release/5.0.0-beta1"},
	}
	for _, tt := range tests {
		first, err := release.ResolveTagName(tt.prefix, v)
		if err != nil {
			t.Fatalf("ResolveTagName(%q): %v", tt.prefix, err)
		}
		second, err := release.ResolveTagName(tt.prefix, v)
		if err != nil {
			t.Fatalf("ResolveTagName(%q) second call: %v", tt.prefix, err)
		}
		if first != tt.want || second != first {
			t.Fatalf("ResolveTagName(%q) = %q then %q, want %q", tt.prefix, first, second, tt.want)
		}
	}
}

func TestResolveTagNameRejectsDoubleDot(t *testing.T) {
	v := release.MustParseVersion("1.0.0")
	for _, prefix := range []string{"v..", "..", "a..b/"} {
		_, err := release.ResolveTagName(prefix, v)
		if !errors.Is(err, release.ErrInvalidTagName) {
			t.Fatalf("ResolveTagName(%q) error = %v, want ErrInvalidTagName", prefix, err)
		}
	}
}

func TestResolveTagNameRequiresVersion(t *testing.T) {
	_, err := release.ResolveTagName("v", release.Version{})
	if !errors.Is(err, release.ErrInvalidTagName) {
		t.Fatalf("error = %v, want ErrInvalidTagName", err)
	}
}
