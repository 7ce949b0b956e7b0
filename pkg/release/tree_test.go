package release_test

import (
	"errors"
	"testing"

	"github.com/odvcencio/gotag/pkg/release"
	"github.com/odvcencio/gotag/pkg/release/releasetest"
)

func names(hs []release.Handle) []string {
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i] = h.Name()
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNewTreeDepthFirstDeclarationOrder(t *testing.T) {
	top := releasetest.New(".", "v",
		releasetest.New("a", "v",
			releasetest.New("a/x", "v"),
			releasetest.New("a/y", "v"),
		),
		releasetest.New("b", "v",
			releasetest.New("b/z", "v"),
		),
	)
	tree, err := release.NewTree(top)
	if err != nil {
		t.Fatalf("NewTree: %v", err)
	}
	want := []string{".", "a", "a/x", "a/y", "b", "b/z"}
	if got := names(tree.All()); !equalStrings(got, want) {
		t.Fatalf("All() = %v, want %v", got, want)
	}
	if tree.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", tree.Len())
	}
	if tree.Top().Name() != "." {
		t.Fatalf("Top() = %q, want .", tree.Top().Name())
	}
	if got := names(tree.Scope(release.Shallow)); !equalStrings(got, []string{"."}) {
		t.Fatalf("Scope(Shallow) = %v, want [.]", got)
	}
	if got := names(tree.Scope(release.Recursive)); !equalStrings(got, want) {
		t.Fatalf("Scope(Recursive) = %v, want %v", got, want)
	}
}

func TestNewTreeRejectsRepeatedRepository(t *testing.T) {
	shared := releasetest.New("shared", "v")
	top := releasetest.New(".", "v",
		releasetest.New("a", "v", shared),
		releasetest.New("b", "v", shared),
	)
	if _, err := release.NewTree(top); err == nil {
		t.Fatal("NewTree accepted a repository reachable twice")
	}
}

func TestNewTreePropagatesDiscoveryError(t *testing.T) {
	boom := errors.New("manifest unreadable")
	child := releasetest.New("a", "v")
	child.FailSubmodules = boom
	top := releasetest.New(".", "v", child)
	_, err := release.NewTree(top)
	if !errors.Is(err, boom) {
		t.Fatalf("NewTree error = %v, want %v", err, boom)
	}
}

func TestTopOnlySkipsDiscovery(t *testing.T) {
	top := releasetest.New(".", "v")
	top.FailSubmodules = errors.New("should not be called")
	tree := release.TopOnly(top)
	if tree.Len() != 1 || tree.Top() != release.Handle(top) {
		t.Fatalf("TopOnly tree = %v, want just the top repository", names(tree.All()))
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    release.Mode
		wantErr bool
	}{
		{"", release.Recursive, false},
		{"recursive", release.Recursive, false},
		{"shallow", release.Shallow, false},
		{"deep", release.Recursive, true},
	}
	for _, tt := range tests {
		got, err := release.ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if err == nil && got != tt.want {
			t.Fatalf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	var zero release.Mode
	if zero != release.Recursive {
		t.Fatal("zero Mode is not Recursive")
	}
}
