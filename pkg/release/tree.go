package release

import "fmt"

// Tree is a repository and the transitive closure of its submodules,
// flattened in depth-first preorder following declaration order.
type Tree struct {
	nodes []Handle
}

// NewTree discovers every submodule reachable from top. A repository name
// reached twice is rejected so that cyclic manifests cannot loop.
func NewTree(top Handle) (*Tree, error) {
	if top == nil {
		return nil, fmt.Errorf("new tree: nil top repository")
	}
	t := &Tree{}
	seen := make(map[string]string)
	if err := t.walk(top, "", seen); err != nil {
		return nil, err
	}
	return t, nil
}

// TopOnly returns a tree holding just top, without asking it for
// submodules.
func TopOnly(top Handle) *Tree {
	return &Tree{nodes: []Handle{top}}
}

func (t *Tree) walk(h Handle, parent string, seen map[string]string) error {
	name := h.Name()
	if prev, ok := seen[name]; ok {
		return fmt.Errorf("new tree: repository %q reached from %q was already reached from %q", name, parent, prev)
	}
	seen[name] = parent
	t.nodes = append(t.nodes, h)

	subs, err := h.Submodules()
	if err != nil {
		return fmt.Errorf("new tree: list submodules of %s: %w", name, err)
	}
	for _, sub := range subs {
		if err := t.walk(sub, name, seen); err != nil {
			return err
		}
	}
	return nil
}

// Top returns the repository the tree was built from.
func (t *Tree) Top() Handle { return t.nodes[0] }

// All returns every repository, top first.
func (t *Tree) All() []Handle {
	out := make([]Handle, len(t.nodes))
	copy(out, t.nodes)
	return out
}

// Scope returns the repositories a release in mode touches.
func (t *Tree) Scope(mode Mode) []Handle {
	if mode == Shallow {
		return []Handle{t.nodes[0]}
	}
	return t.All()
}

func (t *Tree) Len() int { return len(t.nodes) }
