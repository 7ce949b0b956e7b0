package release

import "fmt"

// Mode selects which repositories of a Tree a release tags.
type Mode int

const (
	// Recursive tags the top repository and every submodule.
	Recursive Mode = iota
	// Shallow tags only the top repository.
	Shallow
)

func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "recursive":
		return Recursive, nil
	case "shallow":
		return Shallow, nil
	}
	return Recursive, fmt.Errorf("unknown mode %q (want recursive or shallow)", s)
}

func (m Mode) String() string {
	if m == Shallow {
		return "shallow"
	}
	return "recursive"
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
