package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/odvcencio/gotag/pkg/release"
)

// prompter asks on out and reads the answer from in.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// confirm lists the planned tags and accepts "y" or "yes". End of input
// counts as a refusal.
func (p *prompter) confirm(plan *release.Plan) (bool, error) {
	fmt.Fprintf(p.out, "About to tag %s (%s):\n", plan.Version, plan.Mode)
	for _, e := range plan.Entries {
		fmt.Fprintf(p.out, "  %-24s %s\n", e.Repo, e.Tag)
	}
	fmt.Fprintf(p.out, "Create %d tag(s)? [y/N] ", len(plan.Entries))

	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
