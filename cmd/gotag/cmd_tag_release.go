package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/odvcencio/gotag/pkg/release"
	"github.com/odvcencio/gotag/pkg/release/gotrepo"
	"github.com/odvcencio/gotag/pkg/remote"
	"github.com/odvcencio/gotag/pkg/repo"
)

func newTagReleaseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag-release VERSION",
		Short: "Tag HEAD of the repository and its submodules with a release version",
		Long: `Tag HEAD of the repository and, unless --shallow is given, every submodule
declared in .gotmodules, recursively. Each repository's tag is its
release.tag_prefix (default "v") followed by VERSION.

Every tag is checked before any is created. If creation fails partway the
tags already created are kept and reported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTagRelease(cmd, args[0])
		},
	}

	flags := cmd.Flags()
	flags.Bool("shallow", false, "tag only the top-level repository")
	flags.Bool("no-ask", false, "do not ask for confirmation")
	flags.Bool("remote-check", false, "also reject tags present on each repository's release remote")
	flags.String("format", formatText, "report format: text, json or yaml")
	flags.Bool("sign", false, "create SSH-signed annotated tags")
	flags.String("signing-key", "", "SSH private key for --sign (default ~/.ssh/id_*)")
	flags.String("tagger", "", "tagger identity for annotated tags (default $USER)")
	flags.Duration("remote-timeout", 30*time.Second, "timeout for remote tag listing")
	return cmd
}

func (a *app) runTagRelease(cmd *cobra.Command, rawVersion string) error {
	format := a.v.GetString("format")
	if err := validateFormat(format); err != nil {
		return err
	}
	// Reject a bad version before any repository is opened.
	if _, err := release.ParseVersion(rawVersion); err != nil {
		return fmt.Errorf("%s: %w", release.StageValidate, err)
	}

	mode := release.Recursive
	if a.v.GetBool("shallow") {
		mode = release.Shallow
	}

	opts, err := a.handleOptions()
	if err != nil {
		return err
	}
	dir, err := a.dir()
	if err != nil {
		return err
	}
	top, err := gotrepo.Open(dir, opts)
	if err != nil {
		return err
	}

	var tree *release.Tree
	if mode == release.Shallow {
		tree = release.TopOnly(top)
	} else if tree, err = release.NewTree(top); err != nil {
		return err
	}
	a.log.Debug("repository tree loaded", zap.String("root", top.Repo().RootDir), zap.Int("repos", tree.Len()))

	op := &release.Operation{
		Logger:      a.log,
		CheckRemote: a.v.GetBool("remote-check"),
	}
	if !a.v.GetBool("no-ask") {
		op.Confirm = newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()).confirm
	}

	report, err := op.Execute(cmd.Context(), rawVersion, mode, tree)
	if errors.Is(err, release.ErrDeclined) {
		fmt.Fprintln(cmd.ErrOrStderr(), "release aborted, no tags created")
		return nil
	}
	if report != nil && (err == nil || report.Mutated() || format != formatText) {
		if rerr := renderReport(cmd.OutOrStdout(), format, report); rerr != nil && err == nil {
			err = rerr
		}
	}
	if err != nil && report != nil {
		return fmt.Errorf("%s: %w", report.Stage, err)
	}
	return err
}

func (a *app) handleOptions() (gotrepo.Options, error) {
	tagger := a.v.GetString("tagger")
	if tagger == "" {
		tagger = os.Getenv("USER")
	}
	opts := gotrepo.Options{
		Tagger: tagger,
		Logger: a.log,
		Client: remote.ClientOptions{Timeout: a.v.GetDuration("remote-timeout")},
		NewSigner: func(keyPath string) (repo.TagSigner, error) {
			signer, resolved, err := newSSHTagSigner(keyPath)
			if err == nil {
				a.log.Debug("loaded signing key", zap.String("path", resolved))
			}
			return signer, err
		},
	}
	if a.v.GetBool("sign") {
		signer, resolved, err := newSSHTagSigner(a.v.GetString("signing-key"))
		if err != nil {
			return opts, err
		}
		a.log.Debug("signing release tags", zap.String("key", resolved))
		opts.Signer = signer
	}
	return opts, nil
}
