package release

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Plan is what a release will do if confirmed: one entry per repository in
// creation order.
type Plan struct {
	Version Version
	Mode    Mode
	Entries []PlanEntry
}

type PlanEntry struct {
	Repo string
	Tag  TagName
}

// ConfirmFunc is asked to approve a fully checked plan before any tag is
// written. Returning false aborts the release with ErrDeclined.
type ConfirmFunc func(plan *Plan) (bool, error)

// Operation tags a release across a Tree.
type Operation struct {
	Logger      *zap.Logger
	Confirm     ConfirmFunc
	CheckRemote bool
}

// Execute validates rawVersion, resolves and checks a tag for every
// repository mode selects, then creates the tags in tree order.
//
// Nothing is written unless every repository passed its checks. Once
// creation starts the first failure stops it; tags already created are
// kept and the returned *TagCreationError lists them. The returned Report
// is non-nil whenever tree is.
func (op *Operation) Execute(ctx context.Context, rawVersion string, mode Mode, tree *Tree) (*Report, error) {
	if tree == nil || tree.Len() == 0 {
		return nil, errors.New("tag release: empty repository tree")
	}
	report := &Report{
		ID:      uuid.NewString(),
		Version: rawVersion,
		Mode:    mode,
		Stage:   StageValidate,
	}
	log := op.logger().With(
		zap.String("op_id", report.ID),
		zap.String("version", rawVersion),
		zap.Stringer("mode", mode),
	)

	v, err := ParseVersion(rawVersion)
	if err != nil {
		log.Debug("version rejected", zap.Error(err))
		report.abort(StageValidate)
		return report, err
	}

	scope := tree.Scope(mode)
	report.Stage = StageCheck
	for _, h := range scope {
		report.Results = append(report.Results, Result{Repo: h.Name(), Status: StatusPlanned})
	}
	log.Debug("checking repositories", zap.Int("repos", len(scope)))

	plan := &Plan{Version: v, Mode: mode}
	for i, h := range scope {
		tag, local, err := op.check(ctx, h, v)
		report.Results[i].Tag = tag
		if err != nil {
			log.Debug("check failed", zap.String("repo", h.Name()), zap.String("tag", string(tag)), zap.Error(err))
			report.Results[i].Status = StatusFailed
			report.Results[i].Error = err.Error()
			report.abort(StageCheck)
			return report, err
		}
		if i == 0 {
			warnIfNotNewest(log, h, v, local)
		}
		plan.Entries = append(plan.Entries, PlanEntry{Repo: h.Name(), Tag: tag})
	}

	report.Stage = StageConfirm
	if op.Confirm != nil {
		ok, err := op.Confirm(plan)
		if err != nil {
			report.abort(StageConfirm)
			return report, fmt.Errorf("confirm release: %w", err)
		}
		if !ok {
			log.Debug("release declined")
			report.abort(StageConfirm)
			return report, ErrDeclined
		}
	}
	if err := ctx.Err(); err != nil {
		report.abort(StageConfirm)
		return report, err
	}

	report.Stage = StageCreate
	for i, h := range scope {
		tag := plan.Entries[i].Tag
		if err := h.CreateTag(string(tag)); err != nil {
			report.Results[i].Status = StatusFailed
			report.Results[i].Error = err.Error()
			for j := i + 1; j < len(report.Results); j++ {
				report.Results[j].Status = StatusSkipped
			}
			report.State = StatePartiallyCompleted
			log.Error("tag creation failed",
				zap.String("repo", h.Name()),
				zap.String("tag", string(tag)),
				zap.Int("created", i),
				zap.Int("not_attempted", len(scope)-i-1),
				zap.Error(err))
			return report, &TagCreationError{Repo: h.Name(), Tag: tag, Report: report, Err: err}
		}
		report.Results[i].Status = StatusCreated
		log.Info("tag created", zap.String("repo", h.Name()), zap.String("tag", string(tag)))
	}

	report.State = StateCompleted
	report.Stage = StageDone
	return report, nil
}

func (op *Operation) check(ctx context.Context, h Handle, v Version) (TagName, []string, error) {
	tag, err := ResolveTagName(h.TagPrefix(), v)
	if err != nil {
		var nameErr *InvalidTagNameError
		if errors.As(err, &nameErr) {
			nameErr.Repo = h.Name()
			return nameErr.Name, nil, nameErr
		}
		return "", nil, err
	}
	if checker, ok := h.(TagNameChecker); ok {
		if err := checker.CheckTagName(string(tag)); err != nil {
			return tag, nil, invalidTagName(h.Name(), tag, err)
		}
	}
	local, err := checkAbsent(ctx, h, tag, CheckOptions{Remote: op.CheckRemote})
	return tag, local, err
}

func invalidTagName(repo string, tag TagName, err error) error {
	if errors.Is(err, ErrInvalidTagName) {
		return err
	}
	return &InvalidTagNameError{Repo: repo, Name: tag, Reason: err.Error(), Err: err}
}

// warnIfNotNewest logs when tags already carry a release newer than v.
func warnIfNotNewest(log *zap.Logger, h Handle, v Version, tags []string) {
	var newest Version
	var newestTag string
	for _, t := range tags {
		tv, ok := VersionFromTag(h.TagPrefix(), t)
		if !ok {
			continue
		}
		if newest.IsZero() || tv.Compare(newest) > 0 {
			newest, newestTag = tv, t
		}
	}
	if !newest.IsZero() && newest.Compare(v) > 0 {
		log.Warn("an existing release is newer than this one",
			zap.String("repo", h.Name()),
			zap.String("latest", newestTag))
	}
}

func (op *Operation) logger() *zap.Logger {
	if op.Logger == nil {
		return zap.NewNop()
	}
	return op.Logger
}
