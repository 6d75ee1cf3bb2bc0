// Package pipeline runs one generation: load the document, extract tag
// groups, render the modules and write them out.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/swagger2rtk/internal/emitter/rtkemitter"
	"github.com/mark3labs/swagger2rtk/internal/endpoint"
	"github.com/mark3labs/swagger2rtk/internal/spec"
)

// Stage is a state of a generation run.
type Stage int

const (
	Idle Stage = iota
	Loading
	Extracting
	Emitting
	Writing
	Done
	Failed
)

func (s Stage) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Extracting:
		return "extracting"
	case Emitting:
		return "emitting"
	case Writing:
		return "writing"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// ErrNoInput is returned before any stage runs when Config.Input is empty.
var ErrNoInput = errors.New("pipeline: input is required")

// StageError records the stage a run failed in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// Config is the resolved configuration for one run. It is built once by the
// caller and not consulted from anywhere else.
type Config struct {
	Input        string
	AuthUsername string
	AuthPassword string
	Timeout      time.Duration

	OutDir           string
	BaseClientPath   string
	BaseClientExport string
	Hooks            bool

	IncludeTags []string
	ExcludeTags []string
	DryRun      bool
}

// Report summarizes a finished run.
type Report struct {
	Title   string
	Version string
	Tags    []string
	OutDir  string
	Modules []rtkemitter.PlannedFile
	Removed []string
	DryRun  bool
}

// Runner executes the stages in order and tracks the current one.
type Runner struct {
	cfg   Config
	log   *slog.Logger
	stage Stage
}

// New returns a Runner in the Idle stage. A nil logger discards output.
func New(cfg Config, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Runner{cfg: cfg, log: log, stage: Idle}
}

// Run is shorthand for New(cfg, log).Run(ctx).
func Run(ctx context.Context, cfg Config, log *slog.Logger) (*Report, error) {
	return New(cfg, log).Run(ctx)
}

// Stage reports where the runner is; after Run it is Done or Failed.
func (r *Runner) Stage() Stage { return r.stage }

// Run performs a single generation. Nothing is written unless loading,
// extraction and rendering all succeed.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if r.cfg.Input == "" {
		return nil, ErrNoInput
	}

	r.enter(Loading, "input", r.cfg.Input)
	opts := []spec.Option{spec.WithBasicAuth(r.cfg.AuthUsername, r.cfg.AuthPassword)}
	if r.cfg.Timeout > 0 {
		opts = append(opts, spec.WithHTTPTimeout(r.cfg.Timeout))
	}
	doc, err := spec.Load(ctx, r.cfg.Input, opts...)
	if err != nil {
		return nil, r.fail(err)
	}
	r.log.Info("loaded document", "title", doc.Title, "version", doc.Version, "openapi", doc.OpenAPI,
		"paths", len(doc.Paths), "schemas", len(doc.Schemas))

	r.enter(Extracting)
	groups := endpoint.Extract(doc,
		endpoint.WithIncludeTags(r.cfg.IncludeTags),
		endpoint.WithExcludeTags(r.cfg.ExcludeTags),
	)
	tags := make([]string, 0, len(groups))
	for _, g := range groups {
		tags = append(tags, g.Tag)
	}
	r.log.Info("grouped operations", "tags", len(tags), "names", tags)
	r.warnDuplicateOperationIDs(groups)

	r.enter(Emitting)
	emitOpts := rtkemitter.Options{
		OutDir:           r.cfg.OutDir,
		BaseClientPath:   r.cfg.BaseClientPath,
		BaseClientExport: r.cfg.BaseClientExport,
		Hooks:            r.cfg.Hooks,
		DryRun:           r.cfg.DryRun,
		Logger:           r.log,
	}
	bundle, err := rtkemitter.Render(doc, groups, emitOpts)
	if err != nil {
		return nil, r.fail(err)
	}

	r.enter(Writing, "out", r.cfg.OutDir, "dryRun", r.cfg.DryRun)
	res, err := rtkemitter.Write(ctx, bundle, emitOpts)
	if err != nil {
		return nil, r.fail(err)
	}

	r.enter(Done, "modules", len(res.Planned), "removed", len(res.Removed))
	return &Report{
		Title:   doc.Title,
		Version: doc.Version,
		Tags:    tags,
		OutDir:  res.OutDir,
		Modules: res.Planned,
		Removed: res.Removed,
		DryRun:  res.DryRun,
	}, nil
}

func (r *Runner) enter(s Stage, attrs ...any) {
	r.stage = s
	r.log.Debug("stage", append([]any{"stage", s.String()}, attrs...)...)
}

func (r *Runner) fail(err error) error {
	failed := r.stage
	r.stage = Failed
	r.log.Debug("stage", "stage", Failed.String(), "in", failed.String(), "error", err)
	return &StageError{Stage: failed, Err: err}
}

// warnDuplicateOperationIDs logs operationIds shared by different
// operations; their generated names collide.
func (r *Runner) warnDuplicateOperationIDs(groups []endpoint.TagGroup) {
	first := map[string]string{}
	reported := map[string]struct{}{}
	for _, g := range groups {
		for _, d := range g.Endpoints {
			where := string(d.Method) + " " + d.Path
			prev, seen := first[d.OperationID]
			if !seen {
				first[d.OperationID] = where
				continue
			}
			key := d.OperationID + "\x00" + where
			if _, done := reported[key]; prev == where || done {
				continue
			}
			reported[key] = struct{}{}
			r.log.Warn("duplicate operationId; generated names will collide", "operationId", d.OperationID, "first", prev, "again", where)
		}
	}
}
