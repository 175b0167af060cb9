// Package api provides the core implementation for ufcsort operations.
// This package is used by both the CLI and the public library API.
package api

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dinghy6/sabnzbd-scripts/internal/config"
	"github.com/dinghy6/sabnzbd-scripts/internal/formatter"
	"github.com/dinghy6/sabnzbd-scripts/internal/journal"
	"github.com/dinghy6/sabnzbd-scripts/internal/logger"
	"github.com/dinghy6/sabnzbd-scripts/internal/matcher"
	"github.com/dinghy6/sabnzbd-scripts/internal/renamer"
	"github.com/dinghy6/sabnzbd-scripts/internal/tagger"
	"github.com/dinghy6/sabnzbd-scripts/internal/types"
	"github.com/dinghy6/sabnzbd-scripts/internal/watcher"
)

var defaultEventHandler types.EventHandler

// SetDefaultEventHandler sets the handler used when no WithEventHandler
// option is given.
func SetDefaultEventHandler(h types.EventHandler) {
	defaultEventHandler = h
}

// Option is a functional option for configuring operations
type Option func(*Options)

// Options holds configuration for ufcsort operations. Boolean options
// only ever enable a behaviour on top of the loaded configuration.
type Options struct {
	ConfigPath     string
	Config         *config.Config
	Destination    string
	Category       string
	Strict         bool
	ReplaceSameRes bool
	DryRun         bool
	Tagging        bool
	NoJournal      bool
	RemoveEmpty    bool
	Force          bool
	Events         types.EventHandler
	Logger         *logger.Logger
}

// WithConfig specifies a config file path
func WithConfig(path string) Option {
	return func(o *Options) { o.ConfigPath = path }
}

// WithSettings uses an already loaded configuration instead of reading one
func WithSettings(cfg *config.Config) Option {
	return func(o *Options) { o.Config = cfg }
}

// WithDestination overrides the library root
func WithDestination(dir string) Option {
	return func(o *Options) { o.Destination = dir }
}

// WithCategory sets the download category. The strict category forces strict matching.
func WithCategory(category string) Option {
	return func(o *Options) { o.Category = category }
}

// WithStrict fails releases without an event number instead of skipping them
func WithStrict() Option {
	return func(o *Options) { o.Strict = true }
}

// WithReplaceSameRes replaces existing files of the same resolution
func WithReplaceSameRes() Option {
	return func(o *Options) { o.ReplaceSameRes = true }
}

// WithDryRun enables dry-run mode (preview changes without applying)
func WithDryRun() Option {
	return func(o *Options) { o.DryRun = true }
}

// WithTagging embeds metadata into placed files
func WithTagging() Option {
	return func(o *Options) { o.Tagging = true }
}

// WithNoJournal skips recording placements
func WithNoJournal() Option {
	return func(o *Options) { o.NoJournal = true }
}

// WithRemoveEmpty removes emptied job folders after Organize
func WithRemoveEmpty() Option {
	return func(o *Options) { o.RemoveEmpty = true }
}

// WithForce removes fully placed folders with leftovers in Organize and
// overwrites an existing file in Init
func WithForce() Option {
	return func(o *Options) { o.Force = true }
}

// WithEventHandler receives progress events
func WithEventHandler(h types.EventHandler) Option {
	return func(o *Options) { o.Events = h }
}

// WithLogger logs progress events when no event handler is set
func WithLogger(l *logger.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// session is one configured invocation
type session struct {
	opts      *Options
	cfg       *config.Config
	matcher   *matcher.Matcher
	formatter *formatter.Formatter
	renamer   *renamer.Renamer
	events    types.EventHandler
}

func newOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// loadConfig loads the configuration and applies option overrides
func loadConfig(o *Options) (*config.Config, error) {
	var cfg *config.Config
	if o.Config != nil {
		c := *o.Config
		cfg = &c
	} else {
		loaded, err := config.Load(o.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if o.Destination != "" {
		cfg.Destination = o.Destination
	}
	if o.ReplaceSameRes {
		cfg.ReplaceSameResolution = true
	}
	if o.DryRun {
		cfg.DryRun = true
	}
	if o.Tagging {
		cfg.Tagging.Enabled = true
	}
	if o.NoJournal {
		cfg.Journal.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func eventHandler(o *Options) types.EventHandler {
	switch {
	case o.Events != nil:
		return o.Events
	case o.Logger != nil:
		return o.Logger.Handle
	case defaultEventHandler != nil:
		return defaultEventHandler
	}
	return func(types.Event) {}
}

func newSession(opts []Option) (*session, error) {
	o := newOptions(opts)
	cfg, err := loadConfig(o)
	if err != nil {
		return nil, err
	}

	s := &session{opts: o, cfg: cfg, events: eventHandler(o)}
	if cfg.Path() != "" {
		s.emit(types.EventProgress, "Using config %s", cfg.Path())
	}

	tmpl, err := cfg.Template()
	if err != nil {
		return nil, err
	}
	if s.matcher, err = matcher.New(cfg.Promotion, cfg.Destination); err != nil {
		return nil, types.ErrConfigInvalid{Path: cfg.Path(), Reason: err.Error()}
	}
	if s.formatter, err = formatter.New(cfg.Destination, cfg.Subfolder, tmpl); err != nil {
		return nil, err
	}

	strict := cfg.StrictMatching || o.Strict || cfg.IsStrictCategory(o.Category)
	s.renamer = renamer.New(s.matcher, s.formatter, cfg.Formats).
		WithStrict(strict).
		WithReplaceSameRes(cfg.ReplaceSameResolution).
		WithPermissions(cfg.FileMode(), cfg.DirMode()).
		WithEventHandler(s.events)
	if cfg.DryRun {
		s.renamer.WithDryRun()
	}

	if cfg.Tagging.Enabled {
		if tagger.IsAvailable() {
			s.renamer.WithTagger(tagger.New(s.matcher.Promotion()))
		} else {
			s.emit(types.EventWarning, "Tagging enabled but neither mkvpropedit nor atomicparsley is installed")
		}
	}
	if cfg.Journal.Enabled {
		s.renamer.WithJournal(journal.New(cfg.JournalDir()))
	}

	return s, nil
}

func (s *session) emit(t types.EventType, format string, a ...any) {
	s.events(types.Event{Type: t, Message: fmt.Sprintf(format, a...)})
}

// fatal returns the error of op when it is a configuration problem
func fatal(op types.Operation) error {
	var unsafe types.ErrUnsafeName
	if errors.As(op.Err, &unsafe) {
		return op.Err
	}
	return nil
}

// Place places one job. path is a video file or a job folder, in which
// case its largest video file is placed. The error is non-nil only for
// configuration problems or an unusable path; every other outcome is
// carried by the operation.
func Place(ctx context.Context, path string, opts ...Option) (types.Operation, error) {
	op := types.Operation{SourcePath: path, Action: types.ActionNone}

	s, err := newSession(opts)
	if err != nil {
		op.Status, op.Err, op.Message = types.StatusFailed, err, err.Error()
		return op, err
	}
	op.DryRun = s.renamer.DryRun()

	if _, err := os.Stat(path); err != nil {
		ioErr := types.ErrIO{Op: "stat", Path: path, Err: err}
		op.Status, op.Err, op.Message = types.StatusFailed, ioErr, ioErr.Error()
		return op, ioErr
	}

	video, err := renamer.LargestVideo(path, s.cfg.Formats)
	if err != nil {
		op.Status, op.Err, op.Message = types.StatusFailed, err, err.Error()
		return op, nil
	}

	op = s.renamer.Place(ctx, video)
	return op, fatal(op)
}

// Organize places every release found below dir
func Organize(ctx context.Context, dir string, opts ...Option) ([]types.Operation, error) {
	s, err := newSession(opts)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, types.ErrIO{Op: "stat", Path: dir, Err: err}
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	ops, err := s.renamer.Walk(ctx, dir, renamer.WalkOptions{
		RemoveEmpty: s.opts.RemoveEmpty,
		Force:       s.opts.Force,
	})
	if err != nil {
		return ops, err
	}
	for _, op := range ops {
		if err := fatal(op); err != nil {
			return ops, err
		}
	}
	return ops, nil
}

// Parse extracts the descriptor of a release name or path and renders
// its target path. An empty target means the name has no event number.
func Parse(name string, opts ...Option) (types.Descriptor, string, error) {
	s, err := newSession(opts)
	if err != nil {
		return types.Descriptor{}, "", err
	}

	strict := s.cfg.StrictMatching || s.opts.Strict || s.cfg.IsStrictCategory(s.opts.Category)
	desc, err := s.matcher.Extract(name, strict)
	if err != nil || desc.EventNumber == "" {
		return desc, "", err
	}

	target, err := s.formatter.TargetPath(desc, filepath.Ext(name))
	return desc, target, err
}

// Watch places every job that completes in dir until ctx is cancelled
func Watch(ctx context.Context, dir string, opts ...Option) error {
	s, err := newSession(opts)
	if err != nil {
		return err
	}

	w, err := watcher.New(dir, watcher.Config{
		Debounce: s.cfg.Watch.Debounce,
		Settle:   s.cfg.Watch.Settle,
		Formats:  s.cfg.Formats,
	}, func(ctx context.Context, job string) {
		// each job is its own run, so undo only reverts the latest job
		if s.cfg.Journal.Enabled {
			s.renamer.WithJournal(journal.New(s.cfg.JournalDir()))
		}
		video, err := renamer.LargestVideo(job, s.cfg.Formats)
		if err != nil {
			s.emit(types.EventError, "%v", err)
			return
		}
		s.renamer.Report(s.renamer.Place(ctx, video))
	})
	if err != nil {
		return err
	}
	w.SetEventHandler(s.events)
	return w.Run(ctx)
}

// Tag embeds metadata into files that are already placed. path is a
// video file or a folder searched recursively. It returns the number of
// files tagged.
func Tag(ctx context.Context, path string, opts ...Option) (int, error) {
	s, err := newSession(opts)
	if err != nil {
		return 0, err
	}
	if !tagger.IsAvailable() {
		return 0, errors.New("neither mkvpropedit nor atomicparsley is installed")
	}

	t := tagger.New(s.matcher.Promotion())
	isVideo := renamer.VideoFilter(s.cfg.Formats)
	tagged := 0

	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return types.ErrIO{Op: "read", Path: p, Err: err}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() || !isVideo(d.Name()) {
			return nil
		}

		desc, _ := s.matcher.Extract(p, false)
		if desc.EventNumber == "" {
			s.emit(types.EventProgress, "No event number in %s, skipping", d.Name())
			return nil
		}
		if s.cfg.DryRun {
			s.emit(types.EventInfo, "Would tag: %s", d.Name())
			return nil
		}

		if err := t.Tag(ctx, p, desc); err != nil {
			s.emit(types.EventWarning, "Tagging failed for %s: %v", d.Name(), err)
			return nil
		}
		tagged++
		s.emit(types.EventSuccess, "Tagged: %s", d.Name())
		return nil
	})
	return tagged, err
}

// Init writes a configuration file to path, or to the per-user location
// when path is empty, and returns where it was written. The configuration
// comes from WithSettings or the defaults.
func Init(path string, opts ...Option) (string, error) {
	o := newOptions(opts)

	cfg := config.Default()
	if o.Config != nil {
		c := *o.Config
		cfg = &c
	}
	if o.Destination != "" {
		cfg.Destination = o.Destination
	}
	if o.ReplaceSameRes {
		cfg.ReplaceSameResolution = true
	}
	if o.Strict {
		cfg.StrictMatching = true
	}
	if o.Tagging {
		cfg.Tagging.Enabled = true
	}
	if o.NoJournal {
		cfg.Journal.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	if path == "" {
		path = config.DefaultPath()
		if path == "" {
			return "", errors.New("cannot determine the config directory; pass a path")
		}
	}
	if strings.HasSuffix(path, string(filepath.Separator)) {
		path = filepath.Join(path, "config.yml")
	} else if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, "config.yml")
	}

	if err := cfg.Save(path, o.Force); err != nil {
		return "", err
	}
	return path, nil
}

// openJournal loads the configuration only for the journal location
func openJournal(opts []Option) (*journal.Manager, error) {
	cfg, err := loadConfig(newOptions(opts))
	if err != nil {
		return nil, err
	}
	return journal.New(cfg.JournalDir()), nil
}

// History returns every recorded placement, oldest first
func History(ctx context.Context, opts ...Option) ([]types.JournalEntry, error) {
	j, err := openJournal(opts)
	if err != nil {
		return nil, err
	}
	return j.ListAll(ctx)
}

// Undo moves the files of the most recent run back to where they came
// from. Restored entries leave the journal unless in dry-run mode.
func Undo(ctx context.Context, opts ...Option) ([]types.Operation, error) {
	s, err := newSession(opts)
	if err != nil {
		return nil, err
	}
	j := journal.New(s.cfg.JournalDir())

	run, err := j.LastRun(ctx)
	if err != nil {
		return nil, err
	}

	ops := make([]types.Operation, 0, len(run))
	var restored []string
	for _, entry := range run {
		if ctx.Err() != nil {
			break
		}
		op := s.renamer.Revert(ctx, entry)
		s.renamer.Report(op)
		ops = append(ops, op)
		if op.Status == types.StatusSuccess {
			restored = append(restored, entry.ID)
		}
	}

	if !s.renamer.DryRun() && len(restored) > 0 {
		if err := j.Forget(ctx, restored...); err != nil {
			return ops, err
		}
	}
	return ops, ctx.Err()
}

// Clean removes every journal entry
func Clean(ctx context.Context, opts ...Option) error {
	j, err := openJournal(opts)
	if err != nil {
		return err
	}
	return j.Clean(ctx)
}

// JournalPath returns the journal file location
func JournalPath(opts ...Option) (string, error) {
	j, err := openJournal(opts)
	if err != nil {
		return "", err
	}
	return j.Path(), nil
}

// ErrorCount returns the number of failed operations
func ErrorCount(ops []types.Operation) int {
	return renamer.ErrorCount(ops)
}
