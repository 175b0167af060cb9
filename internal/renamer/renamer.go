// Package renamer places parsed releases into the library and resolves
// conflicts with files already placed there.
package renamer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dinghy6/sabnzbd-scripts/internal/formatter"
	"github.com/dinghy6/sabnzbd-scripts/internal/matcher"
	"github.com/dinghy6/sabnzbd-scripts/internal/types"
)

// Renamer orchestrates placement of source files
type Renamer struct {
	matcher        *matcher.Matcher
	formatter      *formatter.Formatter
	ops            *fileOps
	formats        map[string]bool
	strict         bool
	replaceSameRes bool
	tagger         types.Tagger
	journal        types.Journal
	events         types.EventHandler
	locks          *folderLocks
}

// New creates a renamer that recognizes the given video extensions
func New(m *matcher.Matcher, f *formatter.Formatter, formats []string) *Renamer {
	r := &Renamer{
		matcher:   m,
		formatter: f,
		formats:   formatSet(formats),
		locks:     newFolderLocks(),
		events:    func(types.Event) {},
	}
	r.ops = &fileOps{emit: r.emit}
	return r
}

// WithStrict fails files without an event number instead of skipping them
func (r *Renamer) WithStrict(strict bool) *Renamer {
	r.strict = strict
	return r
}

// WithReplaceSameRes replaces existing files of equal resolution
func (r *Renamer) WithReplaceSameRes(replace bool) *Renamer {
	r.replaceSameRes = replace
	return r
}

// WithDryRun reports every decision without touching the filesystem
func (r *Renamer) WithDryRun() *Renamer {
	r.ops.dryRun = true
	return r
}

// WithPermissions applies modes to placed files and created folders.
// A zero mode leaves permissions untouched.
func (r *Renamer) WithPermissions(fileMode, dirMode os.FileMode) *Renamer {
	r.ops.fileMode = fileMode
	r.ops.dirMode = dirMode
	return r
}

// WithTagger embeds metadata into placed files
func (r *Renamer) WithTagger(t types.Tagger) *Renamer {
	r.tagger = t
	return r
}

// WithJournal records successful placements
func (r *Renamer) WithJournal(j types.Journal) *Renamer {
	r.journal = j
	return r
}

// WithEventHandler sets the receiver of progress events
func (r *Renamer) WithEventHandler(h types.EventHandler) *Renamer {
	if h != nil {
		r.events = h
	}
	return r
}

// DryRun reports whether the renamer is in dry-run mode
func (r *Renamer) DryRun() bool {
	return r.ops.dryRun
}

func (r *Renamer) emit(t types.EventType, format string, a ...any) {
	r.events(types.Event{Type: t, Message: fmt.Sprintf(format, a...)})
}

// Place extracts, renders and places a single source file. Every outcome
// is carried by the returned operation; an unsafe rendered name is the
// only failure callers should treat as a configuration error.
func (r *Renamer) Place(ctx context.Context, source string) types.Operation {
	op := types.Operation{SourcePath: source, Action: types.ActionNone, DryRun: r.ops.dryRun}

	desc, err := r.matcher.Extract(source, r.strict)
	if err != nil {
		return fail(op, err)
	}
	if desc.EventNumber == "" {
		op.Status = types.StatusSkipped
		r.emit(types.EventProgress, "No event number in %s, skipping", filepath.Base(source))
		return op
	}
	op.Descriptor = &desc

	dir, file, err := r.formatter.Target(desc, filepath.Ext(source))
	if err != nil {
		return fail(op, err)
	}
	op.TargetPath = filepath.Join(dir, file)

	unlock := r.locks.lock(dir)
	defer unlock()

	op = r.resolve(op, desc, dir)
	if op.Status != types.StatusSuccess || op.Action == types.ActionNone || r.ops.dryRun {
		return op
	}

	if r.tagger != nil {
		if err := r.tagger.Tag(ctx, op.TargetPath, desc); err != nil {
			r.emit(types.EventWarning, "Tagging failed for %s: %v", file, err)
		}
	}
	if r.journal != nil {
		if err := r.journal.Record(ctx, op); err != nil {
			r.emit(types.EventWarning, "Failed to record placement of %s: %v", file, err)
		}
	}

	return op
}

// resolve applies the conflict policy for op and performs the chosen effect
func (r *Renamer) resolve(op types.Operation, desc types.Descriptor, dir string) types.Operation {
	target := op.TargetPath

	if _, err := os.Stat(target); err == nil {
		if sameFile(op.SourcePath, target) {
			op.Status = types.StatusSuccess
			op.Message = fmt.Sprintf("%s is already in place", filepath.Base(target))
			return op
		}
		return fail(op, types.ErrDuplicateTarget{Path: target})
	} else if !errors.Is(err, os.ErrNotExist) {
		return fail(op, types.ErrIO{Op: "stat", Path: target, Err: err})
	}

	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return r.move(op)
	} else if err != nil {
		return fail(op, types.ErrIO{Op: "stat", Path: dir, Err: err})
	}

	existing, found, err := r.findSameEdition(dir, desc, op.SourcePath)
	if err != nil {
		return fail(op, err)
	}
	if !found {
		return r.move(op)
	}

	diff := rank(desc.Resolution, true) - rank(existing.Resolution, false)
	switch {
	case diff < 0:
		return fail(op, types.ErrLowerResolution{Existing: existing.SourcePath})
	case diff == 0 && !r.replaceSameRes:
		return fail(op, types.ErrSameResolution{Existing: existing.SourcePath})
	}

	if err := r.ops.remove(existing.SourcePath); err != nil {
		return fail(op, err)
	}
	r.emit(types.EventInfo, "Replaced %s", filepath.Base(existing.SourcePath))

	op.ReplacedPath = existing.SourcePath
	op = r.move(op)
	if op.Status == types.StatusSuccess {
		op.Action = types.ActionReplace
	}
	return op
}

func (r *Renamer) move(op types.Operation) types.Operation {
	if err := r.ops.move(op.SourcePath, op.TargetPath); err != nil {
		return fail(op, err)
	}
	op.Action = types.ActionMove
	op.Status = types.StatusSuccess
	op.Message = fmt.Sprintf("Moved %s to %s", op.SourcePath, op.TargetPath)
	return op
}

// findSameEdition returns the first file in dir describing the same event
// and edition as desc, ignoring source itself
func (r *Renamer) findSameEdition(dir string, desc types.Descriptor, source string) (types.Descriptor, bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return types.Descriptor{}, false, types.ErrIO{Op: "read", Path: dir, Err: err}
	}

	needle := strings.ToLower(desc.EventNumber)
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !r.isVideo(entry.Name()) {
			continue
		}
		if !strings.Contains(strings.ToLower(matcher.Normalize(entry.Name())), needle) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if sameFile(source, path) {
			continue
		}

		existing, _ := r.matcher.Extract(path, false)
		if existing.EventNumber == desc.EventNumber && existing.Edition == desc.Edition {
			return existing, true, nil
		}
	}
	return types.Descriptor{}, false, nil
}

func (r *Renamer) isVideo(name string) bool {
	return r.formats[strings.ToLower(filepath.Ext(name))]
}

// rank orders resolutions for conflict resolution. A missing resolution
// ranks highest on the incoming side and lowest on the existing side.
func rank(resolution string, incoming bool) int {
	n, err := strconv.Atoi(strings.TrimRight(resolution, "pPiI"))
	if resolution == "" || err != nil {
		if incoming {
			return math.MaxInt
		}
		return 0
	}
	return n
}

// Report emits the outcome of op as a success or error event carrying
// the operation. Skipped operations are not reported.
func (r *Renamer) Report(op types.Operation) {
	switch op.Status {
	case types.StatusSuccess:
		r.events(types.Event{Type: types.EventSuccess, Message: op.Message, Data: op})
	case types.StatusFailed:
		r.events(types.Event{Type: types.EventError, Message: op.Message, Data: op})
	}
}

// ErrorCount returns the number of failed operations
func ErrorCount(ops []types.Operation) int {
	n := 0
	for i := range ops {
		if ops[i].Failed() {
			n++
		}
	}
	return n
}

func fail(op types.Operation, err error) types.Operation {
	op.Status = types.StatusFailed
	op.Err = err
	op.Message = err.Error()
	return op
}

func sameFile(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}
