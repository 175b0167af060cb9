package renamer

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/dinghy6/sabnzbd-scripts/internal/matcher"
	"github.com/dinghy6/sabnzbd-scripts/internal/types"
)

// WalkOptions controls cleanup during a bulk walk
type WalkOptions struct {
	// RemoveEmpty removes folders left empty after placement
	RemoveEmpty bool
	// Force removes a fully placed folder even if other files remain
	Force bool
}

// Walk places every video file under root. Subfolders are entered only
// inside an event tree or when their own name carries an event number,
// and symlinked folders are never followed. The root itself is never
// removed. A non-nil error means the walk was cancelled.
func (r *Renamer) Walk(ctx context.Context, root string, opts WalkOptions) ([]types.Operation, error) {
	w := &walker{r: r, opts: opts}
	w.walk(ctx, root, false, true)
	return w.ops, ctx.Err()
}

type walker struct {
	r    *Renamer
	opts WalkOptions
	ops  []types.Operation
}

// walk processes dir and reports whether anything under it failed
func (w *walker) walk(ctx context.Context, dir string, inEvent, isRoot bool) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.record(fail(types.Operation{SourcePath: dir, Action: types.ActionNone}, types.ErrIO{Op: "read", Path: dir, Err: err}))
		return true
	}

	start := len(w.ops)
	failed := false

	for _, entry := range entries {
		if ctx.Err() != nil {
			return true
		}
		if !entry.Type().IsRegular() || !w.r.isVideo(entry.Name()) {
			continue
		}

		op := w.r.Place(ctx, filepath.Join(dir, entry.Name()))
		w.record(op)
		if op.Failed() {
			failed = true
		}
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return true
		}
		if !entry.IsDir() {
			continue
		}
		if !inEvent && w.r.matcher.EventNumber(matcher.Normalize(entry.Name())) == "" {
			continue
		}
		if w.walk(ctx, filepath.Join(dir, entry.Name()), true, false) {
			failed = true
		}
	}

	if isRoot || failed || !w.opts.RemoveEmpty {
		return failed
	}
	w.cleanup(dir, w.ops[start:])
	return false
}

// cleanup removes dir when it is empty. With Force it is also removed when
// files were moved out of it and nothing was placed inside it.
func (w *walker) cleanup(dir string, ops []types.Operation) {
	remaining, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	movedOut := 0
	for _, op := range ops {
		if op.Status != types.StatusSuccess {
			continue
		}
		if within(dir, op.TargetPath) {
			return
		}
		if op.Action != types.ActionNone {
			movedOut++
		}
	}

	switch {
	case len(remaining) == 0:
		if err := w.r.ops.remove(dir); err != nil {
			w.r.emit(types.EventWarning, "Failed to remove empty folder %s: %v", dir, err)
			return
		}
		w.r.emit(types.EventInfo, "Removed empty folder %s", dir)
	case w.opts.Force && movedOut > 0:
		if err := w.r.ops.removeAll(dir); err != nil {
			w.r.emit(types.EventWarning, "Failed to remove folder %s: %v", dir, err)
			return
		}
		w.r.emit(types.EventInfo, "Removed folder %s and %d leftover entries", dir, len(remaining))
	}
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (w *walker) record(op types.Operation) {
	w.ops = append(w.ops, op)
	w.r.Report(op)
}
