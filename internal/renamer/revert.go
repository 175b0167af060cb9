package renamer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dinghy6/sabnzbd-scripts/internal/types"
)

// Revert moves a journaled placement back to where it came from. Files
// deleted by a replacement are gone and only reported.
func (r *Renamer) Revert(ctx context.Context, entry types.JournalEntry) types.Operation {
	op := types.Operation{
		SourcePath: entry.TargetPath,
		TargetPath: entry.SourcePath,
		Action:     types.ActionNone,
		DryRun:     r.ops.dryRun,
	}
	if err := ctx.Err(); err != nil {
		return fail(op, err)
	}

	if _, err := os.Stat(entry.TargetPath); err != nil {
		return fail(op, types.ErrIO{Op: "stat", Path: entry.TargetPath, Err: err})
	}
	if _, err := os.Stat(entry.SourcePath); err == nil {
		return fail(op, types.ErrDuplicateTarget{Path: entry.SourcePath})
	} else if !errors.Is(err, os.ErrNotExist) {
		return fail(op, types.ErrIO{Op: "stat", Path: entry.SourcePath, Err: err})
	}

	unlock := r.locks.lock(filepath.Dir(entry.TargetPath))
	defer unlock()

	if err := r.ops.move(entry.TargetPath, entry.SourcePath); err != nil {
		return fail(op, err)
	}
	op.Action = types.ActionMove
	op.Status = types.StatusSuccess
	op.Message = fmt.Sprintf("Restored %s to %s", entry.TargetPath, entry.SourcePath)

	if entry.ReplacedPath != "" {
		r.emit(types.EventWarning, "%s was replaced and cannot be restored", filepath.Base(entry.ReplacedPath))
	}
	return op
}
