package cli

import (
	"context"
	"os"

	"github.com/dinghy6/sabnzbd-scripts/internal/api"
	"github.com/dinghy6/sabnzbd-scripts/internal/types"
	"github.com/dinghy6/sabnzbd-scripts/internal/ui"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	flagRemoveEmpty bool
	flagForce       bool
)

var organizeCmd = &cobra.Command{
	Use:   "organize <dir>",
	Short: "Place every UFC release found in a folder",
	Long: `organize walks <dir> and places every video it finds. Subfolders are only
entered when their name contains an event number, or when they sit inside
such a folder.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOrganize(cmd.Context(), args[0])
	},
}

func init() {
	RootCmd.AddCommand(organizeCmd)
	organizeCmd.Flags().BoolVarP(&flagRemoveEmpty, "remove-empty", "e", false, "Remove job folders left empty")
	organizeCmd.Flags().BoolVarP(&flagForce, "force", "f", false, "With --remove-empty, also remove placed folders with leftover files")
}

func isTTY() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func runOrganize(ctx context.Context, dir string) error {
	opts := commonOptions()
	if flagRemoveEmpty {
		opts = append(opts, api.WithRemoveEmpty())
	}
	if flagForce {
		opts = append(opts, api.WithForce())
	}

	var ops []types.Operation
	var err error
	if isTTY() && !flagQuiet && !flagVerbose {
		ops, err = organizeWithProgress(ctx, dir, opts)
	} else {
		ops, err = api.Organize(ctx, dir, opts...)
	}
	if err != nil {
		return err
	}

	if printSummary(ops) {
		return errReported
	}
	return nil
}

// organizeWithProgress streams results into the progress view. Warnings
// are held back and logged once the view has closed.
func organizeWithProgress(ctx context.Context, dir string, opts []api.Option) ([]types.Operation, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan types.Operation)
	var warnings []types.Event

	handler := func(e types.Event) {
		switch e.Type {
		case types.EventSuccess, types.EventError:
			if op, ok := e.Data.(types.Operation); ok {
				ch <- op
				return
			}
			warnings = append(warnings, e)
		case types.EventWarning:
			warnings = append(warnings, e)
		}
	}

	var ops []types.Operation
	var walkErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer close(ch)
		ops, walkErr = api.Organize(ctx, dir, append(opts, api.WithEventHandler(handler))...)
	}()

	_, uiErr := ui.RunProgress(ch, cancel)
	if uiErr != nil {
		// the view is gone; keep the walk from blocking on it
		cancel()
		for range ch {
		}
	}
	<-done

	for _, w := range warnings {
		logger.Handle(w)
	}
	if uiErr != nil {
		return ops, uiErr
	}
	return ops, walkErr
}
