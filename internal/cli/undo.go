package cli

import (
	"errors"

	"github.com/dinghy6/sabnzbd-scripts/internal/api"
	"github.com/dinghy6/sabnzbd-scripts/internal/types"
	"github.com/spf13/cobra"
)

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Move the files of the last run back",
	Long: `undo moves every file placed by the most recent run back to where it came
from. Files deleted because a higher resolution replaced them cannot be
restored.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ops, err := api.Undo(cmd.Context(), commonOptions()...)
		var empty types.ErrJournalEmpty
		if errors.As(err, &empty) {
			logger.Warn("Nothing to undo")
			return nil
		}
		if err != nil {
			return err
		}

		if api.ErrorCount(ops) > 0 {
			logger.Error("Some files could not be restored", "failed", api.ErrorCount(ops))
			return errReported
		}
		logger.Info("Files restored", "count", len(ops))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(undoCmd)
}
