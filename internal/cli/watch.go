package cli

import (
	"context"

	"github.com/dinghy6/sabnzbd-scripts/internal/api"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Place new jobs as they complete in a download folder",
	Long: `watch keeps running and places every job that appears in <dir> once it has
stopped changing for the configured settle time. Stop it with ctrl+c.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd.Context(), args[0])
	},
}

func init() {
	RootCmd.AddCommand(watchCmd)
}

func runWatch(ctx context.Context, dir string) error {
	if err := api.Watch(ctx, dir, commonOptions()...); err != nil {
		return err
	}
	logger.Info("Stopped watching", "dir", dir)
	return nil
}
