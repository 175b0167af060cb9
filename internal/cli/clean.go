package cli

import (
	"fmt"

	"github.com/dinghy6/sabnzbd-scripts/internal/api"
	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Forget every recorded placement",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := commonOptions()
		path, err := api.JournalPath(opts...)
		if err != nil {
			return err
		}
		if err := api.Clean(cmd.Context(), opts...); err != nil {
			return fmt.Errorf("failed to clean journal: %w", err)
		}
		logger.Info("Removed journal", "path", path)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(cleanCmd)
}
