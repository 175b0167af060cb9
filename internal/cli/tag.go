package cli

import (
	"fmt"

	"github.com/dinghy6/sabnzbd-scripts/internal/api"
	"github.com/spf13/cobra"
)

var tagCmd = &cobra.Command{
	Use:   "tag <path>",
	Short: "Embed metadata into already placed files",
	Long: `tag parses every video under <path> and embeds the event title with
mkvpropedit (MKV) or AtomicParsley (MP4/M4V) without moving anything.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := api.Tag(cmd.Context(), args[0], commonOptions()...)
		if err != nil {
			return fmt.Errorf("tagging failed: %w", err)
		}
		logger.Info("Tagging finished", "tagged", n)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(tagCmd)
}
