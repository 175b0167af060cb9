package cli

import (
	"fmt"

	"github.com/dinghy6/sabnzbd-scripts/internal/api"
	"github.com/dinghy6/sabnzbd-scripts/internal/types"
	"github.com/dinghy6/sabnzbd-scripts/internal/ui"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded placements",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := api.History(cmd.Context(), commonOptions()...)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			logger.Info("No placements recorded")
			return nil
		}
		printHistory(entries)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(historyCmd)
}

func printHistory(entries []types.JournalEntry) {
	run := ""
	for _, e := range entries {
		if e.RunID != run {
			if run != "" {
				fmt.Println()
			}
			run = e.RunID
			fmt.Printf("%s %s\n", ui.StyleHeader.Render(e.Timestamp.Format("2006-01-02 15:04")), ui.StyleDim.Render(shortID(run)))
		}

		action := ui.StyleCommand.Render(fmt.Sprintf("%-7s", e.Action))
		fmt.Printf("  %s %s %s %s\n", action, ui.StyleDim.Render(e.SourcePath), ui.StyleDim.Render("→"), ui.StylePath.Render(e.TargetPath))
		if e.ReplacedPath != "" {
			fmt.Printf("  %s %s\n", ui.StyleFlag.Render(fmt.Sprintf("%-7s", "deleted")), ui.StyleDim.Render(e.ReplacedPath))
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
