package cli

import (
	"fmt"

	"github.com/dinghy6/sabnzbd-scripts/internal/api"
	"github.com/dinghy6/sabnzbd-scripts/internal/types"
	"github.com/dinghy6/sabnzbd-scripts/internal/ui"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse <name>...",
	Short: "Show how release names are parsed and where they would go",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runParse(args)
	},
}

func init() {
	RootCmd.AddCommand(parseCmd)
}

func runParse(names []string) error {
	opts := commonOptions()
	failed := false

	for i, name := range names {
		if i > 0 {
			fmt.Println()
		}
		desc, target, err := api.Parse(name, opts...)
		if err != nil {
			logger.Error(err)
			failed = true
			continue
		}
		printDescriptor(name, desc, target)
	}

	if failed {
		return errReported
	}
	return nil
}

func printDescriptor(name string, desc types.Descriptor, target string) {
	fmt.Println(ui.StyleHeader.Render(name))
	if desc.EventNumber == "" {
		fmt.Println(ui.StyleDim.Render("  no event number"))
		return
	}

	row := func(key, value string) {
		if value == "" {
			value = ui.StyleDim.Render("-")
		} else {
			value = ui.StylePattern.Render(value)
		}
		fmt.Printf("  %s %s\n", ui.StyleCommand.Render(fmt.Sprintf("%-11s", key)), value)
	}
	row("event", desc.EventNumber)
	row("fighters", desc.FighterNames)
	row("edition", desc.Edition.String())
	row("resolution", desc.Resolution)
	fmt.Printf("  %s %s\n", ui.StyleCommand.Render(fmt.Sprintf("%-11s", "target")), ui.StylePath.Render(target))
}
