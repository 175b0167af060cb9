package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/dinghy6/sabnzbd-scripts/internal/api"
	"github.com/dinghy6/sabnzbd-scripts/internal/config"
	"github.com/dinghy6/sabnzbd-scripts/internal/ui"
	"github.com/spf13/cobra"
)

var (
	flagInitForce          bool
	flagInitNonInteractive bool
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a config file",
	Long: `init writes a config file to [path], or to the per-user location when no
path is given. On a terminal a short wizard asks for the main settings;
otherwise the defaults and the global flags are written.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		return runInit(path)
	},
}

func init() {
	RootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&flagInitForce, "force", "f", false, "Overwrite an existing config")
	initCmd.Flags().BoolVarP(&flagInitNonInteractive, "yes", "y", false, "Skip the wizard and write the defaults")
}

func runInit(path string) error {
	if flagInitNonInteractive || !isTTY() {
		return runInitNonInteractive(path)
	}

	target := path
	if target == "" {
		target = config.DefaultPath()
	}

	force := flagInitForce
	if _, err := os.Stat(target); err == nil && !force {
		overwrite := false
		err := ui.RunForm(huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Config already exists").
					Description(fmt.Sprintf("Overwrite %s?", ui.StylePath.Render(target))).
					Value(&overwrite),
			),
		))
		if err != nil || !overwrite {
			logger.Warn(ui.StyleDim.Render("Init cancelled"))
			return nil
		}
		force = true
	}

	// start from whatever is loaded so re-running init edits the current setup
	cfg := *settings
	if flagDest != "" {
		cfg.Destination = flagDest
	}

	confirmed, err := ui.RunInitWizard(os.Stdout, &cfg, flagDryRun)
	if errors.Is(err, ui.ErrCancelled) || (err == nil && !confirmed) {
		fmt.Println()
		logger.Info(ui.StyleDim.Render("Init cancelled"))
		return nil
	}
	if err != nil {
		return fmt.Errorf("init failed: %w", err)
	}

	if flagDryRun {
		logger.Info(ui.StyleFlag.Render("[DRY RUN]") + " Config not written")
		return nil
	}

	opts := []api.Option{api.WithSettings(&cfg)}
	if force {
		opts = append(opts, api.WithForce())
	}
	written, err := api.Init(path, opts...)
	if err != nil {
		return err
	}
	logger.Success(fmt.Sprintf("%s %s", ui.StyleHeader.Render("Configuration saved to:"), ui.StylePath.Render(written)))
	return nil
}

// runInitNonInteractive writes the defaults with the global flags applied
func runInitNonInteractive(path string) error {
	opts := []api.Option{api.WithSettings(config.Default())}
	if flagDest != "" {
		opts = append(opts, api.WithDestination(flagDest))
	}
	if flagStrict {
		opts = append(opts, api.WithStrict())
	}
	if flagReplaceSameRes {
		opts = append(opts, api.WithReplaceSameRes())
	}
	if flagTag {
		opts = append(opts, api.WithTagging())
	}
	if flagNoJournal {
		opts = append(opts, api.WithNoJournal())
	}
	if flagInitForce {
		opts = append(opts, api.WithForce())
	}

	if flagDryRun {
		cfg := config.Default()
		if flagDest != "" {
			cfg.Destination = flagDest
		}
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		fmt.Println(ui.HighlightYAML(string(data)))
		return nil
	}

	written, err := api.Init(path, opts...)
	if err != nil {
		return fmt.Errorf("failed to init config: %w", err)
	}
	logger.Success(fmt.Sprintf("%s: %s", ui.StyleHeader.Render("Created config"), ui.StylePath.Render(written)))
	return nil
}
