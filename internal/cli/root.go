package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/dinghy6/sabnzbd-scripts/internal/api"
	"github.com/dinghy6/sabnzbd-scripts/internal/config"
	applog "github.com/dinghy6/sabnzbd-scripts/internal/logger"
	"github.com/dinghy6/sabnzbd-scripts/internal/types"
	"github.com/dinghy6/sabnzbd-scripts/internal/ui"
	"github.com/spf13/cobra"
)

var (
	flagConfig         string
	flagDest           string
	flagCategory       string
	flagStrict         bool
	flagReplaceSameRes bool
	flagDryRun         bool
	flagTag            bool
	flagNoJournal      bool
	flagVerbose        bool
	flagQuiet          bool

	settings *config.Config
	logger   = applog.Discard()
)

// errReported marks a failure that has already been logged
var errReported = errors.New("failed")

var RootCmd = &cobra.Command{
	Use:   "ufcsort <path>",
	Short: "Sort UFC releases into a media library",
	Long: `ufcsort places a completed download into the library.

<path> is a job folder (its largest video is used) or a video file. When run
by SABnzbd as a post-processing script, the job folder and category are read
from SAB_COMPLETE_DIR and SAB_CAT instead.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	Args: func(cmd *cobra.Command, args []string) error {
		if sabMode() {
			return nil
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlace(cmd.Context(), args)
	},
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer func() { logger.Close() }()

	if sabMode() {
		// pushes the result below the fold of SABnzbd's "more" button
		fmt.Print("\n\n\n")
	} else {
		fmt.Println()
	}

	err := RootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	if !errors.Is(err, errReported) {
		logger.Error(err)
	}
	return 1
}

func init() {
	pf := RootCmd.PersistentFlags()
	pf.StringVarP(&flagConfig, "config", "C", "", "Config file (default: $XDG_CONFIG_HOME/ufcsort/config.yml)")
	pf.StringVarP(&flagDest, "dest", "D", "", "Library folder to place releases in")
	pf.StringVarP(&flagCategory, "category", "c", "", "Download category (the strict category forces strict matching)")
	pf.BoolVarP(&flagStrict, "strict", "s", false, "Fail releases without an event number")
	pf.BoolVarP(&flagReplaceSameRes, "replace-same-res", "r", false, "Replace existing files of the same resolution")
	pf.BoolVarP(&flagDryRun, "dry-run", "d", false, "Preview changes without applying")
	pf.BoolVarP(&flagTag, "tag", "t", false, "Embed metadata with mkvpropedit or AtomicParsley")
	pf.BoolVar(&flagNoJournal, "no-journal", false, "Do not record placements for undo")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Verbose output")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress output except errors")

	colorizeHelp(RootCmd)
}

func sabMode() bool {
	return os.Getenv("SAB_VERSION") != ""
}

// setup loads the configuration and builds the logger. init and version
// work without a valid configuration.
func setup(cmd *cobra.Command) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		if cmd.Name() != "init" && cmd.Name() != "version" {
			return err
		}
		cfg = config.Default()
	}
	settings = cfg

	level := cfg.Logging.Level
	switch {
	case flagQuiet:
		level = "error"
	case flagVerbose:
		level = "debug"
	}

	l, err := applog.New(os.Stdout, applog.Config{
		Level:      level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		return err
	}
	logger = l
	api.SetDefaultEventHandler(logger.Handle)

	if cfg.Path() != "" {
		logger.Debug("Loaded config", "path", cfg.Path())
	}
	return nil
}

// commonOptions turns the global flags into api options
func commonOptions() []api.Option {
	opts := []api.Option{api.WithSettings(settings)}

	if flagDest != "" {
		opts = append(opts, api.WithDestination(flagDest))
	}
	if flagCategory != "" {
		opts = append(opts, api.WithCategory(flagCategory))
	}
	if flagStrict {
		opts = append(opts, api.WithStrict())
	}
	if flagReplaceSameRes {
		opts = append(opts, api.WithReplaceSameRes())
	}
	if flagDryRun {
		opts = append(opts, api.WithDryRun())
	}
	if flagTag {
		opts = append(opts, api.WithTagging())
	}
	if flagNoJournal {
		opts = append(opts, api.WithNoJournal())
	}
	return opts
}

// jobFromArgs returns the job path and category, preferring the SABnzbd environment
func jobFromArgs(args []string) (path, category string, err error) {
	if sabMode() {
		path = os.Getenv("SAB_COMPLETE_DIR")
		category = os.Getenv("SAB_CAT")
		if path == "" {
			return "", "", errors.New("SAB_COMPLETE_DIR is not set")
		}
		return path, category, nil
	}
	return args[0], flagCategory, nil
}

func runPlace(ctx context.Context, args []string) error {
	path, category, err := jobFromArgs(args)
	if err != nil {
		return err
	}

	opts := commonOptions()
	if category != "" {
		opts = append(opts, api.WithCategory(category))
	}

	op, err := api.Place(ctx, path, opts...)
	if err != nil {
		return err
	}

	switch {
	case op.Failed():
		logger.Error(op.Message)
		return errReported
	case op.Status == types.StatusSkipped:
		logger.Debug("No event number found, nothing to do", "path", op.SourcePath)
	default:
		logger.Success(resultMessage(op))
	}
	return nil
}

func resultMessage(op types.Operation) string {
	if op.DryRun {
		return ui.StyleFlag.Render("[DRY RUN] ") + op.Message
	}
	return op.Message
}

// printSummary logs operation counts and reports whether any failed
func printSummary(ops []types.Operation) bool {
	var success, skipped, failed int
	for _, op := range ops {
		switch op.Status {
		case types.StatusSuccess:
			success++
		case types.StatusSkipped:
			skipped++
		case types.StatusFailed:
			failed++
		}
	}

	logger.Info("Summary",
		"placed", lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Render(fmt.Sprint(success)),
		"skipped", lipgloss.NewStyle().Foreground(lipgloss.Color("192")).Render(fmt.Sprint(skipped)),
		"failed", lipgloss.NewStyle().Foreground(lipgloss.Color("204")).Render(fmt.Sprint(failed)),
	)
	return failed > 0
}
