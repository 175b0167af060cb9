package ui

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/dinghy6/sabnzbd-scripts/internal/config"
	"github.com/dinghy6/sabnzbd-scripts/internal/formatter"
)

// layouts are the file name orders offered by the wizard
var layouts = [][]string{
	{"event_number", "fighter_names", "edition", "resolution"},
	{"event_number", "edition", "resolution"},
	{"event_number", "edition", "fighter_names", "resolution"},
	{"event_number", "fighter_names", "edition"},
}

var bracketOptions = []huh.Option[string]{
	huh.NewOption("none", "none"),
	huh.NewOption("[square]", "square"),
	huh.NewOption("{curly}", "curly"),
	huh.NewOption("(round)", "round"),
}

// RunInitWizard walks through the main settings and edits cfg in place.
// destination → layout → matching → permissions → preview. It returns
// false when the user declines to write the result.
func RunInitWizard(w io.Writer, cfg *config.Config, dryRun bool) (bool, error) {
	step := 0

	layout := layoutKey(cfg.Format.Order)
	editionBracket := orDefault(cfg.Format.Brackets["edition"], "none")
	resolutionBracket := orDefault(cfg.Format.Brackets["resolution"], "none")
	fighterBracket := orDefault(cfg.Format.Brackets["fighter_names"], "none")

	for {
		ClearAndPrintBanner(w, dryRun)

		var err error
		switch step {
		case 0:
			err = RunForm(huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Destination").
						Description("\nLibrary folder that holds one folder per event\n").
						Value(&cfg.Destination).
						Validate(required),
					huh.NewInput().
						Title("Promotion").
						Description("\nToken that starts every event number\n").
						Value(&cfg.Promotion).
						Validate(required),
					huh.NewInput().
						Title("Subfolder").
						Description("\nOptional. Editions other than the main event go here\n").
						Value(&cfg.Subfolder).
						Validate(optionalName),
				),
			))

		case 1:
			choices := layouts
			if !containsLayout(layouts, layout) {
				choices = append([][]string{parseLayout(layout)}, layouts...)
			}
			options := make([]huh.Option[string], 0, len(choices))
			for _, l := range choices {
				options = append(options, huh.NewOption(strings.Join(l, " · "), layoutKey(l)))
			}
			err = RunForm(huh.NewForm(
				huh.NewGroup(
					huh.NewSelect[string]().
						Title("File name layout").
						Options(options...).
						Value(&layout),
					huh.NewSelect[string]().
						Title("Fighter names brackets").
						Options(bracketOptions...).
						Value(&fighterBracket),
					huh.NewSelect[string]().
						Title("Edition brackets").
						Options(bracketOptions...).
						Value(&editionBracket),
					huh.NewSelect[string]().
						Title("Resolution brackets").
						Options(bracketOptions...).
						Value(&resolutionBracket),
				),
			))

		case 2:
			err = RunForm(huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().
						Title("Strict matching").
						Description("Fail releases without an event number instead of skipping them").
						Value(&cfg.StrictMatching),
					huh.NewInput().
						Title("Strict category").
						Description("\nSABnzbd category that always uses strict matching\n").
						Value(&cfg.StrictCategory),
					huh.NewConfirm().
						Title("Replace same resolution").
						Description("Replace an existing file of the same edition and resolution").
						Value(&cfg.ReplaceSameResolution),
				),
				huh.NewGroup(
					huh.NewConfirm().
						Title("Tag placed files").
						Description("Write the event title with mkvpropedit or AtomicParsley").
						Value(&cfg.Tagging.Enabled),
					huh.NewConfirm().
						Title("Keep a journal").
						Description("Record placements so the last run can be undone").
						Value(&cfg.Journal.Enabled),
				),
			))

		case 3:
			err = RunForm(huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("File mode").
						Description("\nOptional octal mode for placed files, e.g. 0644\n").
						Value(&cfg.Permissions.FileMode).
						Validate(validateMode),
					huh.NewInput().
						Title("Folder mode").
						Description("\nOptional octal mode for created folders, e.g. 0755\n").
						Value(&cfg.Permissions.DirMode).
						Validate(validateMode),
				),
			))

		case 4:
			cfg.Format.Order = parseLayout(layout)
			cfg.Format.Brackets = map[string]string{}
			for field, b := range map[string]string{
				"fighter_names": fighterBracket,
				"edition":       editionBracket,
				"resolution":    resolutionBracket,
			} {
				if b != "none" {
					cfg.Format.Brackets[field] = b
				}
			}

			if verr := cfg.Validate(); verr != nil {
				err = RunForm(huh.NewForm(huh.NewGroup(
					huh.NewNote().
						Title("Invalid configuration").
						Description(fmt.Sprintf("\n%v\n", verr)),
				)))
				if err == nil {
					step = 0
					continue
				}
				break
			}

			confirmed, perr := showPreviewAndConfirm(cfg)
			if perr == nil {
				return confirmed, nil
			}
			err = perr
		}

		if err != nil {
			if errors.Is(err, ErrUserBack) {
				if step == 0 {
					return false, ErrCancelled
				}
				step--
				continue
			}
			return false, err
		}
		step++
	}
}

func layoutKey(order []string) string {
	return strings.Join(order, ",")
}

func containsLayout(all [][]string, key string) bool {
	for _, l := range all {
		if layoutKey(l) == key {
			return true
		}
	}
	return false
}

func parseLayout(key string) []string {
	return strings.Split(key, ",")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

func optionalName(s string) error {
	if s == "" {
		return nil
	}
	return formatter.ValidName(s)
}

func validateMode(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.ParseUint(s, 8, 32)
	if err != nil || n > 0o777 {
		return errors.New("must be an octal mode like 0644")
	}
	return nil
}
