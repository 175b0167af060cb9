package ui

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/dinghy6/sabnzbd-scripts/internal/config"
	"github.com/dinghy6/sabnzbd-scripts/internal/formatter"
	"github.com/dinghy6/sabnzbd-scripts/internal/types"
)

// sampleDescriptor is the release shown in layout previews
var sampleDescriptor = types.Descriptor{
	EventNumber:  "UFC 300",
	FighterNames: "Pereira vs Hill",
	Edition:      types.EditionPrelims,
	Resolution:   "1080p",
}

// PlacementPreview renders where a sample release would be placed.
func PlacementPreview(cfg *config.Config) (string, error) {
	tmpl, err := cfg.Template()
	if err != nil {
		return "", err
	}
	f, err := formatter.New(cfg.Destination, cfg.Subfolder, tmpl)
	if err != nil {
		return "", err
	}

	desc := sampleDescriptor
	desc.EventNumber = cfg.Promotion + " 300"
	return f.TargetPath(desc, ".mkv")
}

// showPreviewAndConfirm shows the sample placement and the YAML, then asks
// for confirmation.
func showPreviewAndConfirm(cfg *config.Config) (bool, error) {
	data, err := cfg.Marshal()
	if err != nil {
		return false, fmt.Errorf("failed to preview config: %w", err)
	}

	sample, err := PlacementPreview(cfg)
	if err != nil {
		return false, err
	}

	confirmed := true
	err = RunForm(huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Configuration Preview").
				Description(fmt.Sprintf("\n%s\n%s\n\n%s\n\n",
					StyleDim.Render("A prelims release of event 300 would be placed at"),
					StylePath.Render(filepath.ToSlash(sample)),
					HighlightYAML(string(data)))),

			huh.NewConfirm().
				Title("Write configuration?").
				Value(&confirmed),
		),
	))
	if err != nil {
		return false, err
	}

	return confirmed, nil
}
