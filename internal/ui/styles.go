package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/dinghy6/sabnzbd-scripts/internal/types"
)

var (
	// Adaptive Color definitions
	colorHeader = lipgloss.CompleteAdaptiveColor{
		Dark:  lipgloss.CompleteColor{TrueColor: "#00af00", ANSI256: "34", ANSI: "2"},
		Light: lipgloss.CompleteColor{TrueColor: "#008700", ANSI256: "28", ANSI: "2"},
	}
	colorCommand = lipgloss.CompleteAdaptiveColor{
		Dark:  lipgloss.CompleteColor{TrueColor: "#5fffff", ANSI256: "86", ANSI: "6"},
		Light: lipgloss.CompleteColor{TrueColor: "#008787", ANSI256: "30", ANSI: "6"},
	}
	colorPath = lipgloss.CompleteAdaptiveColor{
		Dark:  lipgloss.CompleteColor{TrueColor: "#5f5fff", ANSI256: "63", ANSI: "4"},
		Light: lipgloss.CompleteColor{TrueColor: "#0000af", ANSI256: "19", ANSI: "4"},
	}
	colorPattern = lipgloss.CompleteAdaptiveColor{
		Dark:  lipgloss.CompleteColor{TrueColor: "#d7ff87", ANSI256: "192", ANSI: "11"},
		Light: lipgloss.CompleteColor{TrueColor: "#5f8700", ANSI256: "64", ANSI: "10"},
	}
	colorDim = lipgloss.CompleteAdaptiveColor{
		Dark:  lipgloss.CompleteColor{TrueColor: "#9e9e9e", ANSI256: "247", ANSI: "8"},
		Light: lipgloss.CompleteColor{TrueColor: "#444444", ANSI256: "238", ANSI: "0"},
	}
	colorFlag = lipgloss.CompleteAdaptiveColor{
		Dark:  lipgloss.CompleteColor{TrueColor: "#ff5faf", ANSI256: "204", ANSI: "13"},
		Light: lipgloss.CompleteColor{TrueColor: "#af005f", ANSI256: "125", ANSI: "5"},
	}

	// Exported Styles for CLI and TUI
	StyleHeader  = lipgloss.NewStyle().Bold(true).Foreground(colorHeader)
	StyleCommand = lipgloss.NewStyle().Bold(true).Foreground(colorCommand)
	StylePath    = lipgloss.NewStyle().Foreground(colorPath)
	StylePattern = lipgloss.NewStyle().Foreground(colorPattern)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleFlag    = lipgloss.NewStyle().Italic(true).Foreground(colorFlag)

	// StyleBanner is the wizard title banner
	StyleBanner = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCommand).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorHeader).
			Padding(0, 4).
			Align(lipgloss.Center)
)

// Theme returns the theme for huh forms.
func Theme() *huh.Theme {
	return huh.ThemeCatppuccin()
}

// KeyMap returns the form key map with esc bound to going back.
func KeyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()

	// Both quit; a bubbletea filter tells them apart
	km.Quit.SetKeys("esc", "ctrl+c")
	km.Quit.SetHelp("ctrl+c", "quit")

	km.Select.Submit.SetHelp("enter", "choose • esc: back • ctrl+c: quit")
	km.MultiSelect.Submit.SetHelp("enter", "confirm • esc: back • ctrl+c: quit")
	km.Input.Next.SetHelp("enter", "next • esc: back • ctrl+c: quit")
	km.Input.Submit.SetHelp("enter", "submit • esc: back • ctrl+c: quit")
	km.Confirm.Submit.SetHelp("enter", "confirm • esc: back • ctrl+c: quit")
	km.Note.Next.SetHelp("enter", "next • esc: back • ctrl+c: quit")
	km.Note.Submit.SetHelp("enter", "submit • esc: back • ctrl+c: quit")

	return km
}

var (
	// ErrUserBack is returned when the user asks for the previous step.
	ErrUserBack = errors.New("user navigated back")

	// ErrCancelled is returned when the user quits a form.
	ErrCancelled = errors.New("cancelled")
)

// interceptedKey tracks the last key that aborted a form (esc vs ctrl+c).
var interceptedKey string

func formFilter(m tea.Model, msg tea.Msg) tea.Msg {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.Type {
		case tea.KeyEsc:
			interceptedKey = "esc"
		case tea.KeyCtrlC:
			interceptedKey = "ctrl+c"
		}
	}
	return msg
}

// RunForm runs a huh form with the esc/ctrl+c filter. An abort comes
// back as ErrUserBack (esc) or ErrCancelled (ctrl+c).
func RunForm(f *huh.Form) error {
	interceptedKey = ""
	err := f.WithTheme(Theme()).
		WithKeyMap(KeyMap()).
		WithProgramOptions(tea.WithFilter(formFilter)).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		if interceptedKey == "ctrl+c" {
			return ErrCancelled
		}
		return ErrUserBack
	}
	return err
}

// ClearAndPrintBanner clears the terminal and prints the header.
func ClearAndPrintBanner(w io.Writer, dryRun bool) {
	fmt.Fprint(w, "\033[H\033[2J")
	fmt.Fprintln(w)
	fmt.Fprintln(w, StyleBanner.Render("ufcsort"))
	fmt.Fprintln(w)
	if dryRun {
		fmt.Fprintln(w, StyleFlag.Render("  [DRY RUN]"))
		fmt.Fprintln(w)
	}
}

// FormatOperation renders one placement result as a single styled line.
func FormatOperation(op types.Operation) string {
	var label string
	switch {
	case op.Failed():
		label = lipgloss.NewStyle().Bold(true).Foreground(colorFlag).Render("FAILED ")
	case op.Status == types.StatusSkipped:
		label = StyleDim.Render("SKIPPED")
	case op.Action == types.ActionReplace:
		label = StylePattern.Bold(true).Render("REPLACE")
	case op.Action == types.ActionNone:
		label = StyleDim.Render("IN PLACE")
	default:
		label = StyleHeader.Render("MOVED  ")
	}

	src := StyleDim.Render(op.SourcePath)
	switch {
	case op.Failed():
		return fmt.Sprintf("%s %s %s", label, src, op.Message)
	case op.TargetPath == "":
		return fmt.Sprintf("%s %s", label, src)
	}
	return fmt.Sprintf("%s %s %s %s", label, src, StyleDim.Render("→"), StylePath.Render(op.TargetPath))
}

// HighlightYAML applies simple syntax highlighting to a YAML string for TUI display.
func HighlightYAML(input string) string {
	keyStyle := lipgloss.NewStyle().Foreground(colorCommand).Bold(true)
	valStyle := lipgloss.NewStyle().Foreground(colorPattern)

	lines := strings.Split(input, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, "#") {
			lines[i] = StyleDim.Render(line)
			continue
		}

		idx := strings.Index(line, ":")
		if idx < 0 {
			// bare list item
			lines[i] = valStyle.Render(line)
			continue
		}

		key := line[:idx]
		val := line[idx+1:]

		prefix := ""
		if strings.HasPrefix(strings.TrimSpace(key), "- ") {
			pIdx := strings.Index(key, "- ")
			prefix = key[:pIdx+2]
			key = key[pIdx+2:]
		}

		if strings.TrimSpace(val) == "" {
			lines[i] = prefix + keyStyle.Render(key) + ":"
		} else {
			lines[i] = prefix + keyStyle.Render(key) + ":" + valStyle.Render(val)
		}
	}
	return strings.Join(lines, "\n")
}
