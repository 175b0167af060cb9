package cli

import (
	"regexp"

	"github.com/dinghy6/sabnzbd-scripts/internal/ui"
	"github.com/spf13/cobra"
)

const coloredUsageTmpl = `{{Header "Usage:"}}
  {{if .Runnable}}{{Usage .UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{Command .CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

{{Header "Aliases:"}}
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

{{Header "Examples:"}}
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}

{{Header "Available Commands:"}}{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{Command (printf "%-15s" .Name)}} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

{{Header "Flags:"}}
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces | Flags}}{{end}}{{if .HasAvailableInheritedFlags}}

{{Header "Global Flags:"}}
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces | Flags}}{{end}}{{if .HasHelpSubCommands}}

{{Header "Additional help topics:"}}{{range .Commands}}{{if .IsAdditionalHelpTopicCommand}}
  {{Command (printf "%-15s" .Name)}} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableSubCommands}}

{{Header "Use"}} {{Command (printf "%s [command] --help" .CommandPath)}} {{Header "for more information about a command."}}{{end}}
`

var (
	reHelpFlag     = regexp.MustCompile(`(-\w|--[\w-]+)`)
	reHelpSep      = regexp.MustCompile(`, `)
	reHelpArg      = regexp.MustCompile(`<[a-zA-Z0-9_-]+>(\.\.\.)?`)
	reHelpOptional = regexp.MustCompile(`\[[a-zA-Z0-9_-]+\](\.\.\.)?`)
	reHelpCmd      = regexp.MustCompile(`^\w+`)
)

func colorizeHelp(cmd *cobra.Command) {
	cobra.AddTemplateFunc("Header", func(s string) string {
		out := ui.StyleHeader.Render(s)
		if s == "Usage:" {
			return "\n" + out
		}
		return out
	})
	cobra.AddTemplateFunc("Command", func(s string) string { return ui.StyleCommand.Render(s) })

	cobra.AddTemplateFunc("Flags", func(s string) string {
		s = reHelpFlag.ReplaceAllStringFunc(s, func(match string) string {
			return ui.StyleFlag.Render(match)
		})
		return reHelpSep.ReplaceAllString(s, ui.StyleDim.Render(", "))
	})

	// <required> args in path color, [optional] ones dimmed, command name first
	cobra.AddTemplateFunc("Usage", func(s string) string {
		s = reHelpArg.ReplaceAllStringFunc(s, func(match string) string {
			return ui.StylePath.Render(match)
		})
		s = reHelpOptional.ReplaceAllStringFunc(s, func(match string) string {
			return ui.StyleDim.Render(match)
		})
		return reHelpCmd.ReplaceAllStringFunc(s, func(match string) string {
			return ui.StyleCommand.Render(match)
		})
	})

	cmd.SetUsageTemplate(coloredUsageTmpl)
}
