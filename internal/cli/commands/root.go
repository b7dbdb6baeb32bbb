package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazo1994/Creatory/internal/cli/ui"
)

const version = "0.1.0"

var logLevel string

// rootCmd is the root command
var rootCmd = &cobra.Command{
	Use:     "studioctl",
	Short:   "Creatory multi-agent studio CLI",
	Version: version,
	Long: `A command-line client for the Creatory multi-agent studio. Chat with the
director on a main and a quick thread, inject quick-thread answers into the
main context, follow run event streams and run workflow templates.`,
	Example: `  # Authenticate with the studio server
  $ studioctl login http://localhost:8000 -e ada@example.com

  # Pick a workspace and a conversation
  $ studioctl workspace list
  $ studioctl conversation use <id>

  # Start the dual-thread chat
  $ studioctl chat

  # Run the selected workflow template
  $ studioctl workflow run`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
}

// Execute executes the root command
func Execute() error {
	rootCmd.SetVersionTemplate(formatVersion())
	return rootCmd.Execute()
}

func init() {
	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides STUDIO_LOG_LEVEL")

	// Add subcommands
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(workspaceCmd)
	rootCmd.AddCommand(conversationCmd)
	rootCmd.AddCommand(threadsCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(injectCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(workflowCmd)

	// Set custom template with bold uppercase headers
	rootCmd.SetUsageTemplate(usageTemplate())
	rootCmd.SetHelpTemplate(usageTemplate())
}

func usageTemplate() string {
	return `{{if .Long}}{{.Long}}

{{end}}` + ui.Styles.Bold.Render("USAGE") + `
  {{.UseLine}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}

{{if .HasExample}}` + ui.Styles.Bold.Render("EXAMPLES") + `
{{.Example}}

{{end}}{{if .HasAvailableSubCommands}}` + ui.Styles.Bold.Render("COMMANDS") + `{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableLocalFlags}}` + ui.Styles.Bold.Render("OPTIONS") + `
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
}

// formatVersion formats the version output
func formatVersion() string {
	return fmt.Sprintf("studioctl version %s\n", version)
}
