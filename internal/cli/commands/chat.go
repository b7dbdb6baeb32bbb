package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/chazo1994/Creatory/internal/cli/tui"
	"github.com/chazo1994/Creatory/internal/cli/ui"
	"github.com/chazo1994/Creatory/internal/conversation"
	"github.com/chazo1994/Creatory/internal/stream"
)

// chatCmd is the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "start the dual-thread chat",
	Long: `Start an interactive chat on the selected conversation.

The main thread and the quick thread are shown side by side. Sending on one
thread refreshes only that thread. A quick-thread answer can be injected into
the main thread as a context block. The latest run's event stream is shown in
the status line.`,
	Example: `  # Start interactive chat
  $ studioctl chat

  # Keyboard controls:
  • Enter sends on the focused thread, Tab switches threads
  • ctrl+↑/ctrl+↓ picks a quick-thread answer, ctrl+g injects it
  • Esc quits`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.SilenceUsage = true
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := loadApp(true, "")
	if err != nil {
		return err
	}

	snap := a.store.Snapshot()
	if snap.ConversationID == "" {
		ui.PrintError("no conversation selected")
		fmt.Println("\nRun 'studioctl conversation use <id>' first.")
		return fmt.Errorf("conversation required")
	}
	if snap.MainThreadID == "" || snap.QuickThreadID == "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := a.refreshThreads(ctx)
		cancel()
		if err != nil {
			return err
		}
	}

	coord := conversation.NewCoordinator(a.api, a.store, a.logger)
	consumer := stream.NewConsumer(a.api, a.logger)
	token := func() string { return a.store.Snapshot().Token }

	program := tui.NewChatProgram(coord, consumer, token)
	if err := program.Run(); err != nil {
		return fmt.Errorf("failed to run chat TUI: %w", err)
	}

	return nil
}
