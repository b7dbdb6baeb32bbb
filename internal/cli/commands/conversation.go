package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/chazo1994/Creatory/internal/cli/types"
	"github.com/chazo1994/Creatory/internal/cli/ui"
)

// conversationCmd is the parent conversation command
var conversationCmd = &cobra.Command{
	Use:     "conversation",
	Aliases: []string{"conv"},
	Short:   "list, select and create conversations",
	Long: `Conversations belong to the selected workspace. Each has a main thread and
a quick thread. Selecting a conversation selects the first thread of each kind.`,
	Example: `  $ studioctl conversation list
  $ studioctl conversation use <id>
  $ studioctl conversation create "Product launch"`,
}

var conversationListCmd = &cobra.Command{
	Use:   "list",
	Short: "list conversations of the selected workspace",
	Args:  cobra.NoArgs,
	RunE:  runConversationList,
}

var conversationUseCmd = &cobra.Command{
	Use:   "use <id>",
	Short: "select a conversation and its threads",
	Args:  cobra.ExactArgs(1),
	RunE:  runConversationUse,
}

var conversationCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "create a conversation and select it",
	Args:  cobra.ExactArgs(1),
	RunE:  runConversationCreate,
}

// threadsCmd lists the threads of the selected conversation
var threadsCmd = &cobra.Command{
	Use:   "threads",
	Short: "list threads of the selected conversation",
	Args:  cobra.NoArgs,
	RunE:  runThreads,
}

func init() {
	conversationCmd.AddCommand(conversationListCmd, conversationUseCmd, conversationCreateCmd)

	// Silence usage to avoid showing help on every error
	for _, c := range []*cobra.Command{conversationCmd, conversationListCmd, conversationUseCmd, conversationCreateCmd, threadsCmd} {
		c.SilenceUsage = true
	}
}

func conversationTitle(c types.Conversation) string {
	if c.Title != nil && *c.Title != "" {
		return *c.Title
	}
	return "(untitled)"
}

func runConversationList(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a, err := loadApp(true, "")
	if err != nil {
		return err
	}
	wsID, err := a.requireWorkspace()
	if err != nil {
		return err
	}

	conversations, err := a.api.ListConversations(ctx, wsID)
	if err != nil {
		ui.PrintError("failed to list conversations: %v", err)
		return fmt.Errorf("list conversations failed")
	}
	if len(conversations) == 0 {
		ui.PrintInfo("No conversations in workspace %s", wsID)
		return nil
	}

	selected := a.store.Snapshot().ConversationID
	for _, c := range conversations {
		marker := "  "
		if c.ID == selected {
			marker = "▸ "
		}
		fmt.Printf("%s%-32s %s\n", marker, conversationTitle(c), c.ID)
	}
	return nil
}

func runConversationUse(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a, err := loadApp(true, "")
	if err != nil {
		return err
	}
	wsID, err := a.requireWorkspace()
	if err != nil {
		return err
	}

	conversations, err := a.api.ListConversations(ctx, wsID)
	if err != nil {
		ui.PrintError("failed to list conversations: %v", err)
		return fmt.Errorf("list conversations failed")
	}
	for _, c := range conversations {
		if c.ID != args[0] {
			continue
		}
		a.store.SelectConversation(c.ID)
		if err := a.refreshThreads(ctx); err != nil {
			return err
		}
		printSelection(a)
		return nil
	}

	ui.PrintError("conversation %s not found in workspace %s", args[0], wsID)
	return fmt.Errorf("conversation not found")
}

func runConversationCreate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a, err := loadApp(true, "")
	if err != nil {
		return err
	}
	wsID, err := a.requireWorkspace()
	if err != nil {
		return err
	}

	conv, err := a.api.CreateConversation(ctx, wsID, args[0])
	if err != nil {
		ui.PrintErrorBox("Create Failed", err.Error())
		return fmt.Errorf("create conversation failed")
	}
	a.store.SelectConversation(conv.ID)
	if err := a.refreshThreads(ctx); err != nil {
		return err
	}

	ui.PrintSuccess("Created conversation %s", conv.ID)
	printSelection(a)
	return nil
}

func runThreads(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a, err := loadApp(true, "")
	if err != nil {
		return err
	}
	convID := a.store.Snapshot().ConversationID
	if convID == "" {
		ui.PrintError("no conversation selected")
		fmt.Println("\nRun 'studioctl conversation use <id>' first.")
		return fmt.Errorf("conversation required")
	}

	threads, err := a.api.ListThreads(ctx, convID)
	if err != nil {
		ui.PrintError("failed to list threads: %v", err)
		return fmt.Errorf("list threads failed")
	}
	snap := a.store.ApplyThreads(threads)

	for _, th := range threads {
		marker := "  "
		if th.ID == snap.ThreadID(th.Kind) {
			marker = "▸ "
		}
		fmt.Printf("%s%-6s %s\n", marker, th.Kind, th.ID)
	}
	return nil
}

func printSelection(a *app) {
	snap := a.store.Snapshot()
	ui.PrintInfo("Conversation: %s", orNone(snap.ConversationID))
	ui.PrintInfo("Main thread:  %s", orNone(snap.MainThreadID))
	ui.PrintInfo("Quick thread: %s", orNone(snap.QuickThreadID))
}
