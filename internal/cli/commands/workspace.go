package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/chazo1994/Creatory/internal/cli/types"
	"github.com/chazo1994/Creatory/internal/cli/ui"
)

// workspaceCmd is the parent workspace command
var workspaceCmd = &cobra.Command{
	Use:     "workspace",
	Aliases: []string{"ws"},
	Short:   "list, select and create workspaces",
	Long: `Workspaces own conversations and workflow templates.

Selecting a workspace clears the selected conversation and threads.`,
	Example: `  $ studioctl workspace list
  $ studioctl workspace use <id>
  $ studioctl workspace create "Launch campaign"`,
}

var workspaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "list your workspaces",
	Args:  cobra.NoArgs,
	RunE:  runWorkspaceList,
}

var workspaceUseCmd = &cobra.Command{
	Use:   "use <id>",
	Short: "select a workspace",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkspaceUse,
}

var workspaceCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "create a workspace and select it",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkspaceCreate,
}

func init() {
	workspaceCmd.AddCommand(workspaceListCmd, workspaceUseCmd, workspaceCreateCmd)

	// Silence usage to avoid showing help on every error
	for _, c := range []*cobra.Command{workspaceCmd, workspaceListCmd, workspaceUseCmd, workspaceCreateCmd} {
		c.SilenceUsage = true
	}
}

func fetchWorkspaces(ctx context.Context, a *app) ([]types.Workspace, error) {
	workspaces, err := a.api.ListWorkspaces(ctx)
	if err != nil {
		ui.PrintError("failed to list workspaces: %v", err)
		return nil, fmt.Errorf("list workspaces failed")
	}
	a.store.SetWorkspaces(workspaces)
	return workspaces, nil
}

func runWorkspaceList(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a, err := loadApp(true, "")
	if err != nil {
		return err
	}
	workspaces, err := fetchWorkspaces(ctx, a)
	if err != nil {
		return err
	}

	if len(workspaces) == 0 {
		ui.PrintInfo("No workspaces found")
		return nil
	}
	selected := a.store.Snapshot().WorkspaceID
	for _, ws := range workspaces {
		marker := "  "
		if ws.ID == selected {
			marker = "▸ "
		}
		fmt.Printf("%s%-24s %-20s %s\n", marker, ws.Name, ws.Slug, ws.ID)
	}
	return nil
}

func runWorkspaceUse(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a, err := loadApp(true, "")
	if err != nil {
		return err
	}
	workspaces, err := fetchWorkspaces(ctx, a)
	if err != nil {
		return err
	}

	for _, ws := range workspaces {
		if ws.ID == args[0] || ws.Slug == args[0] {
			a.store.SelectWorkspace(ws.ID)
			ui.PrintSuccess("Using workspace %s (%s)", ws.Name, ws.ID)
			return nil
		}
	}
	ui.PrintError("workspace %s not found", args[0])
	return fmt.Errorf("workspace not found")
}

func runWorkspaceCreate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a, err := loadApp(true, "")
	if err != nil {
		return err
	}

	ws, err := a.api.CreateWorkspace(ctx, args[0])
	if err != nil {
		ui.PrintErrorBox("Create Failed", err.Error())
		return fmt.Errorf("create workspace failed")
	}
	if _, err := fetchWorkspaces(ctx, a); err != nil {
		return err
	}
	a.store.SelectWorkspace(ws.ID)

	ui.PrintSuccess("Created workspace %s (%s)", ws.Name, ws.ID)
	return nil
}
